package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/entries"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/principals"
)

// MemoryRepositoryManager serves in-memory repositories for tests.
// WithinTx runs one function at a time but does not roll back; each
// repository call is still atomic.
type MemoryRepositoryManager struct {
	txMu sync.Mutex

	PrincipalStore *principals.MemoryRepository
	EntryStore     *entries.MemoryRepository

	// PingErr, when set, is returned by Ping.
	PingErr error
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		PrincipalStore: principals.NewMemoryRepository(),
		EntryStore:     entries.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Repos() Repos {
	return Repos{Principals: m.PrincipalStore, Entries: m.EntryStore}
}

func (m *MemoryRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	return fn(ctx, m.Repos())
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Ping(context.Context) error { return m.PingErr }

func (m *MemoryRepositoryManager) Close() error { return nil }
