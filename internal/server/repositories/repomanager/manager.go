// Package repomanager hands out repositories bound to either a connection
// pool or an open transaction, and owns schema migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/entries"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/principals"
)

// Repos is a consistent set of repositories sharing one handle.
type Repos struct {
	Principals principals.Repository
	Entries    entries.Repository
}

type RepositoryManager interface {
	// Repos returns repositories bound to the pool.
	Repos() Repos
	// WithinTx runs fn with repositories bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
