package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/dbx"
	"github.com/dmitrijs2005/dailyjournal/internal/server/migrations"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/entries"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/principals"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager vends SQL-backed repositories for PostgreSQL or SQLite.
type SQLRepositoryManager struct {
	db      *sql.DB
	dialect dbx.Dialect
}

func NewSQLRepositoryManager(db *sql.DB, dialect dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{db: db, dialect: dialect}
}

// Open connects to dsn, choosing the driver from its shape, and verifies
// the store is reachable. An unreachable store yields
// common.ErrDependencyUnavailable.
func Open(ctx context.Context, dsn string) (*SQLRepositoryManager, error) {
	dialect := dbx.DialectFromDSN(dsn)
	if dialect == dbx.SQLite {
		dsn = strings.TrimPrefix(dsn, "sqlite://")
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dialect == dbx.SQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	m := NewSQLRepositoryManager(db, dialect)
	if err := m.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

func (m *SQLRepositoryManager) bind(db dbx.DBTX) Repos {
	return Repos{
		Principals: principals.NewSQLRepository(db, m.dialect),
		Entries:    entries.NewSQLRepository(db, m.dialect),
	}
}

func (m *SQLRepositoryManager) Repos() Repos {
	return m.bind(m.db)
}

func (m *SQLRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, m.bind(tx))
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect.GooseDialect()); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (m *SQLRepositoryManager) Ping(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDependencyUnavailable, err)
	}
	return nil
}

func (m *SQLRepositoryManager) Close() error {
	return m.db.Close()
}
