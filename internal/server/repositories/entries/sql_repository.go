package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/dbx"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/google/uuid"
)

const columns = `id, owner_id, title, content, mood, entry_date, created_at, updated_at`

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	now     func() time.Time
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect, now: func() time.Time { return time.Now().UTC() }}
}

func (r *SQLRepository) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := r.now()
	e.CreatedAt, e.UpdatedAt = now, now
	if e.Date.IsZero() {
		e.Date = now
	}

	query := r.dialect.Rebind(
		`INSERT INTO journal_entries (` + columns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.OwnerID, e.Title, e.Content, e.Mood, e.Date, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	query := r.dialect.Rebind(`SELECT ` + columns + ` FROM journal_entries WHERE id = $1`)

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *SQLRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Entry, error) {
	return r.list(ctx, r.dialect.Rebind(
		`SELECT `+columns+` FROM journal_entries WHERE owner_id = $1 ORDER BY entry_date DESC, id`), ownerID)
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]*models.Entry, error) {
	return r.list(ctx, `SELECT `+columns+` FROM journal_entries ORDER BY entry_date DESC, id`)
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Update(ctx context.Context, e *models.Entry) error {
	e.UpdatedAt = r.now()

	query := r.dialect.Rebind(
		`UPDATE journal_entries
		 SET title = $2, content = $3, mood = $4, entry_date = $5, updated_at = $6
		 WHERE id = $1`)

	res, err := r.db.ExecContext(ctx, query, e.ID, e.Title, e.Content, e.Mood, e.Date, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM journal_entries WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM journal_entries WHERE owner_id = $1`), ownerID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	var e models.Entry
	if err := s.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Content, &e.Mood, &e.Date, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
