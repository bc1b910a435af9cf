package principals

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

const columns = `id, username, email, password_hash, federated_id, role, is_active,
		last_login, refresh_token, theme, notifications, language, created_at, updated_at`

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	now     func() time.Time
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect, now: func() time.Time { return time.Now().UTC() }}
}

func (r *SQLRepository) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now

	query := r.dialect.Rebind(
		`INSERT INTO principals (` + columns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`)

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Username, p.Email, p.PasswordHash, nullString(p.FederatedID), p.Role, p.IsActive,
		nullTime(p.LastLogin), p.RefreshToken, p.Preferences.Theme, p.Preferences.Notifications,
		p.Preferences.Language, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.Principal, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.Principal, error) {
	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *SQLRepository) GetByFederatedID(ctx context.Context, federatedID string) (*models.Principal, error) {
	return r.getOne(ctx, `WHERE federated_id = $1`, federatedID)
}

func (r *SQLRepository) getOne(ctx context.Context, where string, arg any) (*models.Principal, error) {
	query := r.dialect.Rebind(`SELECT ` + columns + ` FROM principals ` + where)

	p, err := scanPrincipal(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM principals`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// CountLocked takes SHARE ROW EXCLUSIVE on principals, which conflicts
// with itself and with inserts, so two first registrations cannot both
// see an empty table. SQLite runs a single writer already.
func (r *SQLRepository) CountLocked(ctx context.Context) (int, error) {
	if r.dialect == dbx.Postgres {
		if _, err := r.db.ExecContext(ctx, `LOCK TABLE principals IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return 0, fmt.Errorf("db error: %w", err)
		}
	}
	return r.Count(ctx)
}

func (r *SQLRepository) List(ctx context.Context) ([]*models.Principal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM principals ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Update(ctx context.Context, p *models.Principal) error {
	p.UpdatedAt = r.now()

	query := r.dialect.Rebind(
		`UPDATE principals
		 SET username = $2, email = $3, role = $4, is_active = $5,
		     theme = $6, notifications = $7, language = $8, updated_at = $9
		 WHERE id = $1`)

	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Username, p.Email, p.Role, p.IsActive,
		p.Preferences.Theme, p.Preferences.Notifications, p.Preferences.Language, p.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLRepository) RecordLogin(ctx context.Context, id string, at time.Time, refreshToken string) error {
	query := r.dialect.Rebind(
		`UPDATE principals SET last_login = $2, refresh_token = $3, updated_at = $4 WHERE id = $1`)

	res, err := r.db.ExecContext(ctx, query, id, at, refreshToken, r.now())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	query := r.dialect.Rebind(
		`UPDATE principals SET refresh_token = $2, updated_at = $3 WHERE id = $1`)

	res, err := r.db.ExecContext(ctx, query, id, token, r.now())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLRepository) ReplaceRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	if current == "" {
		return false, nil
	}

	query := r.dialect.Rebind(
		`UPDATE principals SET refresh_token = $3, updated_at = $4
		 WHERE id = $1 AND refresh_token = $2`)

	res, err := r.db.ExecContext(ctx, query, id, current, next, r.now())
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM principals WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrincipal(s scanner) (*models.Principal, error) {
	var (
		p           models.Principal
		federatedID sql.NullString
		lastLogin   sql.NullTime
	)
	err := s.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &federatedID, &p.Role, &p.IsActive,
		&lastLogin, &p.RefreshToken, &p.Preferences.Theme, &p.Preferences.Notifications,
		&p.Preferences.Language, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.FederatedID = federatedID.String
	if lastLogin.Valid {
		t := lastLogin.Time
		p.LastLogin = &t
	}
	return &p, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
