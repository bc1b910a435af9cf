// Package principals persists identities: credentials, role, preferences
// and the single current refresh token.
package principals

import (
	"context"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
)

// Repository is the credential store. Lookups return common.ErrorNotFound
// when no row matches; duplicate username, email or federated id on write
// returns common.ErrConflict.
type Repository interface {
	Create(ctx context.Context, p *models.Principal) (*models.Principal, error)
	GetByID(ctx context.Context, id string) (*models.Principal, error)
	GetByEmail(ctx context.Context, email string) (*models.Principal, error)
	GetByUsername(ctx context.Context, username string) (*models.Principal, error)
	GetByFederatedID(ctx context.Context, federatedID string) (*models.Principal, error)
	Count(ctx context.Context) (int, error)

	// CountLocked counts principals while holding a lock that makes a
	// concurrent CountLocked wait until the surrounding transaction ends.
	// It must run inside a transaction; the bootstrap role depends on it.
	CountLocked(ctx context.Context) (int, error)
	List(ctx context.Context) ([]*models.Principal, error)

	// Update writes profile fields (username, email, role, active flag,
	// preferences). Secrets are changed only through the dedicated methods.
	Update(ctx context.Context, p *models.Principal) error

	// RecordLogin stamps lastLogin and stores the freshly issued refresh token.
	RecordLogin(ctx context.Context, id string, at time.Time, refreshToken string) error

	// SetRefreshToken overwrites the stored token; "" clears it.
	SetRefreshToken(ctx context.Context, id, token string) error

	// ReplaceRefreshToken swaps current for next only if current is still
	// the stored value. It reports false when another caller won the swap.
	ReplaceRefreshToken(ctx context.Context, id, current, next string) (bool, error)

	Delete(ctx context.Context, id string) error
}
