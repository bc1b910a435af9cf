// Package entries persists journal entries.
package entries

import (
	"context"

	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
)

// Repository stores journal entries. Missing rows yield common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, e *models.Entry) (*models.Entry, error)
	GetByID(ctx context.Context, id string) (*models.Entry, error)
	// ListByOwner returns the owner's entries newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Entry, error)
	ListAll(ctx context.Context) ([]*models.Entry, error)
	Update(ctx context.Context, e *models.Entry) error
	Delete(ctx context.Context, id string) error
	// DeleteByOwner removes every entry of the owner and reports how many.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
