package principals

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is a map-backed Repository for tests. It enforces the
// same uniqueness rules as the SQL schema.
type MemoryRepository struct {
	mu   sync.Mutex
	byID map[string]*models.Principal
	now  func() time.Time

	// Err, when set, is returned by every call. Tests use it to simulate
	// an unreachable store.
	Err error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[string]*models.Principal),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func clonePrincipal(p *models.Principal) *models.Principal {
	c := *p
	if p.LastLogin != nil {
		t := *p.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func (r *MemoryRepository) conflicts(p *models.Principal) bool {
	for id, other := range r.byID {
		if id == p.ID {
			continue
		}
		if other.Username == p.Username || other.Email == p.Email {
			return true
		}
		if p.FederatedID != "" && other.FederatedID == p.FederatedID {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) Create(_ context.Context, p *models.Principal) (*models.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := r.byID[p.ID]; ok || r.conflicts(p) {
		return nil, common.ErrConflict
	}

	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.byID[p.ID] = clonePrincipal(p)
	return p, nil
}

func (r *MemoryRepository) find(match func(*models.Principal) bool) (*models.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	for _, p := range r.byID {
		if match(p) {
			return clonePrincipal(p), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Principal, error) {
	return r.find(func(p *models.Principal) bool { return p.ID == id })
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.Principal, error) {
	return r.find(func(p *models.Principal) bool { return p.Email == email })
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*models.Principal, error) {
	return r.find(func(p *models.Principal) bool { return p.Username == username })
}

func (r *MemoryRepository) GetByFederatedID(_ context.Context, federatedID string) (*models.Principal, error) {
	if federatedID == "" {
		return nil, common.ErrorNotFound
	}
	return r.find(func(p *models.Principal) bool { return p.FederatedID == federatedID })
}

func (r *MemoryRepository) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return 0, r.Err
	}
	return len(r.byID), nil
}

// CountLocked is Count; MemoryRepositoryManager serializes transactions.
func (r *MemoryRepository) CountLocked(ctx context.Context) (int, error) {
	return r.Count(ctx)
}

func (r *MemoryRepository) List(context.Context) ([]*models.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	result := make([]*models.Principal, 0, len(r.byID))
	for _, p := range r.byID {
		result = append(result, clonePrincipal(p))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) mutate(id string, fn func(p *models.Principal)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	p, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(p)
	p.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, p *models.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	stored, ok := r.byID[p.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if r.conflicts(p) {
		return common.ErrConflict
	}

	stored.Username = p.Username
	stored.Email = p.Email
	stored.Role = p.Role
	stored.IsActive = p.IsActive
	stored.Preferences = p.Preferences
	stored.UpdatedAt = r.now()
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryRepository) RecordLogin(_ context.Context, id string, at time.Time, refreshToken string) error {
	return r.mutate(id, func(p *models.Principal) {
		p.LastLogin = &at
		p.RefreshToken = refreshToken
	})
}

func (r *MemoryRepository) SetRefreshToken(_ context.Context, id, token string) error {
	return r.mutate(id, func(p *models.Principal) { p.RefreshToken = token })
}

func (r *MemoryRepository) ReplaceRefreshToken(_ context.Context, id, current, next string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return false, r.Err
	}
	p, ok := r.byID[id]
	if !ok || current == "" || p.RefreshToken != current {
		return false, nil
	}
	p.RefreshToken = next
	p.UpdatedAt = r.now()
	return true, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}
