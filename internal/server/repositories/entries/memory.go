package entries

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is a map-backed Repository for tests.
type MemoryRepository struct {
	mu   sync.Mutex
	byID map[string]*models.Entry
	now  func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[string]*models.Entry),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) Create(_ context.Context, e *models.Entry) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, ok := r.byID[e.ID]; ok {
		return nil, common.ErrConflict
	}
	now := r.now()
	e.CreatedAt, e.UpdatedAt = now, now
	if e.Date.IsZero() {
		e.Date = now
	}
	c := *e
	r.byID[e.ID] = &c
	return e, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (r *MemoryRepository) collect(match func(*models.Entry) bool) []*models.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Entry
	for _, e := range r.byID {
		if match(e) {
			c := *e
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ID < result[j].ID
		}
		return result[i].Date.After(result[j].Date)
	})
	return result
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]*models.Entry, error) {
	return r.collect(func(e *models.Entry) bool { return e.OwnerID == ownerID }), nil
}

func (r *MemoryRepository) ListAll(context.Context) ([]*models.Entry, error) {
	return r.collect(func(*models.Entry) bool { return true }), nil
}

func (r *MemoryRepository) Update(_ context.Context, e *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[e.ID]
	if !ok {
		return common.ErrorNotFound
	}
	e.UpdatedAt = r.now()
	stored.Title = e.Title
	stored.Content = e.Content
	stored.Mood = e.Mood
	stored.Date = e.Date
	stored.UpdatedAt = e.UpdatedAt
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, e := range r.byID {
		if e.OwnerID == ownerID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
