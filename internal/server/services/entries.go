package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/logging"
	"github.com/dmitrijs2005/dailyjournal/internal/server/auth"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/repomanager"
)

type EntryInput struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Mood    string     `json:"mood"`
	Date    *time.Time `json:"date"`
}

// EntryService manages journal entries. Reads and writes of a single
// entry are gated by ownership; admins see and touch everything.
type EntryService struct {
	repos repomanager.RepositoryManager
	log   logging.Logger
	now   func() time.Time
}

func NewEntryService(repos repomanager.RepositoryManager, log logging.Logger) *EntryService {
	return &EntryService{
		repos: repos,
		log:   log.With("module", "entries"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns the caller's entries, or every entry for an admin.
func (s *EntryService) List(ctx context.Context, actor *models.Principal) ([]*models.Entry, error) {
	if actor == nil {
		return nil, common.ErrForbidden
	}

	repo := s.repos.Repos().Entries
	var (
		list []*models.Entry
		err  error
	)
	if actor.Role == common.RoleAdmin {
		list, err = repo.ListAll(ctx)
	} else {
		list, err = repo.ListByOwner(ctx, actor.ID)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	if list == nil {
		list = []*models.Entry{}
	}
	return list, nil
}

func (s *EntryService) load(ctx context.Context, actor *models.Principal, id string) (*models.Entry, error) {
	e, err := s.repos.Repos().Entries.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if err := auth.CheckOwnership(actor, e.OwnerID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EntryService) Get(ctx context.Context, actor *models.Principal, id string) (*models.Entry, error) {
	return s.load(ctx, actor, id)
}

// Create stores a new entry owned by the caller.
func (s *EntryService) Create(ctx context.Context, actor *models.Principal, in EntryInput) (*models.Entry, error) {
	if actor == nil {
		return nil, common.ErrForbidden
	}

	var v common.ValidationErrors
	validateEntry(&v, &in)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	e := &models.Entry{
		OwnerID: actor.ID,
		Title:   in.Title,
		Content: in.Content,
		Mood:    in.Mood,
		Date:    s.now(),
	}
	if in.Date != nil {
		e.Date = in.Date.UTC()
	}

	created, err := s.repos.Repos().Entries.Create(ctx, e)
	if err != nil {
		return nil, storeErr(err)
	}
	s.log.Debug(ctx, "entry created", "entry_id", created.ID, "owner_id", actor.ID)
	return created, nil
}

// Update replaces title, content, mood and date of an existing entry.
func (s *EntryService) Update(ctx context.Context, actor *models.Principal, id string, in EntryInput) (*models.Entry, error) {
	e, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var v common.ValidationErrors
	validateEntry(&v, &in)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	e.Title, e.Content, e.Mood = in.Title, in.Content, in.Mood
	if in.Date != nil {
		e.Date = in.Date.UTC()
	}
	if err := s.repos.Repos().Entries.Update(ctx, e); err != nil {
		return nil, storeErr(err)
	}
	return e, nil
}

func (s *EntryService) Delete(ctx context.Context, actor *models.Principal, id string) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repos.Repos().Entries.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	s.log.Debug(ctx, "entry deleted", "entry_id", id, "actor_id", actor.ID)
	return nil
}
