package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/logging"
	"github.com/dmitrijs2005/dailyjournal/internal/server/auth"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/repomanager"
)

type CreateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type PreferencesInput struct {
	Theme         *string `json:"theme"`
	Notifications *bool   `json:"notifications"`
	Language      *string `json:"language"`
}

// UpdateUserInput is a partial update; nil fields are left alone.
type UpdateUserInput struct {
	Username    *string           `json:"username"`
	Email       *string           `json:"email"`
	Role        *string           `json:"role"`
	IsActive    *bool             `json:"isActive"`
	Preferences *PreferencesInput `json:"preferences"`
}

// UserService is account administration on top of the credential store.
// Every method takes the acting principal and enforces role and
// ownership rules itself.
type UserService struct {
	repos  repomanager.RepositoryManager
	hasher auth.Hasher
	log    logging.Logger
}

func NewUserService(repos repomanager.RepositoryManager, hasher auth.Hasher, log logging.Logger) *UserService {
	return &UserService{repos: repos, hasher: hasher, log: log.With("module", "users")}
}

func views(ps []*models.Principal) []models.PrincipalView {
	out := make([]models.PrincipalView, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.View())
	}
	return out
}

// List returns every principal. Admin only.
func (s *UserService) List(ctx context.Context, actor *models.Principal) ([]models.PrincipalView, error) {
	if err := auth.RequireRole(actor, common.RoleAdmin); err != nil {
		return nil, err
	}
	ps, err := s.repos.Repos().Principals.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return views(ps), nil
}

// Get returns the public view of any principal to any authenticated caller.
func (s *UserService) Get(ctx context.Context, actor *models.Principal, id string) (*models.PrincipalView, error) {
	if actor == nil {
		return nil, common.ErrForbidden
	}
	p, err := s.repos.Repos().Principals.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	v := p.View()
	return &v, nil
}

// Create adds a local principal with an explicit role. Admin only.
func (s *UserService) Create(ctx context.Context, actor *models.Principal, in CreateUserInput) (*models.PrincipalView, error) {
	if err := auth.RequireRole(actor, common.RoleAdmin); err != nil {
		return nil, err
	}

	var v common.ValidationErrors
	username := validateUsername(&v, in.Username)
	email := validateEmail(&v, in.Email)
	validateNewPassword(&v, in.Password)
	role := in.Role
	if role == "" {
		role = common.RoleUser
	}
	validateRole(&v, role)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	p, err := s.repos.Repos().Principals.Create(ctx, &models.Principal{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		Preferences:  models.DefaultPreferences(),
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("username or email %w", common.ErrConflict)
		}
		return nil, storeErr(err)
	}

	s.log.Info(ctx, "principal created by admin", "principal_id", p.ID, "actor_id", actor.ID, "role", role)
	view := p.View()
	return &view, nil
}

// Update changes profile fields. The owner or an admin may update a
// principal; only an admin may change role or the active flag.
func (s *UserService) Update(ctx context.Context, actor *models.Principal, id string, in UpdateUserInput) (*models.PrincipalView, error) {
	if err := auth.CheckOwnership(actor, id); err != nil {
		return nil, err
	}
	if (in.Role != nil || in.IsActive != nil) && actor.Role != common.RoleAdmin {
		return nil, common.ErrForbidden
	}

	repo := s.repos.Repos().Principals
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}

	var v common.ValidationErrors
	if in.Username != nil {
		p.Username = validateUsername(&v, *in.Username)
	}
	if in.Email != nil {
		p.Email = validateEmail(&v, *in.Email)
	}
	if in.Role != nil {
		validateRole(&v, *in.Role)
		p.Role = *in.Role
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if prefs := in.Preferences; prefs != nil {
		if prefs.Theme != nil {
			p.Preferences.Theme = *prefs.Theme
		}
		if prefs.Notifications != nil {
			p.Preferences.Notifications = *prefs.Notifications
		}
		if prefs.Language != nil {
			p.Preferences.Language = *prefs.Language
		}
		validatePreferences(&v, p.Preferences)
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := repo.Update(ctx, p); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("username or email %w", common.ErrConflict)
		}
		return nil, storeErr(err)
	}

	view := p.View()
	return &view, nil
}

// Delete removes a principal and all of its journal entries in one
// transaction. The owner or an admin may delete.
func (s *UserService) Delete(ctx context.Context, actor *models.Principal, id string) error {
	if err := auth.CheckOwnership(actor, id); err != nil {
		return err
	}

	var removed int64
	err := s.repos.WithinTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
		n, err := r.Entries.DeleteByOwner(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return r.Principals.Delete(ctx, id)
	})
	if err != nil {
		return storeErr(err)
	}

	s.log.Info(ctx, "principal deleted", "principal_id", id, "actor_id", actor.ID, "entries_removed", removed)
	return nil
}
