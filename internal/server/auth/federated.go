package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/logging"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/principals"
)

// Profile is the subset of an external account the service relies on.
type Profile struct {
	ID    string
	Login string
	Email string
	Name  string
}

// Provider is an OAuth identity provider.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// RoleForNewPrincipal applies the bootstrap rule: the first principal in
// an empty store becomes admin, everyone after is a plain user.
func RoleForNewPrincipal(existing int) string {
	if existing == 0 {
		return common.RoleAdmin
	}
	return common.RoleUser
}

// TxFunc runs fn with a principal repository bound to one transaction.
type TxFunc func(ctx context.Context, fn func(ctx context.Context, repo principals.Repository) error) error

// FederatedAuthenticator exchanges a FederatedGrant for a provider profile
// and maps it to a local principal, creating one on first sight.
type FederatedAuthenticator struct {
	provider   Provider
	principals principals.Repository
	withinTx   TxFunc
	log        logging.Logger
	now        func() time.Time
}

// NewFederatedAuthenticator builds the authenticator. withinTx wraps the
// bootstrap count and the insert of a new principal; nil runs them on repo
// directly.
func NewFederatedAuthenticator(provider Provider, repo principals.Repository, withinTx TxFunc, log logging.Logger) *FederatedAuthenticator {
	if withinTx == nil {
		withinTx = func(ctx context.Context, fn func(context.Context, principals.Repository) error) error {
			return fn(ctx, repo)
		}
	}
	return &FederatedAuthenticator{
		provider:   provider,
		principals: repo,
		withinTx:   withinTx,
		log:        log.With("module", "federated"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (a *FederatedAuthenticator) AuthCodeURL(state string) string {
	return a.provider.AuthCodeURL(state)
}

func (a *FederatedAuthenticator) Authenticate(ctx context.Context, c Credentials) (*models.Principal, error) {
	grant, ok := c.(FederatedGrant)
	if !ok || grant.Code == "" {
		return nil, common.ErrFederatedAuthFailed
	}

	profile, err := a.provider.Exchange(ctx, grant.Code)
	if err != nil {
		a.log.Warn(ctx, "grant exchange failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrFederatedAuthFailed, err)
	}
	return a.Resolve(ctx, profile)
}

// Resolve finds the principal linked to profile or creates it. A
// concurrent first login for the same account loses the insert and picks
// up the winner's row instead.
func (a *FederatedAuthenticator) Resolve(ctx context.Context, profile *Profile) (*models.Principal, error) {
	if profile == nil || profile.ID == "" || profile.Login == "" || profile.Email == "" {
		return nil, fmt.Errorf("%w: profile is missing id, login or email", common.ErrFederatedAuthFailed)
	}

	p, err := a.principals.GetByFederatedID(ctx, profile.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: %v", common.ErrDependencyUnavailable, err)
	}

	placeholder, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	now := a.now()
	p = &models.Principal{
		Username:     profile.Login,
		Email:        NormalizeEmail(profile.Email),
		PasswordHash: lockedPasswordPrefix + placeholder,
		FederatedID:  profile.ID,
		IsActive:     true,
		LastLogin:    &now,
		Preferences:  models.DefaultPreferences(),
	}

	var created *models.Principal
	err = a.withinTx(ctx, func(ctx context.Context, repo principals.Repository) error {
		count, err := repo.CountLocked(ctx)
		if err != nil {
			return err
		}
		p.Role = RoleForNewPrincipal(count)
		created, err = repo.Create(ctx, p)
		return err
	})
	if err == nil {
		a.log.Info(ctx, "federated principal created", "principal_id", created.ID, "role", created.Role)
		return created, nil
	}
	if !errors.Is(err, common.ErrConflict) {
		return nil, fmt.Errorf("%w: %v", common.ErrDependencyUnavailable, err)
	}

	existing, lookupErr := a.principals.GetByFederatedID(ctx, profile.ID)
	if lookupErr == nil {
		return existing, nil
	}
	// Username or email already belongs to an unrelated local account.
	return nil, fmt.Errorf("%w: %v", common.ErrFederatedAuthFailed, err)
}
