// Package services holds the server's use cases: the auth orchestrator,
// user administration and journal entries.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/logging"
	"github.com/dmitrijs2005/dailyjournal/internal/server/auth"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/principals"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// AuthResult is returned by every flow that ends with a fresh token pair.
type AuthResult struct {
	Principal models.PrincipalView `json:"principal"`
	auth.TokenPair
}

// AuthService composes the authenticators and the token issuer into the
// register / login / refresh / logout / federated / whoami flows.
type AuthService struct {
	repos     repomanager.RepositoryManager
	hasher    auth.Hasher
	tokens    *auth.TokenIssuer
	local     auth.Authenticator
	federated *auth.FederatedAuthenticator
	log       logging.Logger
	now       func() time.Time
}

// NewAuthService wires the orchestrator. federated may be nil when no
// identity provider is configured.
func NewAuthService(
	repos repomanager.RepositoryManager,
	hasher auth.Hasher,
	tokens *auth.TokenIssuer,
	federated *auth.FederatedAuthenticator,
	log logging.Logger,
) *AuthService {
	return &AuthService{
		repos:     repos,
		hasher:    hasher,
		tokens:    tokens,
		local:     auth.NewCredentialAuthenticator(repos.Repos().Principals, hasher),
		federated: federated,
		log:       log.With("module", "auth"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PrincipalTx adapts repos.WithinTx for the federated authenticator.
func PrincipalTx(repos repomanager.RepositoryManager) auth.TxFunc {
	return func(ctx context.Context, fn func(ctx context.Context, repo principals.Repository) error) error {
		return repos.WithinTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
			return fn(ctx, r.Principals)
		})
	}
}

func (s *AuthService) result(p *models.Principal, pair *auth.TokenPair) *AuthResult {
	return &AuthResult{Principal: p.View(), TokenPair: *pair}
}

// Register creates a local principal. The first principal in an empty
// store becomes admin. Username and email uniqueness is enforced by the
// store; a duplicate surfaces as common.ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var v common.ValidationErrors
	username = validateUsername(&v, username)
	email = validateEmail(&v, email)
	validateNewPassword(&v, password)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	now := s.now()
	p := &models.Principal{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		LastLogin:    &now,
		Preferences:  models.DefaultPreferences(),
	}

	var pair *auth.TokenPair
	err = s.repos.WithinTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
		count, err := r.Principals.CountLocked(ctx)
		if err != nil {
			return err
		}
		p.Role = auth.RoleForNewPrincipal(count)

		pair, err = s.tokens.IssuePair(p)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		p.RefreshToken = pair.RefreshToken

		_, err = r.Principals.Create(ctx, p)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("user %w", common.ErrConflict)
		}
		if errors.Is(err, common.ErrorInternal) {
			return nil, err
		}
		return nil, storeErr(err)
	}

	s.log.Info(ctx, "principal registered", "principal_id", p.ID, "role", p.Role)
	return s.result(p, pair), nil
}

// Login checks an email/password pair, stamps lastLogin and stores the
// new refresh token, replacing any previous one.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var v common.ValidationErrors
	email = validateEmail(&v, email)
	if strings.TrimSpace(password) == "" {
		v.Add("password", "Password is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	p, err := s.local.Authenticate(ctx, auth.LocalCredential{Email: email, Password: password})
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.log.Info(ctx, "login rejected")
		}
		return nil, err
	}

	return s.completeLogin(ctx, p)
}

func (s *AuthService) completeLogin(ctx context.Context, p *models.Principal) (*AuthResult, error) {
	pair, err := s.tokens.IssuePair(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	now := s.now()
	if err := s.repos.Repos().Principals.RecordLogin(ctx, p.ID, now, pair.RefreshToken); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPrincipalNotFound
		}
		return nil, storeErr(err)
	}
	p.LastLogin = &now
	p.RefreshToken = pair.RefreshToken

	s.log.Info(ctx, "principal logged in", "principal_id", p.ID)
	return s.result(p, pair), nil
}

// Refresh rotates a refresh token. The presented token must verify and
// equal the stored one; the swap is conditional, so of two concurrent
// refreshes with the same token exactly one succeeds.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		var v common.ValidationErrors
		v.Add("refreshToken", "Refresh token is required")
		return nil, v.OrNil()
	}

	id, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	repo := s.repos.Repos().Principals
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, storeErr(err)
	}
	if subtle.ConstantTimeCompare([]byte(p.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, common.ErrInvalidToken
	}

	pair, err := s.tokens.IssuePair(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	swapped, err := repo.ReplaceRefreshToken(ctx, p.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return nil, storeErr(err)
	}
	if !swapped {
		s.log.Warn(ctx, "refresh token reused concurrently", "principal_id", p.ID)
		return nil, common.ErrInvalidToken
	}
	p.RefreshToken = pair.RefreshToken

	return s.result(p, pair), nil
}

// Logout clears the stored refresh token. Access tokens stay valid until
// they expire.
func (s *AuthService) Logout(ctx context.Context, principalID string) error {
	if err := s.repos.Repos().Principals.SetRefreshToken(ctx, principalID, ""); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrPrincipalNotFound
		}
		return storeErr(err)
	}
	s.log.Info(ctx, "principal logged out", "principal_id", principalID)
	return nil
}

// FederatedLoginURL returns the provider authorization URL together with
// the signed state embedded in it.
func (s *AuthService) FederatedLoginURL(ctx context.Context) (string, string, error) {
	if s.federated == nil {
		return "", "", ErrFederatedDisabled
	}
	state, err := s.tokens.IssueState()
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return s.federated.AuthCodeURL(state), state, nil
}

// FederatedCallback completes the provider handshake and logs the
// resolved principal in.
func (s *AuthService) FederatedCallback(ctx context.Context, code, state string) (*AuthResult, error) {
	if s.federated == nil {
		return nil, ErrFederatedDisabled
	}
	if err := s.tokens.VerifyState(state); err != nil {
		s.log.Warn(ctx, "federated callback with bad state", "error", err)
		return nil, fmt.Errorf("%w: invalid state", common.ErrFederatedAuthFailed)
	}

	p, err := s.federated.Authenticate(ctx, auth.FederatedGrant{Code: code})
	if err != nil {
		return nil, err
	}
	return s.completeLogin(ctx, p)
}

// WhoAmI returns the public view of the principal.
func (s *AuthService) WhoAmI(ctx context.Context, principalID string) (*models.PrincipalView, error) {
	p, err := s.repos.Repos().Principals.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPrincipalNotFound
		}
		return nil, storeErr(err)
	}
	v := p.View()
	return &v, nil
}
