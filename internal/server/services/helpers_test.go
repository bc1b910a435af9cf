package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/logging"
	"github.com/dmitrijs2005/dailyjournal/internal/server/auth"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeProvider struct {
	profiles map[string]*auth.Profile
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + state
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*auth.Profile, error) {
	p, ok := f.profiles[code]
	if !ok {
		return nil, errors.New("bad_verification_code")
	}
	return p, nil
}

type env struct {
	repos    *repomanager.MemoryRepositoryManager
	tokens   *auth.TokenIssuer
	provider *fakeProvider
	auth     *AuthService
	users    *UserService
	entries  *EntryService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	repos := repomanager.NewMemoryRepositoryManager()
	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
		StateTTL:      10 * time.Minute,
	})
	provider := &fakeProvider{profiles: map[string]*auth.Profile{}}
	federated := auth.NewFederatedAuthenticator(provider, repos.Repos().Principals, PrincipalTx(repos), logging.Nop{})

	return &env{
		repos:    repos,
		tokens:   tokens,
		provider: provider,
		auth:     NewAuthService(repos, hasher, tokens, federated, logging.Nop{}),
		users:    NewUserService(repos, hasher, logging.Nop{}),
		entries:  NewEntryService(repos, logging.Nop{}),
	}
}

// register creates a local principal and returns its stored record.
func (e *env) register(t *testing.T, username string) (*models.Principal, *AuthResult) {
	t.Helper()
	res, err := e.auth.Register(context.Background(), username, username+"@example.com", "secret123")
	require.NoError(t, err)
	p, err := e.repos.Repos().Principals.GetByID(context.Background(), res.Principal.ID)
	require.NoError(t, err)
	return p, res
}
