package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_BootstrapAdminThenUser(t *testing.T) {
	e := newEnv(t)

	_, first := e.register(t, "alice")
	_, second := e.register(t, "bob")

	assert.Equal(t, common.RoleAdmin, first.Principal.Role)
	assert.Equal(t, common.RoleUser, second.Principal.Role)
	assert.NotEmpty(t, first.AccessToken)
	assert.NotEmpty(t, first.RefreshToken)
	assert.NotNil(t, first.Principal.LastLogin)
}

func TestRegister_ConcurrentFirstRegistrationsYieldOneAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	const n = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		roles []string
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user%02d", i)
			res, err := e.auth.Register(ctx, name, name+"@example.com", "secret123")
			require.NoError(t, err)
			mu.Lock()
			roles = append(roles, res.Principal.Role)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	admins := 0
	for _, r := range roles {
		if r == common.RoleAdmin {
			admins++
		}
	}
	assert.Len(t, roles, n)
	assert.Equal(t, 1, admins)
}

func TestRegister_StoresRefreshToken(t *testing.T) {
	e := newEnv(t)
	p, res := e.register(t, "alice")

	assert.Equal(t, res.RefreshToken, p.RefreshToken)
	assert.NotEqual(t, "secret123", p.PasswordHash)

	id, err := e.tokens.VerifyRefreshToken(res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, p.ID, id)
}

func TestRegister_Duplicate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "alice")

	tests := []struct {
		name, username, email string
	}{
		{"same email", "alice2", "ALICE@example.com"},
		{"same username", "alice", "other@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.auth.Register(ctx, tt.username, tt.email, "secret123")
			require.ErrorIs(t, err, common.ErrConflict)
		})
	}

	n, err := e.repos.Repos().Principals.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)

	_, err := e.auth.Register(context.Background(), "al", "not-an-email", "123")
	require.ErrorIs(t, err, common.ErrValidation)

	var verr common.ValidationErrors
	require.True(t, errors.As(err, &verr))
	fields := map[string]bool{}
	for _, fe := range verr {
		fields[fe.Field] = true
	}
	assert.Equal(t, map[string]bool{"username": true, "email": true, "password": true}, fields)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, _ := e.register(t, "alice")

	res, err := e.auth.Login(ctx, "  Alice@Example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, p.ID, res.Principal.ID)

	stored, err := e.repos.Repos().Principals.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, res.RefreshToken, stored.RefreshToken)
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "alice")

	_, wrongPassword := e.auth.Login(ctx, "alice@example.com", "nope-nope")
	_, unknownEmail := e.auth.Login(ctx, "nobody@example.com", "secret123")

	require.ErrorIs(t, wrongPassword, common.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, common.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogin_StoreDown(t *testing.T) {
	e := newEnv(t)
	e.repos.PrincipalStore.Err = errors.New("connection refused")

	_, err := e.auth.Login(context.Background(), "alice@example.com", "secret123")
	require.ErrorIs(t, err, common.ErrDependencyUnavailable)
}

func TestRefresh_Rotates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, reg := e.register(t, "alice")

	next, err := e.auth.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, reg.RefreshToken, next.RefreshToken)

	_, err = e.auth.Refresh(ctx, reg.RefreshToken)
	require.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = e.auth.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_Rejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, reg := e.register(t, "alice")

	_, err := e.auth.Refresh(ctx, "")
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = e.auth.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = e.auth.Refresh(ctx, reg.AccessToken)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefresh_ConcurrentSingleWinner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, reg := e.register(t, "alice")

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.auth.Refresh(ctx, reg.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, common.ErrInvalidToken) {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, fail)
}

func TestLogout_InvalidatesRefresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, reg := e.register(t, "alice")

	require.NoError(t, e.auth.Logout(ctx, p.ID))

	_, err := e.auth.Refresh(ctx, reg.RefreshToken)
	require.ErrorIs(t, err, common.ErrInvalidToken)

	// Access tokens are stateless and stay valid until expiry.
	_, err = e.tokens.VerifyAccessToken(reg.AccessToken)
	require.NoError(t, err)

	require.ErrorIs(t, e.auth.Logout(ctx, "missing"), common.ErrPrincipalNotFound)
}

func TestWhoAmI(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, _ := e.register(t, "alice")

	v, err := e.auth.WhoAmI(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", v.Username)
	assert.False(t, v.Federated)

	_, err = e.auth.WhoAmI(ctx, "missing")
	require.ErrorIs(t, err, common.ErrPrincipalNotFound)
}

func TestFederated_LoginURLAndCallback(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.provider.profiles["code"] = &auth.Profile{ID: "42", Login: "octocat", Email: "octo@github.com"}

	url, state, err := e.auth.FederatedLoginURL(ctx)
	require.NoError(t, err)
	assert.Contains(t, url, state)

	res, err := e.auth.FederatedCallback(ctx, "code", state)
	require.NoError(t, err)
	assert.Equal(t, common.RoleAdmin, res.Principal.Role)
	assert.True(t, res.Principal.Federated)
	assert.NotEmpty(t, res.RefreshToken)

	again, err := e.auth.FederatedCallback(ctx, "code", state)
	require.NoError(t, err)
	assert.Equal(t, res.Principal.ID, again.Principal.ID)

	// Federated principals count toward the bootstrap rule.
	_, local := e.register(t, "alice")
	assert.Equal(t, common.RoleUser, local.Principal.Role)
}

func TestFederated_Callback_Rejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, state, err := e.auth.FederatedLoginURL(ctx)
	require.NoError(t, err)

	_, err = e.auth.FederatedCallback(ctx, "code", "forged")
	require.ErrorIs(t, err, common.ErrFederatedAuthFailed)

	_, err = e.auth.FederatedCallback(ctx, "unknown-code", state)
	require.ErrorIs(t, err, common.ErrFederatedAuthFailed)
}

func TestFederated_Disabled(t *testing.T) {
	e := newEnv(t)
	e.auth.federated = nil

	_, _, err := e.auth.FederatedLoginURL(context.Background())
	require.ErrorIs(t, err, ErrFederatedDisabled)
	_, err = e.auth.FederatedCallback(context.Background(), "c", "s")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFederated_LocalPasswordNeverMatches(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.provider.profiles["code"] = &auth.Profile{ID: "42", Login: "octocat", Email: "octo@github.com"}

	_, state, err := e.auth.FederatedLoginURL(ctx)
	require.NoError(t, err)
	_, err = e.auth.FederatedCallback(ctx, "code", state)
	require.NoError(t, err)

	_, err = e.auth.Login(ctx, "octo@github.com", "!")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}
