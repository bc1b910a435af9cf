package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/logging"
	"github.com/dmitrijs2005/dailyjournal/internal/server/auth"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dailyjournal/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeProvider struct{}

func (fakeProvider) AuthCodeURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + state
}

func (fakeProvider) Exchange(_ context.Context, code string) (*auth.Profile, error) {
	if code != "good-code" {
		return nil, errors.New("bad_verification_code")
	}
	return &auth.Profile{ID: "583231", Login: "octocat", Email: "octocat@github.com"}, nil
}

type testServer struct {
	srv    *httptest.Server
	repos  *repomanager.MemoryRepositoryManager
	tokens *auth.TokenIssuer
}

func newTestServer(t *testing.T, mutate func(*Options)) *testServer {
	t.Helper()

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	repos := repomanager.NewMemoryRepositoryManager()
	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		StateTTL:      10 * time.Minute,
	})
	principals := repos.Repos().Principals
	federated := auth.NewFederatedAuthenticator(fakeProvider{}, principals, services.PrincipalTx(repos), logging.Nop{})

	opts := Options{
		Auth:    services.NewAuthService(repos, hasher, tokens, federated, logging.Nop{}),
		Users:   services.NewUserService(repos, hasher, logging.Nop{}),
		Entries: services.NewEntryService(repos, logging.Nop{}),
		Guard:   auth.NewGuard(tokens, principals),
		Log:     logging.Nop{},
	}
	if mutate != nil {
		mutate(&opts)
	}

	srv := httptest.NewServer(NewRouter(opts))
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, repos: repos, tokens: tokens}
}

func (ts *testServer) client() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}

// do sends a JSON request and decodes the JSON response into out when
// out is non-nil. It returns the status code.
func (ts *testServer) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := ts.client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type authResponse struct {
	Principal struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"principal"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (ts *testServer) register(t *testing.T, username string) authResponse {
	t.Helper()
	var res authResponse
	status := ts.do(t, http.MethodPost, "/auth/register", "", registerRequest{
		Username: username, Email: username + "@example.com", Password: "secret123",
	}, &res)
	require.Equal(t, http.StatusCreated, status)
	return res
}
