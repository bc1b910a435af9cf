package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/client/config"
	"github.com/dmitrijs2005/dailyjournal/internal/client/services"
	"github.com/stretchr/testify/require"
)

func TestNewApp_RunSingleCommand(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ServerURL:      srv.URL,
		RequestTimeout: time.Second,
		SessionPath:    filepath.Join(t.TempDir(), "nested", "session.db"),
	}

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	require.FileExists(t, cfg.SessionPath)

	var out bytes.Buffer
	a.out = &out

	require.False(t, a.isLoggedIn())
	err = a.Run(context.Background(), []string{"whoami"})
	require.ErrorIs(t, err, services.ErrNotLoggedIn)
	require.Contains(t, out.String(), "Not logged in")
}

func TestNewApp_RunUnknownCommand(t *testing.T) {
	cfg := &config.Config{
		ServerURL:      "http://127.0.0.1:1",
		RequestTimeout: time.Second,
		SessionPath:    filepath.Join(t.TempDir(), "session.db"),
	}

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	require.ErrorIs(t, a.Run(context.Background(), []string{"bogus"}), errUnknownCommand)
}
