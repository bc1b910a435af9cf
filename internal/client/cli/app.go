package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/dmitrijs2005/dailyjournal/internal/client/api"
	"github.com/dmitrijs2005/dailyjournal/internal/client/config"
	"github.com/dmitrijs2005/dailyjournal/internal/client/localdb"
	"github.com/dmitrijs2005/dailyjournal/internal/client/services"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	db          *sql.DB
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := localdb.Open(ctx, c.SessionPath)
	if err != nil {
		return nil, err
	}

	client := api.New(c.ServerURL, c.RequestTimeout)
	as := services.NewAuthService(client, db)

	return &App{
		config:      c,
		authService: as,
		db:          db,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Run executes the command in args, or starts the REPL when args is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.db.Close()

	if len(args) > 0 {
		return dispatch(ctx, a, args[0])
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.authService.CurrentUser(context.Background()) != ""
}

func (a *App) status() string {
	if u := a.authService.CurrentUser(context.Background()); u != "" {
		return "(" + u + ")"
	}
	return ""
}
