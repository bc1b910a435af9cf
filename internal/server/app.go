// Package server wires configuration, storage, auth and the HTTP and gRPC
// health servers into one runnable application with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/dailyjournal/internal/logging"
	"github.com/dmitrijs2005/dailyjournal/internal/server/auth"
	"github.com/dmitrijs2005/dailyjournal/internal/server/config"
	"github.com/dmitrijs2005/dailyjournal/internal/server/httpapi"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dailyjournal/internal/server/services"

	gs "github.com/dmitrijs2005/dailyjournal/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	router http.Handler
	health *gs.HealthServer
}

// NewApp opens the store, applies migrations when enabled and builds the
// services. An unreachable store is a startup error.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger := logging.NewJSON(logOut, c.LogLevel)

	for _, w := range c.Warnings() {
		logger.Warn(ctx, "configuration warning", "warning", w.Error())
	}

	rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if c.MigrateOnStart {
		if err := rm.RunMigrations(ctx); err != nil {
			_ = rm.Close()
			return nil, fmt.Errorf("db migration error: %w", err)
		}
	}

	app, err := newApp(c, logger, rm)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, rm repomanager.RepositoryManager) (*App, error) {
	hasher, err := auth.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  c.AccessTokenSecret,
		RefreshSecret: c.RefreshTokenSecret,
		AccessTTL:     c.AccessTokenTTL,
		RefreshTTL:    c.RefreshTokenTTL,
		StateTTL:      c.StateTokenTTL,
	})

	principals := rm.Repos().Principals

	var federated *auth.FederatedAuthenticator
	if c.FederatedEnabled() {
		provider := auth.NewGitHubProvider(auth.GitHubConfig{
			ClientID:     c.GitHubClientID,
			ClientSecret: c.GitHubClientSecret,
			CallbackURL:  c.GitHubCallbackURL,
		})
		federated = auth.NewFederatedAuthenticator(provider, principals, services.PrincipalTx(rm), logger)
	}

	router := httpapi.NewRouter(httpapi.Options{
		Auth:               services.NewAuthService(rm, hasher, tokens, federated, logger),
		Users:              services.NewUserService(rm, hasher, logger),
		Entries:            services.NewEntryService(rm, logger),
		Guard:              auth.NewGuard(tokens, principals),
		Log:                logger,
		FederatedResult:    c.FederatedResultMode,
		ClientRedirectURL:  c.ClientRedirectURL,
		CORSAllowedOrigins: c.CORSAllowedOrigins,
	})

	return &App{
		config: c,
		logger: logger,
		repos:  rm,
		router: router,
		health: gs.NewHealthServer(c.GRPCHealthAddr, rm, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{Addr: app.config.HTTPAddr, Handler: app.router}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or one
// of the servers fails, then closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHealthServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return app.repos.Close()
}
