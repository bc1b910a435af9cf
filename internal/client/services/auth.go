// Package services contains application services for the journal CLI.
// This file defines the authentication service: register, login, token
// refresh, logout and whoami, with the session kept in the local database.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dailyjournal/internal/client/api"
	"github.com/dmitrijs2005/dailyjournal/internal/client/repositories/session"
	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/dbx"
)

var ErrNotLoggedIn = errors.New("not logged in")

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUsername     = "username"
)

// Client is the subset of the server API the service needs.
type Client interface {
	Register(ctx context.Context, username, email string, password []byte) (*api.AuthResult, error)
	Login(ctx context.Context, email string, password []byte) (*api.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*api.AuthResult, error)
	Logout(ctx context.Context, accessToken string) error
	WhoAmI(ctx context.Context, accessToken string) (*api.Principal, error)
	FederatedLoginURL(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// All methods honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, username, email string, password []byte) (*api.Principal, error)
	Login(ctx context.Context, email string, password []byte) (*api.Principal, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*api.Principal, error)
	FederatedLoginURL(ctx context.Context) (string, error)
	// CurrentUser returns the username of the stored session, "" if none.
	CurrentUser(ctx context.Context) string
	Ping(ctx context.Context) error
}

type authService struct {
	client Client
	db     *sql.DB
}

func NewAuthService(client Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) sessionRepo() session.Repository {
	return session.NewSQLiteRepository(a.db)
}

// saveSession stores the token pair and username in a single transaction.
func (a *authService) saveSession(ctx context.Context, res *api.AuthResult) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := session.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyAccessToken, res.AccessToken); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyRefreshToken, res.RefreshToken); err != nil {
			return err
		}
		return repo.Set(ctx, keyUsername, res.Principal.Username)
	})
}

func (a *authService) token(ctx context.Context, key string) (string, error) {
	v, err := a.sessionRepo().Get(ctx, key)
	if errors.Is(err, common.ErrorNotFound) || (err == nil && v == "") {
		return "", ErrNotLoggedIn
	}
	return v, err
}

// Register creates the account and keeps the returned session.
func (a *authService) Register(ctx context.Context, username, email string, password []byte) (*api.Principal, error) {
	res, err := a.client.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	if err := a.saveSession(ctx, res); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return &res.Principal, nil
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*api.Principal, error) {
	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if err := a.saveSession(ctx, res); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return &res.Principal, nil
}

// Refresh rotates the stored refresh token. A rejected token ends the
// local session.
func (a *authService) Refresh(ctx context.Context) error {
	rt, err := a.token(ctx, keyRefreshToken)
	if err != nil {
		return err
	}

	res, err := a.client.Refresh(ctx, rt)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			_ = a.sessionRepo().Clear(ctx)
			return ErrNotLoggedIn
		}
		return err
	}
	return a.saveSession(ctx, res)
}

// WhoAmI fetches the current principal, refreshing once if the access
// token has expired.
func (a *authService) WhoAmI(ctx context.Context) (*api.Principal, error) {
	at, err := a.token(ctx, keyAccessToken)
	if err != nil {
		return nil, err
	}

	p, err := a.client.WhoAmI(ctx, at)
	if errors.Is(err, common.ErrTokenExpired) {
		if err := a.Refresh(ctx); err != nil {
			return nil, err
		}
		if at, err = a.token(ctx, keyAccessToken); err != nil {
			return nil, err
		}
		p, err = a.client.WhoAmI(ctx, at)
	}
	return p, err
}

// Logout invalidates the refresh token on the server and always clears
// the local session. A server that already rejects the token is not an
// error.
func (a *authService) Logout(ctx context.Context) error {
	at, err := a.token(ctx, keyAccessToken)
	if err != nil {
		return err
	}

	serverErr := a.client.Logout(ctx, at)
	if err := a.sessionRepo().Clear(ctx); err != nil {
		return err
	}
	if serverErr != nil && !errors.Is(serverErr, api.ErrUnauthorized) {
		return serverErr
	}
	return nil
}

func (a *authService) FederatedLoginURL(ctx context.Context) (string, error) {
	return a.client.FederatedLoginURL(ctx)
}

func (a *authService) CurrentUser(ctx context.Context) string {
	v, _ := a.sessionRepo().Get(ctx, keyUsername)
	return v
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
