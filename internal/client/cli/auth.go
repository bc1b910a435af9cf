package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dailyjournal/internal/client/api"
	"github.com/dmitrijs2005/dailyjournal/internal/client/services"
	"github.com/dmitrijs2005/dailyjournal/internal/common"
)

// getPassword is replaced in tests; there is no terminal there.
var getPassword = promptPassword

// Register prompts for username, email and password and creates the
// account. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	username, err := promptLine(a.reader, a.out, "Username")
	if err != nil {
		return err
	}
	email, err := promptLine(a.reader, a.out, "Email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	p, err := a.authService.Register(ctx, username, email, password)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Registered %s (%s)\n", p.Username, p.Role)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := promptLine(a.reader, a.out, "Email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	p, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", p.Username)
	return nil
}

// GitHubLogin prints the URL to open in a browser. The server finishes the
// flow and hands the tokens to the configured client.
func (a *App) GitHubLogin(ctx context.Context) error {
	u, err := a.authService.FederatedLoginURL(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Open this URL in your browser:\n%s\n", u)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	p, err := a.authService.WhoAmI(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s id=%s\n", p.Username, p.Email, p.Role, p.ID)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.authService.Refresh(ctx); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Tokens refreshed")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// report prints a short user-facing line for err and returns it.
func (a *App) report(err error) error {
	var apiErr *api.Error
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		fmt.Fprintln(a.out, "Not logged in. Use 'login' or 'register' first.")
	case errors.Is(err, api.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later.")
	case errors.As(err, &apiErr):
		fmt.Fprintln(a.out, "Error:", apiErr.Error())
	default:
		fmt.Fprintln(a.out, "Error:", err.Error())
	}
	return err
}
