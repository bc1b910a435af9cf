package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/dmitrijs2005/dailyjournal/internal/server/repositories/principals"
)

// lockedPasswordPrefix marks a stored hash no password can match. It is
// what federated principals carry; bcrypt hashes start with "$".
const lockedPasswordPrefix = "!"

func passwordLocked(hash string) bool {
	return hash == "" || strings.HasPrefix(hash, lockedPasswordPrefix)
}

// CredentialAuthenticator checks LocalCredential against the stored hash.
// An unknown email, a federated-only account and a wrong password fail
// identically, including the time spent: the first two are still compared
// against a dummy hash.
type CredentialAuthenticator struct {
	principals principals.Repository
	hasher     Hasher
}

func NewCredentialAuthenticator(repo principals.Repository, hasher Hasher) *CredentialAuthenticator {
	return &CredentialAuthenticator{principals: repo, hasher: hasher}
}

func (a *CredentialAuthenticator) Authenticate(ctx context.Context, c Credentials) (*models.Principal, error) {
	cred, ok := c.(LocalCredential)
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	email := NormalizeEmail(cred.Email)
	p, err := a.principals.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			a.hasher.Verify(ctx, cred.Password, a.hasher.DummyHash())
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", common.ErrDependencyUnavailable, err)
	}

	if passwordLocked(p.PasswordHash) {
		a.hasher.Verify(ctx, cred.Password, a.hasher.DummyHash())
		return nil, common.ErrInvalidCredentials
	}

	if !a.hasher.Verify(ctx, cred.Password, p.PasswordHash) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, common.ErrInvalidCredentials
	}
	return p, nil
}

// NormalizeEmail trims and lower-cases an address. Emails are stored in
// this form so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
