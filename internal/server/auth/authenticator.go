package auth

import (
	"context"

	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
)

// Credentials is what a caller presents to prove identity. The set of
// variants is closed: LocalCredential and FederatedGrant.
type Credentials interface {
	credentials()
}

// LocalCredential is an email/password pair.
type LocalCredential struct {
	Email    string
	Password string
}

// FederatedGrant is an authorization code returned by the identity
// provider to the callback endpoint.
type FederatedGrant struct {
	Code string
}

func (LocalCredential) credentials() {}
func (FederatedGrant) credentials()  {}

// Authenticator resolves presented credentials to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, c Credentials) (*models.Principal, error)
}
