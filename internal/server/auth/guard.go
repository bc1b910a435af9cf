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

// Guard turns an Authorization header into a principal and answers role
// and ownership questions. It never writes to the store.
type Guard struct {
	tokens     *TokenIssuer
	principals principals.Repository
}

func NewGuard(tokens *TokenIssuer, repo principals.Repository) *Guard {
	return &Guard{tokens: tokens, principals: repo}
}

// BearerToken extracts the token from an "Authorization: Bearer <t>" value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", common.ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrMissingToken
	}
	return token, nil
}

// Authenticate resolves the header to a live principal. The returned
// record has its secret fields cleared.
func (g *Guard) Authenticate(ctx context.Context, header string) (*models.Principal, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}

	claims, err := g.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	p, err := g.principals.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrDependencyUnavailable, err)
	}

	p.PasswordHash = ""
	p.RefreshToken = ""
	return p, nil
}

// RequireRole fails with ErrForbidden unless p holds role.
func RequireRole(p *models.Principal, role string) error {
	if p == nil || p.Role != role {
		return common.ErrForbidden
	}
	return nil
}

// CheckOwnership allows the owner of a resource and any admin.
func CheckOwnership(p *models.Principal, ownerID string) error {
	if p == nil {
		return common.ErrForbidden
	}
	if p.ID == ownerID || p.Role == common.RoleAdmin {
		return nil
	}
	return common.ErrForbidden
}
