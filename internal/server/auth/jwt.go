// Package auth implements credential checks, token issuance and the access
// guard that turns a bearer token into a principal.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeState   = "state"
)

// Claims is the JWT payload for every token class. Role is set on access
// tokens only.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
	Type string `json:"typ"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	StateTTL      time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// TokenIssuer signs and verifies HS256 tokens. Access and state tokens use
// the access secret, refresh tokens the refresh secret. Every token gets a
// random jti, so two tokens issued in the same second still differ.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	stateTTL      time.Duration
	now           func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		stateTTL:      cfg.StateTTL,
		now:           now,
	}
}

func (i *TokenIssuer) sign(subject, role, typ string, ttl time.Duration, secret []byte) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
		Type: typ,
	})
	return token.SignedString(secret)
}

func (i *TokenIssuer) IssueAccessToken(p *models.Principal) (string, error) {
	return i.sign(p.ID, p.Role, TokenTypeAccess, i.accessTTL, i.accessSecret)
}

func (i *TokenIssuer) IssueRefreshToken(p *models.Principal) (string, error) {
	return i.sign(p.ID, "", TokenTypeRefresh, i.refreshTTL, i.refreshSecret)
}

// IssuePair signs a fresh access/refresh pair. Persisting the refresh
// token is the caller's job.
func (i *TokenIssuer) IssuePair(p *models.Principal) (*TokenPair, error) {
	access, err := i.IssueAccessToken(p)
	if err != nil {
		return nil, err
	}
	refresh, err := i.IssueRefreshToken(p)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueState signs an opaque OAuth state value.
func (i *TokenIssuer) IssueState() (string, error) {
	return i.sign("", "", TokenTypeState, i.stateTTL, i.accessSecret)
}

func (i *TokenIssuer) parse(tokenString, typ string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if claims.Type != typ {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccessToken checks signature, expiry and token class.
func (i *TokenIssuer) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims, err := i.parse(tokenString, TokenTypeAccess, i.accessSecret)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken returns the principal id carried by a refresh token.
// The caller must still compare the token with the stored value.
func (i *TokenIssuer) VerifyRefreshToken(tokenString string) (string, error) {
	claims, err := i.parse(tokenString, TokenTypeRefresh, i.refreshSecret)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", common.ErrInvalidToken
	}
	return claims.Subject, nil
}

func (i *TokenIssuer) VerifyState(tokenString string) error {
	if tokenString == "" {
		return common.ErrInvalidToken
	}
	_, err := i.parse(tokenString, TokenTypeState, i.accessSecret)
	return err
}
