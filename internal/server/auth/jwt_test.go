package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	issuer := newIssuer(newClock())
	p := principal("p-1", common.RoleAdmin)

	tok, err := issuer.IssueAccessToken(p)
	require.NoError(t, err)

	claims, err := issuer.VerifyAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "p-1", claims.Subject)
	assert.Equal(t, common.RoleAdmin, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestAccessToken_ExpiresAfterTTL(t *testing.T) {
	clock := newClock()
	issuer := newIssuer(clock)

	tok, err := issuer.IssueAccessToken(principal("p-1", common.RoleUser))
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = issuer.VerifyAccessToken(tok)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = issuer.VerifyAccessToken(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	clock := newClock()
	tok, err := newIssuer(clock).IssueAccessToken(principal("p-1", common.RoleUser))
	require.NoError(t, err)

	other := NewTokenIssuer(TokenConfig{AccessSecret: "another", RefreshSecret: "x", AccessTTL: time.Hour, Now: clock.Now})
	_, err = other.VerifyAccessToken(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_RejectsWrongTokenClass(t *testing.T) {
	clock := newClock()
	issuer := newIssuer(clock)
	p := principal("p-1", common.RoleUser)

	pair, err := issuer.IssuePair(p)
	require.NoError(t, err)

	_, err = issuer.VerifyAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken, "refresh token is not an access token")

	_, err = issuer.VerifyRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken, "access token is not a refresh token")

	state, err := issuer.IssueState()
	require.NoError(t, err)
	_, err = issuer.VerifyAccessToken(state)
	assert.ErrorIs(t, err, common.ErrInvalidToken, "state token is not an access token")
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	clock := newClock()
	issuer := newIssuer(clock)

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "p-1",
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
		Type: TokenTypeAccess,
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.VerifyAccessToken(s)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	issuer := newIssuer(nil)
	_, err := issuer.VerifyAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	_, err = issuer.VerifyRefreshToken("")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefreshToken_RoundTripAndUniqueness(t *testing.T) {
	clock := newClock()
	issuer := newIssuer(clock)
	p := principal("p-9", common.RoleUser)

	first, err := issuer.IssuePair(p)
	require.NoError(t, err)
	second, err := issuer.IssuePair(p)
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken, "same-second tokens must differ")
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	id, err := issuer.VerifyRefreshToken(first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "p-9", id)

	clock.Advance(7*24*time.Hour + time.Second)
	_, err = issuer.VerifyRefreshToken(first.RefreshToken)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestState_RoundTripAndExpiry(t *testing.T) {
	clock := newClock()
	issuer := newIssuer(clock)

	state, err := issuer.IssueState()
	require.NoError(t, err)
	require.NoError(t, issuer.VerifyState(state))

	assert.ErrorIs(t, issuer.VerifyState(""), common.ErrInvalidToken)
	assert.ErrorIs(t, issuer.VerifyState("tampered"), common.ErrInvalidToken)

	clock.Advance(11 * time.Minute)
	assert.ErrorIs(t, issuer.VerifyState(state), common.ErrTokenExpired)
}
