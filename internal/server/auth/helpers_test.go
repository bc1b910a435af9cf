package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/server/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func newIssuer(clock *fakeClock) *TokenIssuer {
	cfg := TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
		StateTTL:      10 * time.Minute,
	}
	if clock != nil {
		cfg.Now = clock.Now
	}
	return NewTokenIssuer(cfg)
}

func newHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func principal(id, role string) *models.Principal {
	return &models.Principal{
		ID:          id,
		Username:    "user-" + id,
		Email:       id + "@example.com",
		Role:        role,
		IsActive:    true,
		Preferences: models.DefaultPreferences(),
	}
}

