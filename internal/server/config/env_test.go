package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := parseEnv(cfg, map[string]string{
		"JOURNAL_DATABASE_DSN":          "file:env.db",
		"JOURNAL_ACCESS_TOKEN_TTL":      "30m",
		"JOURNAL_BCRYPT_COST":           "10",
		"JOURNAL_CORS_ALLOWED_ORIGINS":  "http://a.example,http://b.example",
		"JOURNAL_MIGRATE_ON_START":      "false",
		"JOURNAL_FEDERATED_RESULT_MODE": "redirect",
	})
	require.NoError(t, err)

	assert.Equal(t, "file:env.db", cfg.DatabaseDSN)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, FederatedResultRedirect, cfg.FederatedResultMode)
	assert.Equal(t, ":3000", cfg.HTTPAddr, "unset variables keep the previous value")
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
}

func Test_parseEnv_BadValue(t *testing.T) {
	cfg := &Config{}
	err := parseEnv(cfg, map[string]string{"JOURNAL_BCRYPT_COST": "twelve"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
