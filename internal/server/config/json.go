package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/dailyjournal/internal/flagx"
	"github.com/dmitrijs2005/dailyjournal/internal/timex"
)

// JsonConfig mirrors Config for file loading. Durations use timex.Duration
// so both "15m" and integer nanoseconds are accepted. Pointer fields tell
// "absent" apart from a zero value.
type JsonConfig struct {
	HTTPAddr       string `json:"http_addr"`
	GRPCHealthAddr string `json:"grpc_health_addr"`
	DatabaseDSN    string `json:"database_dsn"`
	MigrateOnStart *bool  `json:"migrate_on_start"`

	AccessTokenSecret  string          `json:"access_token_secret"`
	RefreshTokenSecret string          `json:"refresh_token_secret"`
	AccessTokenTTL     *timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL    *timex.Duration `json:"refresh_token_ttl"`
	StateTokenTTL      *timex.Duration `json:"state_token_ttl"`
	BcryptCost         int             `json:"bcrypt_cost"`

	GitHubClientID      string `json:"github_client_id"`
	GitHubClientSecret  string `json:"github_client_secret"`
	GitHubCallbackURL   string `json:"github_callback_url"`
	FederatedResultMode string `json:"federated_result_mode"`
	ClientRedirectURL   string `json:"client_redirect_url"`

	CORSAllowedOrigins []string        `json:"cors_allowed_origins"`
	ShutdownTimeout    *timex.Duration `json:"shutdown_timeout"`
	LogLevel           string          `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field present in it into cfg.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var c JsonConfig
	if err := json.Unmarshal(b, &c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	setString(&cfg.HTTPAddr, c.HTTPAddr)
	setString(&cfg.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	if c.MigrateOnStart != nil {
		cfg.MigrateOnStart = *c.MigrateOnStart
	}

	setString(&cfg.AccessTokenSecret, c.AccessTokenSecret)
	setString(&cfg.RefreshTokenSecret, c.RefreshTokenSecret)
	setDuration(&cfg.AccessTokenTTL, c.AccessTokenTTL)
	setDuration(&cfg.RefreshTokenTTL, c.RefreshTokenTTL)
	setDuration(&cfg.StateTokenTTL, c.StateTokenTTL)
	if c.BcryptCost != 0 {
		cfg.BcryptCost = c.BcryptCost
	}

	setString(&cfg.GitHubClientID, c.GitHubClientID)
	setString(&cfg.GitHubClientSecret, c.GitHubClientSecret)
	setString(&cfg.GitHubCallbackURL, c.GitHubCallbackURL)
	setString(&cfg.FederatedResultMode, c.FederatedResultMode)
	setString(&cfg.ClientRedirectURL, c.ClientRedirectURL)

	if c.CORSAllowedOrigins != nil {
		cfg.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	setDuration(&cfg.ShutdownTimeout, c.ShutdownTimeout)
	setString(&cfg.LogLevel, c.LogLevel)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
