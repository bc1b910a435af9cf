package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/dailyjournal/internal/flagx"
)

var knownFlags = []string{
	"-a", "-g", "-d", "-s", "-rs",
	"-access-ttl", "-refresh-ttl", "-bcrypt-cost",
	"-github-client-id", "-github-client-secret", "-github-callback-url",
	"-federated-result", "-client-redirect-url",
	"-log-level", "-migrate",
}

// parseFlags overlays command-line flags.
//
//	-a string                  HTTP bind address (":3000")
//	-g string                  gRPC health bind address (":3001")
//	-d string                  database DSN (postgres URL or sqlite file:)
//	-s string                  access token secret
//	-rs string                 refresh token secret
//	-access-ttl duration       access token lifetime ("1h")
//	-refresh-ttl duration      refresh token lifetime ("168h")
//	-bcrypt-cost int
//	-github-client-id string
//	-github-client-secret string
//	-github-callback-url string
//	-federated-result string   "json" or "redirect"
//	-client-redirect-url string
//	-log-level string
//	-migrate bool              run migrations on start
//
// Arguments are pre-filtered with flagx.FilterArgs so -c/-config and
// unknown flags do not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP bind address")
	fs.StringVar(&cfg.GRPCHealthAddr, "g", cfg.GRPCHealthAddr, "gRPC health bind address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.AccessTokenSecret, "s", cfg.AccessTokenSecret, "access token secret")
	fs.StringVar(&cfg.RefreshTokenSecret, "rs", cfg.RefreshTokenSecret, "refresh token secret")
	fs.DurationVar(&cfg.AccessTokenTTL, "access-ttl", cfg.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&cfg.RefreshTokenTTL, "refresh-ttl", cfg.RefreshTokenTTL, "refresh token lifetime")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "bcrypt work factor")
	fs.StringVar(&cfg.GitHubClientID, "github-client-id", cfg.GitHubClientID, "GitHub OAuth client id")
	fs.StringVar(&cfg.GitHubClientSecret, "github-client-secret", cfg.GitHubClientSecret, "GitHub OAuth client secret")
	fs.StringVar(&cfg.GitHubCallbackURL, "github-callback-url", cfg.GitHubCallbackURL, "GitHub OAuth callback URL")
	fs.StringVar(&cfg.FederatedResultMode, "federated-result", cfg.FederatedResultMode, "federated callback result mode")
	fs.StringVar(&cfg.ClientRedirectURL, "client-redirect-url", cfg.ClientRedirectURL, "client URL for redirect mode")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.MigrateOnStart, "migrate", cfg.MigrateOnStart, "run migrations on start")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
