package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

const sessionFileName = "session.db"

// Config holds runtime settings for the journal CLI.
type Config struct {
	ServerURL      string        `env:"JOURNAL_CLI_SERVER_URL"`
	RequestTimeout time.Duration `env:"JOURNAL_CLI_REQUEST_TIMEOUT"`
	SessionPath    string        `env:"JOURNAL_CLI_SESSION_PATH"`
}

// userConfigDir is a test seam for os.UserConfigDir.
var userConfigDir = os.UserConfigDir

// LoadDefaults populates c with sensible defaults. The session database
// lives under the user's config dir, or the working directory when that
// cannot be determined.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:3000"
	c.RequestTimeout = 10 * time.Second

	c.SessionPath = sessionFileName
	if dir, err := userConfigDir(); err == nil {
		c.SessionPath = filepath.Join(dir, "dailyjournal", sessionFileName)
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON, the environment and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server url %q must be an absolute http(s) URL", c.ServerURL))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.SessionPath == "" {
		errs = append(errs, errors.New("session path is required"))
	}
	return errors.Join(errs...)
}
