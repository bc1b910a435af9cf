package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays JOURNAL_* variables. Unset variables leave the field
// untouched. A nil environ means the process environment.
func parseEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
