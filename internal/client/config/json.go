package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/dailyjournal/internal/flagx"
	"github.com/dmitrijs2005/dailyjournal/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL      string          `json:"server_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	SessionPath    string          `json:"session_path"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. Only
// fields present in the file are copied.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SessionPath != "" {
		cfg.SessionPath = jc.SessionPath
	}
	return nil
}
