// Package config loads runtime configuration for the journal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. JOURNAL_CLI_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string        base URL of the journal server
//	-t duration      per-request timeout
//	-session string  path of the local session database
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:3000",
//	  "request_timeout": "10s",
//	  "session_path": "/home/me/.config/dailyjournal/session.db"
//	}
package config
