package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/dailyjournal/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-session"}

// parseFlags populates cfg from the flags it knows; the command name and
// anything else on the line are left for the caller.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the journal server")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.SessionPath, "session", cfg.SessionPath, "path of the local session database")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}

// Command returns the command name given on the command line, "" if none.
func Command(args []string) string {
	rest := flagx.Positional(args, append(knownFlags, "-c", "-config", "--config"))
	if len(rest) == 0 {
		return ""
	}
	return rest[0]
}
