package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/dailyjournal/internal/client/cli"
	"github.com/dmitrijs2005/dailyjournal/internal/client/config"
)

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

func main() {
	ctx := context.Background()
	args := os.Args[1:]

	cfg, err := config.LoadConfig(args, environ())
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var cmd []string
	if c := config.Command(args); c != "" {
		cmd = []string{c}
	}

	if err := app.Run(ctx, cmd); err != nil {
		os.Exit(1)
	}
}
