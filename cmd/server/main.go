package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/dailyjournal/internal/server"
	"github.com/dmitrijs2005/dailyjournal/internal/server/config"
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

	cfg, err := config.LoadConfig(os.Args[1:], environ())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
