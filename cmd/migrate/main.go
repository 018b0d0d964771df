// Command migrate applies or reports the Inkwell schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"inkwell/internal/bootstrap"
	"inkwell/internal/config"
	"inkwell/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <auto|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "auto":
		rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{Migrate: true})
		if err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		defer func() { _ = rt.Close(ctx) }()
		log.Println("automigrations applied")
	case "status":
		rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() { _ = rt.Close(ctx) }()

		missing, err := database.MissingTables(rt.DB)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Printf("env=%s driver=%s missing=%d", cfg.Env, cfg.DBDriver, len(missing))
		for _, table := range missing {
			log.Printf("missing: %s", table)
		}
	default:
		return usage()
	}
	return nil
}
