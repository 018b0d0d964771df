// Command main copies users, posts, comments and likes from the original
// sqlite.db file into the configured database.
package main

import (
	"context"
	"flag"
	"log"

	"inkwell/internal/bootstrap"
	"inkwell/internal/config"
	"inkwell/internal/legacy"
)

func main() {
	source := flag.String("source", "sqlite.db", "Path to the legacy sqlite database")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	src, err := legacy.OpenSource(*source)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *source, err)
	}

	report, err := legacy.NewImporter(src, rt.DB).Run(ctx)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Imported %d users, %d posts, %d comments, %d likes (%d rows skipped)",
		report.Users, report.Posts, report.Comments, report.Likes, report.Skipped)
}
