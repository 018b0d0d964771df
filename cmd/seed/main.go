// Command main runs the database seeder for Inkwell.
package main

import (
	"context"
	"flag"
	"log"

	"inkwell/internal/bootstrap"
	"inkwell/internal/config"
	"inkwell/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	likeProb := flag.Float64("like-probability", 0.2, "Chance that a user likes a given post")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	fixtures := flag.String("fixtures", "", "YAML fixtures to apply instead of random data")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	s := seed.NewSeeder(rt.DB, cfg.BcryptCost)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	var stats seed.Stats
	if *fixtures != "" {
		f, err := seed.LoadFixtures(*fixtures)
		if err != nil {
			log.Fatalf("Loading fixtures failed: %v", err)
		}
		stats, err = s.ApplyFixtures(ctx, f)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
	} else {
		stats, err = s.Random(ctx, seed.Options{
			Users:           *numUsers,
			Posts:           *numPosts,
			MaxComments:     *maxComments,
			LikeProbability: *likeProb,
			RandSeed:        *randSeed,
		})
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Printf("All generated users have the password: %s", seed.DefaultPassword)
	}

	log.Printf("Seeded %s", stats)
}
