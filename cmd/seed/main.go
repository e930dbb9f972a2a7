// Command seed fills the database with generated users, posts and conversations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"chattym/internal/config"
	"chattym/internal/database"
	"chattym/internal/middleware"
	"chattym/internal/seed"
)

func main() {
	preset := flag.String("preset", "demo", "seed preset to apply")
	presetFile := flag.String("preset-file", "", "YAML file with extra presets merged over the built-ins")
	clean := flag.Bool("clean", false, "delete existing data before seeding")
	seedValue := flag.Int64("seed", 0, "random seed; 0 keeps the preset's value")
	list := flag.Bool("list", false, "list available presets and exit")
	flag.Parse()

	if err := run(context.Background(), *preset, *presetFile, *clean, *seedValue, *list); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, name, presetFile string, clean bool, seedValue int64, list bool) error {
	presets := seed.DefaultPresets()
	if presetFile != "" {
		var err error
		if presets, err = seed.LoadPresetFile(presetFile); err != nil {
			return err
		}
	}
	if list {
		for _, n := range presets.Names() {
			fmt.Println(n)
		}
		return nil
	}

	opts, err := presets.Get(name)
	if err != nil {
		return err
	}
	if seedValue != 0 {
		opts.Seed = seedValue
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if clean {
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to clear a production database")
		}
		if err := seed.Clear(ctx, db); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}

	sum, err := seed.NewSeeder(db, opts.Seed).Run(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %q: %d users, %d posts, %d comments, %d likes, %d subscriptions, %d conversations, %d messages\n",
		name, sum.Users, sum.Posts, sum.Comments, sum.Likes, sum.Subscriptions, sum.Conversations, sum.Messages)
	fmt.Printf("All seeded accounts use password %q\n", opts.Password)
	return nil
}
