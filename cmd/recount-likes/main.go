// Command recount-likes repairs denormalized post like counters.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"chattym/internal/config"
	"chattym/internal/database"
	"chattym/internal/middleware"
	"chattym/internal/repository"
	"chattym/internal/service"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report drifted counters without writing them")
	flag.Parse()

	if err := run(context.Background(), *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "recount-likes: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dryRun bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	// Notifications are never sent during a recount.
	likes := service.NewLikeService(repository.NewLikeRepository(db), repository.NewPostRepository(db), nil)
	changed, err := likes.RecountLikes(ctx, dryRun, func(postID uint, _, after int) {
		fmt.Printf("Post %d: %d\n", postID, after)
	})
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("%d post(s) would change\n", changed)
	} else {
		fmt.Printf("%d post(s) updated\n", changed)
	}
	return nil
}
