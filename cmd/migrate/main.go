// Command migrate applies, reverts and inspects schema migrations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"chattym/internal/config"
	"chattym/internal/database"
	"chattym/internal/middleware"
)

const usage = "usage: migrate <up|auto|status|down VERSION>"

var errUsage = errors.New(usage)

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if err := run(context.Background(), flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	migrator := database.NewMigrator(db)

	switch args[0] {
	case "up":
		n, err := migrator.Up(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d migration(s) applied\n", n)
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if _, err := database.PlanSchema(cfg); err != nil {
			return err
		}
		if err := database.AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
		fmt.Println("automigrate complete")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("mode=%s env=%s sql=%t automigrate=%t applied=%d pending=%d\n",
			status.Mode, status.Environment, status.SQL, status.AutoMigrate, len(status.Applied), len(status.Pending))
		for _, m := range status.Pending {
			fmt.Printf("pending: %s\n", m)
		}
	case "down":
		if len(args) < 2 {
			return errUsage
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := migrator.Down(ctx, version); err != nil {
			return err
		}
		fmt.Printf("reverted %06d\n", version)
	default:
		return errUsage
	}
	return nil
}
