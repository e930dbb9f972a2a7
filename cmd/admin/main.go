// Command admin manages staff accounts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"chattym/internal/config"
	"chattym/internal/database"
	"chattym/internal/models"
	"chattym/internal/repository"
	"chattym/internal/service"
	"chattym/internal/validation"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <email>   - Grant staff to a user")
	fmt.Println("  go run ./cmd/admin demote <email>    - Revoke staff from a user")
	fmt.Println("  go run ./cmd/admin list-staff        - List all staff accounts")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	if err := run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "admin: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	users := service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewPostRepository(db),
		repository.NewSubscriptionRepository(db),
	)

	switch command {
	case "promote", "demote":
		if len(args) < 1 {
			return fmt.Errorf("usage: go run ./cmd/admin %s <email>", command)
		}
		return setStaff(ctx, users, args[0], command == "promote")
	case "list-staff":
		return listStaff(ctx, users)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func setStaff(ctx context.Context, users *service.UserService, email string, staff bool) error {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	user, err := users.SetStaff(ctx, email, staff)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return fmt.Errorf("no user with email %s", email)
		}
		return err
	}

	verb := "revoked from"
	if staff {
		verb = "granted to"
	}
	fmt.Printf("Staff %s %s (ID: %d)\n", verb, user.Username, user.ID)
	return nil
}

func listStaff(ctx context.Context, users *service.UserService) error {
	staff, err := users.ListStaff(ctx)
	if err != nil {
		return err
	}
	if len(staff) == 0 {
		fmt.Println("No staff accounts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tACTIVE")
	for _, u := range staff {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", u.ID, u.Username, u.Email, u.IsActive)
	}
	return w.Flush()
}
