// Package bootstrap connects the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chattym/internal/cache"
	"chattym/internal/config"
	"chattym/internal/database"
	"chattym/internal/middleware"
	"chattym/internal/models"
	"chattym/internal/seed"
	"chattym/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPreset names a built-in seed preset applied when the users table
	// is empty. Ignored outside development.
	SeedPreset string
}

// InitRuntime connects to the database and Redis. A nil Redis client means
// Redis was unreachable; the server then runs without cache or realtime push.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	cache.SetPostTTL(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	r := cache.GetClient()

	if err := ensureDevRootAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if opts.SeedPreset != "" {
		if err := seedIfEmpty(ctx, cfg, db, opts.SeedPreset); err != nil {
			return nil, nil, fmt.Errorf("failed to seed %q: %w", opts.SeedPreset, err)
		}
	}

	return db, r, nil
}

// ensureDevRootAdmin creates or promotes the DEV_ROOT_EMAIL account to staff
// in development. Nothing happens unless both email and password are set.
func ensureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	email := validation.NormalizeEmail(cfg.DevRootEmail)
	if email == "" {
		return nil
	}
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("DEV_ROOT_EMAIL: %w", err)
	}
	if cfg.DevRootPassword == "" {
		return errors.New("DEV_ROOT_PASSWORD must be set when DEV_ROOT_EMAIL is set")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevRootPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			username, _, _ := strings.Cut(email, "@")
			root = models.User{
				Username: username,
				Email:    email,
				Password: string(hashed),
				IsStaff:  true,
				IsActive: true,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&root).Updates(map[string]any{"is_staff": true, "is_active": true}).Error
		}
	})
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "development root admin ensured", slog.String("email", email))
	return nil
}

func seedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB, preset string) error {
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	// The dev root admin alone does not count as seeded data.
	if users > 1 {
		return nil
	}

	opts, err := seed.DefaultPresets().Get(preset)
	if err != nil {
		return err
	}
	_, err = seed.NewSeeder(db, opts.Seed).Run(ctx, opts)
	return err
}
