package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"chattym/internal/middleware"
	"chattym/internal/observability"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var group singleflight.Group

// Aside implements cache-aside for key. On a hit dest is filled from Redis.
// On a miss fn loads dest and the result is stored for ttl. Concurrent misses
// for the same key share one fn call. Without Redis, fn is called directly.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fn func() error) error {
	if client == nil {
		return fn()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues("hit").Inc()
			return nil
		}
		client.Del(ctx, key)
	case errors.Is(err, redis.Nil):
	default:
		observability.CacheLookups.WithLabelValues("error").Inc()
		return fn()
	}
	observability.CacheLookups.WithLabelValues("miss").Inc()

	v, err, shared := group.Do(key, func() (any, error) {
		if err := fn(); err != nil {
			return nil, err
		}
		b, err := json.Marshal(dest)
		if err != nil {
			return nil, err
		}
		if err := client.Set(ctx, key, b, ttl).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "cache set failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return b, nil
	})
	if err != nil {
		return err
	}
	if shared {
		return json.Unmarshal(v.([]byte), dest)
	}
	return nil
}
