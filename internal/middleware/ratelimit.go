package middleware

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"chattym/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens when the counter store is unreachable.
type FailPolicy int

const (
	FailOpen FailPolicy = iota
	// FailClosed answers 503 instead of letting the request through.
	FailClosed
)

var errNoLimiterStore = errors.New("rate limit store unavailable")

// Quota is the outcome of one fixed-window check.
type Quota struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// limitsDisabled reports whether APP_ENV turns limiting off. An unset
// APP_ENV counts as development.
func limitsDisabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "development", "test":
		return true
	}
	return false
}

// Allow counts one hit against rl:<resource>:<id> in a fixed window.
func Allow(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (Quota, error) {
	if limitsDisabled() {
		return Quota{Allowed: true, Remaining: limit}, nil
	}
	if rdb == nil {
		return Quota{}, errNoLimiterStore
	}

	key := "rl:" + resource + ":" + id
	pipe := rdb.TxPipeline()
	hits := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		observability.RedisErrorRate.WithLabelValues("ratelimit").Inc()
		return Quota{}, err
	}

	reset := ttl.Val()
	if reset <= 0 {
		// First hit in the window.
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			observability.RedisErrorRate.WithLabelValues("ratelimit").Inc()
		}
		reset = window
	}

	n := int(hits.Val())
	return Quota{
		Allowed:   n <= limit,
		Remaining: max(limit-n, 0),
		ResetIn:   reset,
	}, nil
}

// CheckRateLimit is Allow reduced to the allow/deny answer.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	q, err := Allow(ctx, rdb, resource, id, limit, window)
	return q.Allowed, err
}

// RateLimit limits each caller to limit requests per window, failing open.
// Callers are keyed by authenticated user when known and by IP otherwise.
// The optional name groups routes under one counter; it defaults to the path.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit FailPolicy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resource := c.Path()
		if len(name) > 0 && name[0] != "" {
			resource = name[0]
		}

		q, err := Allow(c.UserContext(), rdb, resource, callerKey(c), limit, window)
		if err != nil {
			if policy == FailOpen {
				return c.Next()
			}
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable, rejecting",
				"resource", resource, "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "error",
				"error":  "rate limit unavailable",
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(q.Remaining))
		if !q.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(q.ResetIn.Round(time.Second).Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status": "error",
				"error":  "rate limit exceeded",
			})
		}
		return c.Next()
	}
}

func callerKey(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(uint); ok && uid != 0 {
		return fmt.Sprintf("user:%d", uid)
	}
	return "ip:" + c.IP()
}
