package cache

import (
	"context"
	"strconv"
	"time"
)

// Entry lifetimes for cache-aside reads. PostTTL follows CACHE_TTL_SECONDS.
var (
	UserTTL = 5 * time.Minute
	PostTTL = time.Minute
)

// SetPostTTL overrides PostTTL. Non-positive values are ignored.
func SetPostTTL(ttl time.Duration) {
	if ttl > 0 {
		PostTTL = ttl
	}
}

// UserKey holds a cached models.User.
func UserKey(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

// PostKey holds a cached post with its author preloaded.
func PostKey(postID uint) string {
	return "post:" + strconv.FormatUint(uint64(postID), 10)
}

// Invalidate deletes keys in one round trip. Without Redis it does nothing.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

func InvalidateUser(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, UserKey(id))
	}
	Invalidate(ctx, keys...)
}

func InvalidatePost(ctx context.Context, postIDs ...uint) {
	keys := make([]string, 0, len(postIDs))
	for _, id := range postIDs {
		keys = append(keys, PostKey(id))
	}
	Invalidate(ctx, keys...)
}
