package notifications

import (
	"context"
	"strconv"
	"sync"
	"time"

	"chattym/internal/middleware"
	"chattym/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Redis presence keys, shared by every API instance.
const (
	onlineUsersKey = "ws:online_users"
	lastSeenPrefix = "ws:last_seen:"
)

const (
	lastSeenTTL   = 90 * time.Second
	offlineGrace  = 5 * time.Second
	sweepInterval = time.Minute
)

// userPresence exists while a user has streams on this instance or an
// offline timer pending.
type userPresence struct {
	conns     int
	offlineAt *time.Timer
}

// presenceTracker counts live streams per user on this instance and
// refreshes a last-seen key in Redis for each of them. A user goes
// offline only after the grace window passes with no stream reopened.
type presenceTracker struct {
	rdb *redis.Client

	mu        sync.Mutex
	users     map[uint]*userPresence
	grace     time.Duration
	onOnline  func(userID uint)
	onOffline func(userID uint)

	stop     chan struct{}
	stopOnce sync.Once
}

func newPresenceTracker(rdb *redis.Client) *presenceTracker {
	p := &presenceTracker{
		rdb:   rdb,
		users: make(map[uint]*userPresence),
		grace: offlineGrace,
		stop:  make(chan struct{}),
	}
	if rdb != nil {
		go p.sweepLoop()
	}
	return p
}

func (p *presenceTracker) setHooks(onOnline, onOffline func(userID uint)) {
	p.mu.Lock()
	p.onOnline, p.onOffline = onOnline, onOffline
	p.mu.Unlock()
}

func (p *presenceTracker) setGrace(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.grace = d
	p.mu.Unlock()
}

func (p *presenceTracker) connect(ctx context.Context, userID uint) {
	wasOnline := p.online(ctx, userID)

	p.mu.Lock()
	u := p.entry(userID)
	if u.offlineAt != nil {
		u.offlineAt.Stop()
		u.offlineAt = nil
	}
	u.conns++
	hook := p.onOnline
	p.mu.Unlock()

	p.touch(ctx, userID)
	if !wasOnline && hook != nil {
		hook(userID)
	}
}

func (p *presenceTracker) disconnect(userID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[userID]
	if !ok {
		return
	}
	if u.conns > 0 {
		u.conns--
	}
	if u.conns > 0 {
		return
	}
	if u.offlineAt != nil {
		u.offlineAt.Stop()
	}
	u.offlineAt = time.AfterFunc(p.grace, func() { p.expire(context.Background(), userID) })
}

// touch refreshes the user's last-seen key.
func (p *presenceTracker) touch(ctx context.Context, userID uint) {
	if p.rdb == nil {
		return
	}
	pipe := p.rdb.TxPipeline()
	pipe.SAdd(ctx, onlineUsersKey, userKey(userID))
	pipe.SetEx(ctx, lastSeenKey(userID), strconv.FormatInt(time.Now().Unix(), 10), lastSeenTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		observability.RedisErrorRate.WithLabelValues("presence").Inc()
		middleware.Logger.WarnContext(ctx, "presence refresh failed", "user_id", userID, "error", err)
	}
}

func (p *presenceTracker) online(ctx context.Context, userID uint) bool {
	p.mu.Lock()
	u, ok := p.users[userID]
	local := ok && u.conns > 0
	p.mu.Unlock()
	if local {
		return true
	}
	if p.rdb == nil {
		return false
	}
	n, err := p.rdb.Exists(ctx, lastSeenKey(userID)).Result()
	return err == nil && n > 0
}

func (p *presenceTracker) expire(ctx context.Context, userID uint) {
	p.mu.Lock()
	u, ok := p.users[userID]
	if !ok || u.conns > 0 {
		p.mu.Unlock()
		return
	}
	u.offlineAt = nil
	p.mu.Unlock()

	if p.rdb != nil {
		// Another instance may still hold a stream for this user.
		if n, err := p.rdb.Exists(ctx, lastSeenKey(userID)).Result(); err == nil && n > 0 {
			p.forget(userID)
			return
		}
		_ = p.rdb.SRem(ctx, onlineUsersKey, userKey(userID)).Err()
	}
	p.markOffline(userID)
}

// sweep drops online-set members whose last-seen key has expired.
func (p *presenceTracker) sweep(ctx context.Context) {
	members, err := p.rdb.SMembers(ctx, onlineUsersKey).Result()
	if err != nil {
		return
	}
	for _, raw := range members {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			continue
		}
		userID := uint(id)
		if n, err := p.rdb.Exists(ctx, lastSeenKey(userID)).Result(); err != nil || n > 0 {
			continue
		}
		_ = p.rdb.SRem(ctx, onlineUsersKey, raw).Err()

		p.mu.Lock()
		u, ok := p.users[userID]
		local := ok && u.conns > 0
		p.mu.Unlock()
		if !local {
			p.markOffline(userID)
		}
	}
}

func (p *presenceTracker) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.sweep(context.Background())
		}
	}
}

func (p *presenceTracker) close() {
	p.stopOnce.Do(func() {
		close(p.stop)
		p.mu.Lock()
		for _, u := range p.users {
			if u.offlineAt != nil {
				u.offlineAt.Stop()
				u.offlineAt = nil
			}
		}
		p.mu.Unlock()
	})
}

// markOffline drops the user's entry and fires the offline hook, unless a
// stream reopened or a new grace timer started in the meantime.
func (p *presenceTracker) markOffline(userID uint) {
	if !p.forget(userID) {
		return
	}
	p.mu.Lock()
	hook := p.onOffline
	p.mu.Unlock()
	if hook != nil {
		hook(userID)
	}
}

// forget deletes an idle entry. It reports false when the user has a
// stream or a pending offline timer on this instance.
func (p *presenceTracker) forget(userID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[userID]
	if !ok {
		return true
	}
	if u.conns > 0 || u.offlineAt != nil {
		return false
	}
	delete(p.users, userID)
	return true
}

func (p *presenceTracker) tracked(userID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.users[userID]
	return ok
}

// entry must be called with mu held.
func (p *presenceTracker) entry(userID uint) *userPresence {
	u, ok := p.users[userID]
	if !ok {
		u = &userPresence{}
		p.users[userID] = u
	}
	return u
}

func userKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

func lastSeenKey(userID uint) string {
	return lastSeenPrefix + userKey(userID)
}
