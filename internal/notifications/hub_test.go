package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub(nil)
	defer func() { _ = hub.Shutdown(context.Background()) }()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(1, nil)
	require.NoError(t, err)
	other, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, `{"type":"notification"}`)

	assert.Equal(t, `{"type":"notification"}`, string(<-a.Send))
	assert.Equal(t, `{"type":"notification"}`, string(<-b.Send))
	assert.Empty(t, other.Send)
	assert.Equal(t, 2, hub.ConnectionCount(1))
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub(nil)
	defer func() { _ = hub.Shutdown(context.Background()) }()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(3, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(3, nil)
	assert.ErrorIs(t, err, ErrUserLimit)
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	defer func() { _ = hub.Shutdown(context.Background()) }()

	c, err := hub.Register(4, nil)
	require.NoError(t, err)

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)

	assert.Equal(t, 0, hub.ConnectionCount(4))
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_TrySendDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	defer func() { _ = hub.Shutdown(context.Background()) }()

	c, err := hub.Register(5, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		c.TrySend([]byte("x"))
	}
	assert.Len(t, c.Send, sendBuffer)
}

func TestHub_GracePeriodSuppressesOfflineOnRapidReconnect(t *testing.T) {
	hub := NewHub(nil)
	hub.presence.setGrace(40 * time.Millisecond)

	var offline int32
	hub.SetPresenceCallbacks(nil, func(uint) { atomic.AddInt32(&offline, 1) })

	clientA, err := hub.Register(10, nil)
	assert.NoError(t, err)

	hub.UnregisterClient(clientA)
	_, err = hub.Register(10, nil)
	assert.NoError(t, err)

	assert.Never(t, func() bool {
		return atomic.LoadInt32(&offline) > 0
	}, 20*testPollInterval, testPollInterval)
	assert.True(t, hub.IsOnline(context.Background(), 10))
	assert.True(t, hub.presence.tracked(10))

	_ = hub.Shutdown(context.Background())
}

func TestHub_MultiConnectionLastDisconnectTriggersOfflineOnce(t *testing.T) {
	hub := NewHub(nil)
	hub.presence.setGrace(30 * time.Millisecond)

	var offline int32
	hub.SetPresenceCallbacks(nil, func(uint) { atomic.AddInt32(&offline, 1) })

	clientA, err := hub.Register(15, nil)
	assert.NoError(t, err)
	clientB, err := hub.Register(15, nil)
	assert.NoError(t, err)

	hub.UnregisterClient(clientA)
	assert.Never(t, func() bool {
		return atomic.LoadInt32(&offline) > 0
	}, 30*testPollInterval, testPollInterval)

	hub.UnregisterClient(clientB)
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&offline) == 1
	}, testEventuallyTimeout, testPollInterval)
	assert.False(t, hub.IsOnline(context.Background(), 15))
	assert.False(t, hub.presence.tracked(15), "offline users are forgotten")

	// A second expiry for the same user finds nothing to do.
	hub.presence.expire(context.Background(), 15)
	assert.Equal(t, int32(1), atomic.LoadInt32(&offline))

	_ = hub.Shutdown(context.Background())
}

func TestHub_PresenceMirroredInRedis(t *testing.T) {
	_, rdb := newTestRedis(t)
	hub := NewHub(rdb)
	defer func() { _ = hub.Shutdown(context.Background()) }()

	ctx := context.Background()
	_, err := hub.Register(21, nil)
	require.NoError(t, err)

	isMember, err := rdb.SIsMember(ctx, onlineUsersKey, "21").Result()
	require.NoError(t, err)
	assert.True(t, isMember)

	// A second instance sharing Redis sees the user as online.
	peer := NewHub(rdb)
	defer func() { _ = peer.Shutdown(context.Background()) }()
	assert.True(t, peer.IsOnline(ctx, 21))
	assert.False(t, peer.IsOnline(ctx, 22))
}

func TestHub_ExpiredEntryDroppedWhileRedisStillSeesUser(t *testing.T) {
	_, rdb := newTestRedis(t)
	hub := NewHub(rdb)
	defer func() { _ = hub.Shutdown(context.Background()) }()
	hub.presence.setGrace(20 * time.Millisecond)

	var offline int32
	hub.SetPresenceCallbacks(nil, func(uint) { atomic.AddInt32(&offline, 1) })

	c, err := hub.Register(30, nil)
	require.NoError(t, err)
	hub.UnregisterClient(c)

	assert.Eventually(t, func() bool {
		return !hub.presence.tracked(30)
	}, testEventuallyTimeout, testPollInterval)
	// last-seen is still fresh, so the sweep owns the offline transition.
	assert.Zero(t, atomic.LoadInt32(&offline))
	assert.True(t, hub.IsOnline(context.Background(), 30))
}

func TestHub_ReaperRemovesStalePresence(t *testing.T) {
	_, rdb := newTestRedis(t)
	hub := NewHub(rdb)

	var offlineCount int32
	hub.SetPresenceCallbacks(nil, func(_ uint) {
		atomic.AddInt32(&offlineCount, 1)
	})

	ctx := context.Background()
	assert.NoError(t, rdb.SAdd(ctx, onlineUsersKey, "44").Err())

	hub.presence.sweep(ctx)

	isMember, err := rdb.SIsMember(ctx, onlineUsersKey, "44").Result()
	assert.NoError(t, err)
	assert.False(t, isMember)
	assert.Equal(t, int32(1), atomic.LoadInt32(&offlineCount))

	_ = hub.Shutdown(context.Background())
}

func TestHub_StartWiringDeliversPublishedPayload(t *testing.T) {
	_, rdb := newTestRedis(t)
	hub := NewHub(nil)
	defer func() { _ = hub.Shutdown(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))

	c, err := hub.Register(7, nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishUser(context.Background(), 7, `{"type":"notification","payload":{"id":1}}`))

	select {
	case msg := <-c.Send:
		assert.JSONEq(t, `{"type":"notification","payload":{"id":1}}`, string(msg))
	case <-time.After(testEventuallyTimeout):
		t.Fatal("payload was not delivered")
	}
}

func TestParseUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		channel string
		want    uint
		ok      bool
	}{
		{"notifications:user:12", 12, true},
		{"notifications:user:0", 0, false},
		{"notifications:user:abc", 0, false},
		{"notifications:broadcast", 0, false},
		{"chat:conv:3", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseUserChannel(tt.channel)
		assert.Equal(t, tt.ok, ok, tt.channel)
		assert.Equal(t, tt.want, got, tt.channel)
	}
}
