package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {
		t.Fatal("no messages expected")
	}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
	}
}

func TestNotifier_PatternSubscriberStopsOnCancel(t *testing.T) {
	_, rdb := newTestRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		assert.Equal(t, "notifications:user:9", channel)
		payloads <- payload
	}))

	require.NoError(t, n.PublishUser(context.Background(), 9, "before-cancel"))
	select {
	case p := <-payloads:
		assert.Equal(t, "before-cancel", p)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive payload")
	}

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishUser(context.Background(), 9, "after-cancel"))
	assert.Never(t, func() bool {
		select {
		case p := <-payloads:
			return p == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestNotifier_SubscriberRecoversFromPanic(t *testing.T) {
	_, rdb := newTestRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 2)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_, payload string) {
		if payload == "boom" {
			panic("handler failure")
		}
		got <- payload
	}))

	require.NoError(t, n.PublishUser(context.Background(), 3, "boom"))
	require.NoError(t, n.PublishUser(context.Background(), 3, "ok"))

	select {
	case p := <-got:
		assert.Equal(t, "ok", p)
	case <-time.After(time.Second):
		t.Fatal("subscriber stopped after panic")
	}
}
