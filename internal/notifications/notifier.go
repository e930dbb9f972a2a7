package notifications

import (
	"context"
	"runtime/debug"
	"strconv"

	"chattym/internal/middleware"
	"chattym/internal/observability"

	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "notifications:user:"

// UserChannel is the pub/sub channel carrying pushes for one user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Notifier fans notification payloads out through Redis pub/sub. With a nil
// client publishing and subscribing are no-ops.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser publishes payload on userID's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	err := n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("publish").Inc()
	}
	return err
}

// StartPatternSubscriber listens on every user channel and hands each
// message to onMessage until ctx ends. It returns once Redis has confirmed
// the subscription, so a publish issued afterwards is never missed.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}

	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		observability.RedisErrorRate.WithLabelValues("subscribe").Inc()
		_ = sub.Close()
		return err
	}

	go func() {
		defer func() { _ = sub.Close() }()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				deliver(onMessage, msg)
			}
		}
	}()
	return nil
}

// deliver isolates a panicking handler so one bad payload cannot stop the
// subscriber.
func deliver(onMessage func(channel, payload string), msg *redis.Message) {
	defer func() {
		if r := recover(); r != nil {
			middleware.Logger.Error("notification handler panicked",
				"channel", msg.Channel, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	onMessage(msg.Channel, msg.Payload)
}
