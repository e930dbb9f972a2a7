// Package notifications delivers realtime notification pushes over websockets.
// Payloads travel through Redis pub/sub so every API instance can reach every
// connected user.
package notifications

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"chattym/internal/middleware"
	"chattym/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
)

const (
	hubName = "notifications"

	maxConnsPerUser = 12
	maxTotalConns   = 10000
)

var (
	// ErrServerFull is returned when the hub is at its total connection limit.
	ErrServerFull = errors.New("server connection limit reached")
	// ErrUserLimit is returned when a user already has too many open streams.
	ErrUserLimit = errors.New("user connection limit reached")
)

// Hub maps user IDs to their live websocket clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
	presence   *presenceTracker
}

// NewHub creates a Hub. Presence is mirrored into Redis when a client is given.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		conns:    make(map[uint]map[*Client]struct{}),
		presence: newPresenceTracker(rdb),
	}
}

// Register adds a connection for userID, enforcing per-user and global limits.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, ErrServerFull
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, ErrUserLimit
	}

	client := &Client{hub: h, conn: conn, UserID: userID, Send: make(chan []byte, sendBuffer)}
	m[client] = struct{}{}
	h.totalConns++
	h.mu.Unlock()

	observability.WebSocketConnectionsTotal.Inc()
	h.presence.connect(context.Background(), userID)
	return client, nil
}

// UnregisterClient removes the client. It is safe to call more than once.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	removed := false
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			close(client.Send)
			h.totalConns--
			removed = true
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
	h.mu.Unlock()

	if removed {
		observability.WebSocketConnectionsTotal.Dec()
		h.presence.disconnect(client.UserID)
	}
}

// Broadcast sends message to every connection userID has open on this instance.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.conns[userID] {
		c.TrySend(data)
	}
}

// ConnectionCount returns the number of open connections for userID.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// IsOnline reports whether the user has a live stream on any instance.
func (h *Hub) IsOnline(ctx context.Context, userID uint) bool {
	return h.presence.online(ctx, userID)
}

// SetPresenceCallbacks installs hooks for online and offline transitions.
func (h *Hub) SetPresenceCallbacks(onOnline, onOffline func(userID uint)) {
	h.presence.setHooks(onOnline, onOffline)
}

// StartWiring subscribes to the per-user Redis channels and fans each payload
// out to that user's local connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		userID, ok := parseUserChannel(channel)
		if !ok {
			middleware.Logger.Warn("invalid notification channel", "channel", channel)
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown sends a going-away close frame to every client and forgets them.
func (h *Hub) Shutdown(_ context.Context) error {
	h.presence.close()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	for userID, userConns := range h.conns {
		for client := range userConns {
			observability.WebSocketConnectionsTotal.Dec()
			if client.conn == nil {
				continue
			}
			if err := client.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				middleware.Logger.Debug("websocket close frame failed", "user_id", userID, "error", err)
			}
			_ = client.conn.Close()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}

func parseUserChannel(channel string) (uint, bool) {
	raw, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
