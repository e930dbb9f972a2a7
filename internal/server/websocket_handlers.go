package server

import (
	"context"
	"log/slog"

	"chattym/internal/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler streams the caller's notifications. The connection opens
// with a snapshot of the dropdown, then receives every new notification.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || uid == 0 || s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register rejected",
				slog.Uint64("user_id", uint64(uid)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		if snapshot := s.notificationSnapshot(uid); snapshot != nil {
			client.TrySend(snapshot)
		}

		client.Serve()
	})
}

// websocketUpgrade rejects plain HTTP requests on the websocket route.
func websocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (s *Server) notificationSnapshot(userID uint) []byte {
	recent, err := s.notificationService.Recent(context.Background(), userID)
	if err != nil {
		middleware.Logger.Warn("websocket snapshot failed",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type":    "snapshot",
		"payload": recent,
	})
	if err != nil {
		return nil
	}
	return payload
}
