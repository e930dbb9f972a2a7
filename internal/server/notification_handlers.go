package server

import (
	"chattym/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetRecentNotifications handles GET /api/notifications/recent
// @Summary Notification dropdown
// @Description The latest notifications and the unread count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.RecentNotifications
// @Router /notifications/recent [get]
func (s *Server) GetRecentNotifications(c *fiber.Ctx) error {
	recent, err := s.notificationService.Recent(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(recent)
}

// ListNotifications handles GET /api/notifications
// @Summary Notification feed
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Success 200 {object} service.PageResult[service.NotificationView]
// @Router /notifications [get]
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	page, err := s.notificationService.List(c.UserContext(), currentUserID(c), pageParam(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(page)
}

// MarkNotificationRead handles POST /api/notifications/:id/read
// @Summary Mark one notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} readResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id}/read [post]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	unread, err := s.notificationService.MarkRead(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(readResponse{Status: "ok", UnreadCount: unread})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
// @Summary Mark every notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} readResponse
// @Router /notifications/read-all [post]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	if err := s.notificationService.MarkAllRead(c.UserContext(), currentUserID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(readResponse{Status: "ok", UnreadCount: 0})
}
