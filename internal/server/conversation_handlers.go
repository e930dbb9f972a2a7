package server

import (
	"chattym/internal/models"
	"chattym/internal/service"

	"github.com/gofiber/fiber/v2"
)

type conversationCreatedResponse struct {
	Status         string `json:"status"`
	ConversationID uint   `json:"conversation_id"`
}

type messageSentResponse struct {
	Status  string          `json:"status"`
	Message *models.Message `json:"message"`
}

type readResponse struct {
	Status      string `json:"status"`
	UnreadCount int64  `json:"unread_count"`
}

// GetInbox handles GET /api/conversations
// @Summary Inbox
// @Description Conversations the user participates in, most recent activity first
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Success 200 {object} service.PageResult[service.ConversationSummary]
// @Router /conversations [get]
func (s *Server) GetInbox(c *fiber.Ctx) error {
	page, err := s.messagingService.Inbox(c.UserContext(), currentUserID(c), pageParam(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(page)
}

// CreateGroupConversation handles POST /api/conversations
// @Summary Create a group conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateGroupInput true "Title and members"
// @Success 201 {object} conversationCreatedResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /conversations [post]
func (s *Server) CreateGroupConversation(c *fiber.Ctx) error {
	var in service.CreateGroupInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.CreatorID = currentUserID(c)

	conv, err := s.messagingService.CreateGroup(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conversationCreatedResponse{Status: "ok", ConversationID: conv.ID})
}

// GetMessagingNav handles GET /api/conversations/nav
// @Summary Messaging badge
// @Description Total unread messages and the most recent conversations
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.NavSummary
// @Router /conversations/nav [get]
func (s *Server) GetMessagingNav(c *fiber.Ctx) error {
	nav, err := s.messagingService.NavSummary(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(nav)
}

// GetConversation handles GET /api/conversations/:id
// @Summary Conversation detail
// @Description Messages in order; opening the conversation marks it read
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Success 200 {object} service.ConversationDetail
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /conversations/{id} [get]
func (s *Server) GetConversation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	detail, err := s.messagingService.Detail(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(detail)
}

// SendMessage handles POST /api/conversations/:id/messages
// @Summary Send a message
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Param request body service.SendMessageInput true "Message"
// @Success 201 {object} messageSentResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /conversations/{id}/messages [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.SendMessageInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = currentUserID(c)
	in.ConversationID = id

	msg, err := s.messagingService.Send(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(messageSentResponse{Status: "ok", Message: msg})
}

// MarkConversationRead handles POST /api/conversations/:id/read
// @Summary Mark a conversation read
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Success 200 {object} readResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /conversations/{id}/read [post]
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()
	uid := currentUserID(c)

	if err := s.messagingService.MarkRead(ctx, id, uid); err != nil {
		return models.RespondWithAppError(c, err)
	}
	unread, err := s.messagingService.UnreadCountFor(ctx, id, uid)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(readResponse{Status: "ok", UnreadCount: unread})
}

// LeaveConversation handles POST /api/conversations/:id/leave
// @Summary Leave a conversation
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Success 200 {object} statusResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /conversations/{id}/leave [post]
func (s *Server) LeaveConversation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.messagingService.Leave(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(okResponse)
}

// DeleteMessage handles DELETE /api/conversations/:id/messages/:messageId
// @Summary Delete own message
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Param messageId path int true "Message ID"
// @Success 200 {object} statusResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /conversations/{id}/messages/{messageId} [delete]
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	convID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	msgID, err := parseID(c, "messageId")
	if err != nil {
		return nil
	}
	if err := s.messagingService.DeleteMessage(c.UserContext(), convID, msgID, currentUserID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(okResponse)
}
