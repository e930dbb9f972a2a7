package server

import (
	"time"

	"chattym/internal/models"
	"chattym/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentCreatedResponse struct {
	Status    string `json:"status"`
	CommentID uint   `json:"comment_id"`
	ParentID  *uint  `json:"parent_id,omitempty"`
}

type commentUpdatedResponse struct {
	Status    string     `json:"status"`
	CommentID uint       `json:"comment_id"`
	Content   string     `json:"content"`
	EditedAt  *time.Time `json:"edited_at"`
}

// GetComments handles GET /api/posts/:id/comments
// @Summary Comment tree of a post
// @Description Active root comments, oldest first, each with its active replies
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} service.CommentView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Description parent_id makes the comment a reply; replies to replies attach to the root comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.CreateCommentInput true "Comment"
// @Success 201 {object} commentCreatedResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.CreateCommentInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = currentUserID(c)
	in.PostID = postID

	comment, err := s.commentService.CreateComment(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(commentCreatedResponse{
		Status:    "ok",
		CommentID: comment.ID,
		ParentID:  comment.ParentID,
	})
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body service.UpdateCommentInput true "New content"
// @Success 200 {object} commentUpdatedResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.UpdateCommentInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = currentUserID(c)
	in.CommentID = id

	comment, err := s.commentService.UpdateComment(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(commentUpdatedResponse{
		Status:    "ok",
		CommentID: comment.ID,
		Content:   comment.Content,
		EditedAt:  comment.EditedAt,
	})
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Deactivate a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} statusResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), currentUserID(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(okResponse)
}
