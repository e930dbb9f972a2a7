package server

import (
	"strings"
	"time"

	"chattym/internal/models"
	"chattym/internal/service"
	"chattym/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const birthdayLayout = "2006-01-02"

type updateProfileRequest struct {
	Username *string `json:"username" form:"username"`
	Bio      *string `json:"bio" form:"bio"`
	Avatar   *string `json:"avatar" form:"avatar"`
	Birthday *string `json:"birthday" form:"birthday"`
}

type profileResponse struct {
	*service.Profile
	IsOnline bool `json:"is_online"`
}

type subscriptionResponse struct {
	Status string `json:"status"`
	*service.ToggleResult
}

type directMessageResponse struct {
	Status         string `json:"status"`
	ConversationID uint   `json:"conversation_id"`
	Created        bool   `json:"created"`
}

// GetMyProfile handles GET /api/users/me
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update current user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateProfileRequest true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	in := service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	}
	if req.Birthday != nil {
		raw := strings.TrimSpace(*req.Birthday)
		if raw != "" {
			bday, err := time.Parse(birthdayLayout, raw)
			if err != nil {
				return models.RespondWithAppError(c,
					validation.FieldError("birthday", "Date has wrong format. Use YYYY-MM-DD."))
			}
			in.Birthday = &bday
		}
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
// @Summary User profile
// @Description Profile with post stats, follower counts and recent posts
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} profileResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()

	profile, err := s.userService.GetProfile(ctx, id, currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profileResponse{Profile: profile, IsOnline: s.hub.IsOnline(ctx, id)})
}

// GetUserPosts handles GET /api/users/:id/posts
// @Summary Posts by user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page number"
// @Success 200 {object} service.PageResult[service.PostView]
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := s.postService.UserPosts(c.UserContext(), id, currentUserID(c), pageParam(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(page)
}

// GetFollowers handles GET /api/users/:id/followers
// @Summary Followers of a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page number"
// @Success 200 {object} service.PageResult[service.Connection]
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := s.subscriptionService.Followers(c.UserContext(), id, pageParam(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(page)
}

// GetFollowing handles GET /api/users/:id/following
// @Summary Users a user follows
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page number"
// @Success 200 {object} service.PageResult[service.Connection]
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := s.subscriptionService.Following(c.UserContext(), id, pageParam(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(page)
}

// ToggleSubscription handles POST /api/users/:id/subscribe
// @Summary Follow or unfollow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} subscriptionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/subscribe [post]
func (s *Server) ToggleSubscription(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	ctx := c.UserContext()

	follower, err := s.userService.GetActiveUser(ctx, currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	result, err := s.subscriptionService.Toggle(ctx, follower, targetID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(subscriptionResponse{Status: "ok", ToggleResult: result})
}

// StartDirectMessage handles POST /api/users/:id/dm
// @Summary Open a direct conversation
// @Description Returns the existing direct conversation with the user or creates one
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} directMessageResponse
// @Success 201 {object} directMessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/dm [post]
func (s *Server) StartDirectMessage(c *fiber.Ctx) error {
	otherID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	conv, created, err := s.messagingService.StartDM(c.UserContext(), currentUserID(c), otherID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(directMessageResponse{Status: "ok", ConversationID: conv.ID, Created: created})
}
