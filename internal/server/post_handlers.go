package server

import (
	"strconv"
	"strings"

	"chattym/internal/models"
	"chattym/internal/service"
	"chattym/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type likeResponse struct {
	Status string `json:"status"`
	*service.LikeResult
}

// ListPosts handles GET /api/posts
// @Summary Query posts
// @Description Paginated post listing with search, author, activity and ordering filters
// @Tags posts
// @Produce json
// @Param search query string false "Matches title, text, author email or username"
// @Param q query string false "Matches title or text"
// @Param user query int false "Author ID"
// @Param active query string false "1, 0, true or false"
// @Param ordering query string false "created_at, -created_at, likes_count, -likes_count (comma separated)"
// @Param page query int false "Page number"
// @Success 200 {object} service.PageResult[service.PostView]
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	active, err := parseBoolParam(c, "active")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	in := service.ListPostsInput{
		ViewerID: currentUserID(c),
		Search:   strings.TrimSpace(c.Query("search")),
		Q:        strings.TrimSpace(c.Query("q")),
		Active:   active,
		Ordering: c.Query("ordering"),
		Page:     pageParam(c),
	}
	if raw := c.Query("user"); raw != "" {
		uid, perr := strconv.ParseUint(raw, 10, 32)
		if perr != nil || uid == 0 {
			return models.RespondWithAppError(c, validation.FieldError("user", "Select a valid user."))
		}
		in.UserID = uint(uid)
	}

	page, err := s.postService.ListPosts(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(page)
}

// GetFeed handles GET /api/posts/feed
// @Summary Home feed
// @Description Active posts, newest first, with the ids the viewer liked
// @Tags posts
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} service.FeedPage
// @Router /posts/feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	feed, err := s.postService.Feed(c.UserContext(), currentUserID(c), pageParam(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(feed)
}

// GetMyPosts handles GET /api/posts/mine
// @Summary Own posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Success 200 {object} service.PageResult[service.PostView]
// @Router /posts/mine [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	page, err := s.postService.MyPosts(c.UserContext(), currentUserID(c), pageParam(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
// @Summary Post detail
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} service.PostDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	detail, err := s.postService.GetPost(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(detail)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 201 {object} service.PostView
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.CreatePostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = currentUserID(c)

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT and PATCH /api/posts/:id
// @Summary Update a post
// @Description Owner or staff only. Omitted fields are left unchanged.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.UpdatePostInput true "Fields to change"
// @Success 200 {object} service.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.UpdatePostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.UserID = currentUserID(c)
	in.PostID = id

	post, err := s.postService.UpdatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Deactivate a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} statusResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(okResponse)
}

// ToggleLike handles POST /api/posts/:id/like
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} likeResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.likeService.ToggleLike(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(likeResponse{Status: "ok", LikeResult: result})
}
