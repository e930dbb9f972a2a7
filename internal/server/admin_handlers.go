package server

import (
	"chattym/internal/models"

	"github.com/gofiber/fiber/v2"
)

type recountResponse struct {
	Status  string `json:"status"`
	Changed int    `json:"changed"`
	DryRun  bool   `json:"dry_run"`
}

// RecountLikes handles POST /api/admin/recount-likes
// @Summary Recompute like counters
// @Description Rewrites every post's likes_count from the likes table
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param dry_run query bool false "Report without writing"
// @Success 200 {object} recountResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/recount-likes [post]
func (s *Server) RecountLikes(c *fiber.Ctx) error {
	dryRun, err := parseBoolParam(c, "dry_run")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	dry := dryRun != nil && *dryRun

	changed, err := s.likeService.RecountLikes(c.UserContext(), dry, nil)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(recountResponse{Status: "ok", Changed: changed, DryRun: dry})
}

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(currentUserID(c)),
	})
}
