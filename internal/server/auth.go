package server

import (
	"context"
	"errors"
	"time"

	"chattym/internal/middleware"
	"chattym/internal/models"
	"chattym/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const blacklistKeyPrefix = "blacklist:"

var errTokenRevoked = errors.New("token has been revoked")

// AuthRequired rejects requests without a valid, unrevoked bearer token.
// The token may also be passed as ?token= for clients that cannot set headers.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := s.authenticate(c)
		if err != nil {
			msg := "Invalid or expired token"
			switch {
			case errors.Is(err, middleware.ErrMissingToken):
				msg = "Authorization required"
			case errors.Is(err, errTokenRevoked):
				msg = "Token has been revoked"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}
		s.setIdentity(c, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and lets anonymous requests through.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := s.authenticate(c); err == nil {
			s.setIdentity(c, claims)
		}
		return c.Next()
	}
}

// StaffRequired rejects non-staff users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) StaffRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		staff, err := s.userService.IsStaff(c.UserContext(), currentUserID(c))
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if !staff {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError(models.PermissionDeniedText))
		}
		return c.Next()
	}
}

func (s *Server) authenticate(c *fiber.Ctx) (*middleware.Claims, error) {
	token, ok := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		token = c.Query("token")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if s.isRevoked(c.UserContext(), claims.ID) {
		return nil, errTokenRevoked
	}
	return claims, nil
}

// isRevoked fails open when Redis is unavailable.
func (s *Server) isRevoked(ctx context.Context, jti string) bool {
	if s.redis == nil || jti == "" {
		return false
	}
	n, err := s.redis.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("blacklist").Inc()
		middleware.Logger.WarnContext(ctx, "token blacklist lookup failed", "error", err)
		return false
	}
	return n > 0
}

func (s *Server) revoke(ctx context.Context, claims *middleware.Claims) error {
	if s.redis == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, blacklistKeyPrefix+claims.ID, "1", ttl).Err()
}

func (s *Server) setIdentity(c *fiber.Ctx, claims *middleware.Claims) {
	uid, _ := claims.UserID()
	c.Locals("userID", uid)
	c.Locals("claims", claims)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), uid))
}
