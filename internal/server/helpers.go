package server

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"chattym/internal/middleware"
	"chattym/internal/models"
	"chattym/internal/repository"
	"chattym/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers return nil when they see it so the
// ErrorHandler does not overwrite the response.
var errResponseWritten = errors.New("response already written")

type statusResponse struct {
	Status string `json:"status"`
}

var okResponse = statusResponse{Status: "ok"}

// currentUserID returns the authenticated user, or 0 for anonymous callers.
func currentUserID(c *fiber.Ctx) uint {
	uid, _ := c.Locals("userID").(uint)
	return uid
}

func currentClaims(c *fiber.Ctx) *middleware.Claims {
	claims, _ := c.Locals("claims").(*middleware.Claims)
	return claims
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "messageId" -> "Invalid message ID").
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// pageParam reads ?page=, treating missing or invalid values as the first
// page and clamping deep pages to repository.MaxPage.
func pageParam(c *fiber.Ctx) int {
	return min(max(c.QueryInt("page", 1), 1), repository.MaxPage)
}

// parseBody decodes a JSON or form body into dst, writing a 400 on failure.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// parseBoolParam accepts 1/0/true/false. An empty value yields nil.
func parseBoolParam(c *fiber.Ctx, name string) (*bool, error) {
	raw := strings.ToLower(strings.TrimSpace(c.Query(name)))
	var v bool
	switch raw {
	case "":
		return nil, nil
	case "1", "true":
		v = true
	case "0", "false":
		v = false
	default:
		return nil, validation.FieldError(name, "Must be one of: 1, 0, true, false.")
	}
	return &v, nil
}
