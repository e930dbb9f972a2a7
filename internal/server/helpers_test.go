package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"chattym/internal/models"
	"chattym/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"messageId", "message ID"},
		{"conversationId", "conversation ID"},
		{"parentCommentId", "parent comment ID"},
		{"page", "page"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestPageParam(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"page": pageParam(c)})
	})

	tests := map[string]float64{
		"/items":          1,
		"/items?page=3":   3,
		"/items?page=0":   1,
		"/items?page=-2":  1,
		"/items?page=abc": 1,

		"/items?page=99999999999":         repository.MaxPage,
		"/items?page=9223372036854775807": repository.MaxPage,
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var body map[string]float64
			decode(t, resp, &body)
			assert.Equal(t, want, body["page"])
		})
	}
}

func TestParseBoolParam(t *testing.T) {
	app := fiber.New()
	app.Get("/flag", func(c *fiber.Ctx) error {
		v, err := parseBoolParam(c, "active")
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if v == nil {
			return c.SendString("unset")
		}
		if *v {
			return c.SendString("true")
		}
		return c.SendString("false")
	})

	tests := []struct {
		query  string
		status int
		body   string
	}{
		{"", http.StatusOK, "unset"},
		{"?active=1", http.StatusOK, "true"},
		{"?active=TRUE", http.StatusOK, "true"},
		{"?active=0", http.StatusOK, "false"},
		{"?active=false", http.StatusOK, "false"},
		{"?active=yes", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/flag"+tt.query, nil), -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				raw, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.body, string(raw))
			}
		})
	}
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	app.Get("/things/:messageId", func(c *fiber.Ctx) error {
		id, err := parseID(c, "messageId")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/things/0", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "Invalid message ID", body.Error)
}
