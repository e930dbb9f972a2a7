package models

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{"forbidden", NewForbiddenError("no"), fiber.StatusForbidden},
		{"not found", NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{"conflict", NewConflictError("dup"), fiber.StatusConflict},
		{"wrapped", fmt.Errorf("outer: %w", NewNotFoundError("Post", 2)), fiber.StatusNotFound},
		{"plain", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestRespondWithError_JSONAndPageViews(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithAppError(c, NewForbiddenError("not yours"))
	})

	t.Run("programmatic caller gets JSON", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Accept", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "error", body.Status)
		assert.Equal(t, CodeForbidden, body.Code)
		assert.Equal(t, "not yours", body.Error)
	})

	t.Run("page view gets text", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, PermissionDeniedText, string(b))
	})

	t.Run("xhr with html accept still gets JSON", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Accept", "text/html")
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	})
}

func TestInternalErrorHidesDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithAppError(c, NewInternalError(errors.New("pq: secret table")))
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Details)
}

func TestNotificationTargetRoundTrip(t *testing.T) {
	n := &Notification{}
	assert.Nil(t, n.Target())

	n.SetTarget(CommentTarget(7))
	require.NotNil(t, n.Target())
	assert.Equal(t, TargetComment, n.Target().Kind)
	assert.Equal(t, uint(7), n.Target().ID)

	n.SetTarget(nil)
	assert.Nil(t, n.Target())
	assert.False(t, TargetKind("group").Valid())
	assert.True(t, TargetMessage.Valid())
}

func TestNotificationDataScan(t *testing.T) {
	var d NotificationData
	require.NoError(t, d.Scan([]byte(`{"post_id":3}`)))
	assert.EqualValues(t, 3, d["post_id"])

	require.NoError(t, d.Scan(nil))
	assert.Empty(t, d)

	v, err := NotificationData{"a": "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"a":"b"}`, v)

	assert.Error(t, d.Scan(42))
}
