package server

import (
	"fmt"
	"net/http"
	"testing"

	"chattym/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications_ReadLifecycle(t *testing.T) {
	ts := newTestServer(t)
	_, aliceToken := ts.createUser(t, "alice", false)
	_, bobToken := ts.createUser(t, "bob", false)
	_, carolToken := ts.createUser(t, "carol", false)

	postID := ts.createPost(t, aliceToken, "Popular")
	likePath := fmt.Sprintf("/api/posts/%d/like", postID)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, likePath, bobToken, nil).StatusCode)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, likePath, carolToken, nil).StatusCode)

	resp := ts.do(t, http.MethodGet, "/api/notifications", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page service.PageResult[service.NotificationView]
	decode(t, resp, &page)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "carol", page.Results[0].Actor)
	assert.True(t, page.Results[0].Unread)

	first := page.Results[0].ID

	t.Run("other users cannot mark it", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", first), bobToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("mark one read", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", first), aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body readResponse
		decode(t, resp, &body)
		assert.Equal(t, int64(1), body.UnreadCount)
	})

	t.Run("mark all read", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/notifications/read-all", aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = ts.do(t, http.MethodGet, "/api/notifications/recent", aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var recent service.RecentNotifications
		decode(t, resp, &recent)
		assert.Equal(t, int64(0), recent.UnreadCount)
		assert.Len(t, recent.Items, 2)
	})

	t.Run("requires auth", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/api/notifications/recent", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestNotifications_PublishedToUserChannel(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.createUser(t, "alice", false)
	_, bobToken := ts.createUser(t, "bob", false)

	postID := ts.createPost(t, aliceToken, "Watched")

	sub := ts.redis.Subscribe(t.Context(), fmt.Sprintf("notifications:user:%d", alice.ID))
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(t.Context())
	require.NoError(t, err)

	resp := ts.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", postID), bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg, err := sub.ReceiveMessage(t.Context())
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, `"type":"notification"`)
	assert.Contains(t, msg.Payload, `"liked your post"`)
}
