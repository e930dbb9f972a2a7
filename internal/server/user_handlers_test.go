package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"chattym/internal/models"
	"chattym/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleSubscription(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.createUser(t, "alice", false)
	bob, bobToken := ts.createUser(t, "bob", false)
	path := fmt.Sprintf("/api/users/%d/subscribe", alice.ID)

	resp := ts.do(t, http.MethodPost, path, bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var on subscriptionResponse
	decode(t, resp, &on)
	assert.True(t, on.IsSubscribed)
	assert.Equal(t, models.SubscriptionActionSubscribed, on.Action)
	assert.Equal(t, int64(1), on.FollowersCount)

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/followers", alice.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var followers service.PageResult[service.Connection]
	decode(t, resp, &followers)
	require.Len(t, followers.Results, 1)
	assert.Equal(t, bob.ID, followers.Results[0].User.ID)

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", alice.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile profileResponse
	decode(t, resp, &profile)
	require.NotNil(t, profile.Profile)
	assert.True(t, profile.IsSubscribed)
	assert.Equal(t, int64(1), profile.FollowersCount)
	assert.False(t, profile.IsOnline)

	resp = ts.do(t, http.MethodPost, path, bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var off subscriptionResponse
	decode(t, resp, &off)
	assert.False(t, off.IsSubscribed)
	assert.Equal(t, int64(0), off.FollowersCount)

	resp = ts.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", alice.ID), aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/notifications", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var notes service.PageResult[service.NotificationView]
	decode(t, resp, &notes)
	require.Len(t, notes.Results, 1)
	assert.Equal(t, models.VerbStartedFollow, notes.Results[0].Verb)
}

func TestUpdateMyProfile(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createUser(t, "alice", false)

	resp := ts.do(t, http.MethodPut, "/api/users/me", token, map[string]string{
		"bio":      "Gardener",
		"birthday": "1990-04-12",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user models.User
	decode(t, resp, &user)
	assert.Equal(t, "Gardener", user.Bio)
	require.NotNil(t, user.Birthday)
	assert.Equal(t, 1990, user.Birthday.Year())

	resp = ts.do(t, http.MethodPut, "/api/users/me", token, map[string]string{"birthday": "12/04/1990"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUserProfile_ReportsPresence(t *testing.T) {
	ts := newTestServer(t)
	alice, _ := ts.createUser(t, "alice", false)

	require.NoError(t, ts.mr.Set(fmt.Sprintf("ws:last_seen:%d", alice.ID), "1"))
	_, err := ts.mr.SAdd("ws:online_users", fmt.Sprint(alice.ID))
	require.NoError(t, err)
	require.True(t, ts.hub.IsOnline(context.Background(), alice.ID))

	resp := ts.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", alice.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile profileResponse
	decode(t, resp, &profile)
	assert.True(t, profile.IsOnline)

	resp = ts.do(t, http.MethodGet, "/api/users/999999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
