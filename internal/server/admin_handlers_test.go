package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutes_StaffOnly(t *testing.T) {
	ts := newTestServer(t)
	_, userToken := ts.createUser(t, "regular", false)
	_, staffToken := ts.createUser(t, "admin", true)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"anonymous recount", http.MethodPost, "/api/admin/recount-likes", "", http.StatusUnauthorized},
		{"user recount", http.MethodPost, "/api/admin/recount-likes", userToken, http.StatusForbidden},
		{"staff recount", http.MethodPost, "/api/admin/recount-likes", staffToken, http.StatusOK},
		{"user flags", http.MethodGet, "/api/admin/feature-flags", userToken, http.StatusForbidden},
		{"staff flags", http.MethodGet, "/api/admin/feature-flags", staffToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRecountLikes_RepairsDrift(t *testing.T) {
	ts := newTestServer(t)
	_, aliceToken := ts.createUser(t, "alice", false)
	_, staffToken := ts.createUser(t, "admin", true)

	postID := ts.createPost(t, aliceToken, "Drifted")
	require.NoError(t, ts.sqlDB.Exec("UPDATE posts SET likes_count = 5 WHERE id = ?", postID).Error)

	resp := ts.do(t, http.MethodPost, "/api/admin/recount-likes?dry_run=1", staffToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dry recountResponse
	decode(t, resp, &dry)
	assert.True(t, dry.DryRun)
	assert.Equal(t, 1, dry.Changed)

	var count int
	require.NoError(t, ts.sqlDB.Raw("SELECT likes_count FROM posts WHERE id = ?", postID).Row().Scan(&count))
	assert.Equal(t, 5, count)

	resp = ts.do(t, http.MethodPost, "/api/admin/recount-likes", staffToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var applied recountResponse
	decode(t, resp, &applied)
	assert.False(t, applied.DryRun)
	assert.Equal(t, 1, applied.Changed)

	require.NoError(t, ts.sqlDB.Raw("SELECT likes_count FROM posts WHERE id = ?", postID).Row().Scan(&count))
	assert.Equal(t, 0, count)

	resp = ts.do(t, http.MethodPost, "/api/admin/recount-likes?dry_run=perhaps", staffToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetFeatureFlags(t *testing.T) {
	ts := newTestServer(t)
	_, staffToken := ts.createUser(t, "admin", true)

	resp := ts.do(t, http.MethodGet, "/api/admin/feature-flags", staffToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "on", body.Raw["realtime_push"])
	assert.True(t, body.Evaluated["realtime_push"])
	assert.False(t, body.Evaluated["beta_inbox"])
}
