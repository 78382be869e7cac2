package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegisterRoutesPatterns(t *testing.T) {
	mux := http.NewServeMux()
	RegisterRoutes(mux, Dependencies{
		Users:         &UserHandler{},
		Videos:        &VideoHandler{},
		Comments:      &CommentHandler{},
		Likes:         &LikeHandler{},
		Subscriptions: &SubscriptionHandler{},
		Playlists:     &PlaylistHandler{},
		Health:        &HealthHandler{},
	})

	cases := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodPatch, "/api/v1/subscriptions/channel/" + otherID, "PATCH /api/v1/subscriptions/channel/{channelId}"},
		{http.MethodGet, "/api/v1/likes/user/liked-videos", "GET /api/v1/likes/user/liked-videos"},
		{http.MethodGet, "/api/v1/playlists/user/playlists", "GET /api/v1/playlists/user/playlists"},
		{http.MethodPatch, "/api/v1/likes/video/" + videoID1, "PATCH /api/v1/likes/video/{videoId}"},
		{http.MethodPatch, "/api/v1/videos/toggle-public-status/" + videoID1, "PATCH /api/v1/videos/toggle-public-status/{videoId}"},
		{http.MethodGet, "/api/v1/subscriptions/channel/" + otherID, "GET /api/v1/subscriptions/channel/{channelId}"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		_, pattern := mux.Handler(req)
		if pattern != tc.want {
			t.Errorf("%s %s resolved to pattern %q, want %q", tc.method, tc.path, pattern, tc.want)
		}
	}
}
