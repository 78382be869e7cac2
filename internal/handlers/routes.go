package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/middleware"
)

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Users         *UserHandler
	Videos        *VideoHandler
	Comments      *CommentHandler
	Likes         *LikeHandler
	Subscriptions *SubscriptionHandler
	Playlists     *PlaylistHandler
	Health        *HealthHandler
	Tokens        middleware.TokenParser
	AuthLimiter   RateLimiter
}

// RegisterRoutes mounts the full API surface on mux. Mutating endpoints
// require authentication; read models that carry per-viewer flags accept
// but do not require it.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	requireAuth := middleware.Authenticate(deps.Tokens)
	maybeAuth := middleware.MaybeAuthenticate(deps.Tokens)

	authed := func(h http.HandlerFunc) http.Handler { return requireAuth(h) }
	open := func(h http.HandlerFunc) http.Handler { return maybeAuth(h) }
	limited := func(h http.HandlerFunc) http.Handler {
		return rateLimited(deps.AuthLimiter, "auth", h)
	}

	mux.HandleFunc("GET /healthz", deps.Health.Handle)

	// Accounts and sessions.
	mux.Handle("POST /api/v1/users/register", limited(deps.Users.Register))
	mux.Handle("POST /api/v1/users/login", limited(deps.Users.Login))
	mux.Handle("POST /api/v1/users/logout", authed(deps.Users.Logout))
	mux.Handle("POST /api/v1/users/refresh", http.HandlerFunc(deps.Users.Refresh))
	mux.Handle("GET /api/v1/users/me", authed(deps.Users.Me))
	mux.Handle("POST /api/v1/users/change-password", authed(deps.Users.ChangePassword))
	mux.Handle("PATCH /api/v1/users/me", authed(deps.Users.UpdateAccount))
	mux.Handle("PATCH /api/v1/users/avatar", authed(deps.Users.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/cover", authed(deps.Users.UpdateCover))
	mux.Handle("GET /api/v1/users/channel/{username}", open(deps.Users.Channel))
	mux.Handle("GET /api/v1/users/history", authed(deps.Users.History))

	// Videos.
	mux.Handle("GET /api/v1/videos", open(deps.Videos.List))
	mux.Handle("POST /api/v1/videos", authed(deps.Videos.Publish))
	mux.Handle("GET /api/v1/videos/video/{videoId}", open(deps.Videos.Detail))
	mux.Handle("PATCH /api/v1/videos/video/{videoId}", authed(deps.Videos.Update))
	mux.Handle("DELETE /api/v1/videos/video/{videoId}", authed(deps.Videos.Delete))
	mux.Handle("PATCH /api/v1/videos/toggle-public-status/{videoId}", authed(deps.Videos.TogglePublishStatus))

	// Comments.
	mux.Handle("GET /api/v1/comments/video/{videoId}", open(deps.Comments.ListForVideo))
	mux.Handle("POST /api/v1/comments/video/{videoId}", authed(deps.Comments.Create))
	mux.Handle("PATCH /api/v1/comments/comment/{commentId}", authed(deps.Comments.Update))
	mux.Handle("DELETE /api/v1/comments/comment/{commentId}", authed(deps.Comments.Delete))

	// Likes.
	mux.Handle("PATCH /api/v1/likes/video/{videoId}", authed(deps.Likes.ToggleVideo))
	mux.Handle("PATCH /api/v1/likes/comment/{commentId}", authed(deps.Likes.ToggleComment))
	mux.Handle("GET /api/v1/likes/user/liked-videos", authed(deps.Likes.LikedVideos))

	// Subscriptions.
	mux.Handle("PATCH /api/v1/subscriptions/channel/{channelId}", authed(deps.Subscriptions.Toggle))
	mux.Handle("GET /api/v1/subscriptions/channel/{channelId}", open(deps.Subscriptions.Subscribers))
	mux.Handle("GET /api/v1/subscriptions/user/{subscriberId}", open(deps.Subscriptions.SubscribedChannels))

	// Playlists.
	mux.Handle("POST /api/v1/playlists", authed(deps.Playlists.Create))
	mux.Handle("GET /api/v1/playlists/user/playlists", authed(deps.Playlists.ListMine))
	mux.Handle("GET /api/v1/playlists/{playlistId}", open(deps.Playlists.Get))
	mux.Handle("DELETE /api/v1/playlists/{playlistId}", authed(deps.Playlists.Delete))
	mux.Handle("PATCH /api/v1/playlists/add-video/{playlistId}/{videoId}", authed(deps.Playlists.AddVideo))
	mux.Handle("PATCH /api/v1/playlists/remove-video/{playlistId}/{videoId}", authed(deps.Playlists.RemoveVideo))
}

// rateLimited guards an endpoint with the per-IP limiter, answering 429
// when the caller's budget is spent.
func rateLimited(limiter RateLimiter, scope string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !allowRequest(limiter, r, scope) {
			respondError(r.Context(), w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		next(w, r)
	})
}
