package handlers

import (
	"errors"
	"net/http"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
)

// LikeHandler serves the like toggles and the liked-videos listing.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
}

// ToggleVideo flips the caller's like on a video and reports the new state.
func (h *LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch video")
		return
	}

	liked, err := h.Likes.Toggle(ctx, models.VideoTarget(videoID), principal.ID)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to toggle like")
		return
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"isLiked": liked}, "like toggled")
}

// ToggleComment flips the caller's like on a comment.
func (h *LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}

	if _, err := h.Comments.FindByID(ctx, commentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "comment not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch comment")
		return
	}

	liked, err := h.Likes.Toggle(ctx, models.CommentTarget(commentID), principal.ID)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to toggle like")
		return
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"isLiked": liked}, "like toggled")
}

// LikedVideos returns the caller's liked videos, most recently liked first.
func (h *LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	params := pagination.ParseParams(r.URL.Query())
	items, total, err := h.Likes.ListLikedVideos(ctx, principal.ID, params)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to list liked videos")
		return
	}
	respondData(ctx, w, http.StatusOK, pagination.NewPage(items, total, params), "liked videos fetched")
}
