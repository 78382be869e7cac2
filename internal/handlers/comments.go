package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
)

// CommentHandler serves comment creation, edits, deletion and the
// paginated per-video listing.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	NowFunc  func() time.Time
}

func (h *CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type commentResponse struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newCommentResponse(comment models.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		VideoID:   comment.VideoID,
		OwnerID:   comment.OwnerID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

type commentRequest struct {
	Content string `json:"content"`
}

// ListForVideo returns the paginated comments of a video, newest first.
func (h *CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
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

	params := pagination.ParseParams(r.URL.Query())
	items, total, err := h.Comments.ListForVideo(ctx, videoID, viewerID(ctx), params)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to list comments")
		return
	}
	respondData(ctx, w, http.StatusOK, pagination.NewPage(items, total, params), "comments fetched")
}

// Create adds a comment to a video.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
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

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   principal.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to create comment")
		return
	}
	respondData(ctx, w, http.StatusCreated, newCommentResponse(comment), "comment added")
}

// Update replaces a comment's content. Only the author may update.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "comment not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch comment")
		return
	}
	if !ownedBy(comment.OwnerID, principal.ID) {
		respondError(ctx, w, http.StatusForbidden, "only the author may update this comment")
		return
	}

	comment.Content = req.Content
	comment.UpdatedAt = h.now()
	if err := h.Comments.UpdateContent(ctx, commentID, comment.Content, comment.UpdatedAt); err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to update comment")
		return
	}
	respondData(ctx, w, http.StatusOK, newCommentResponse(comment), "comment updated")
}

// Delete removes a comment and its likes. Only the author may delete.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "comment not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch comment")
		return
	}
	if !ownedBy(comment.OwnerID, principal.ID) {
		respondError(ctx, w, http.StatusForbidden, "only the author may delete this comment")
		return
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete comment")
		return
	}
	respondData(ctx, w, http.StatusOK, map[string]string{"id": commentID}, "comment deleted")
}
