package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// PlaylistHandler serves playlist CRUD and membership changes.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	NowFunc   func() time.Time
}

func (h *PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type playlistResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newPlaylistResponse(playlist models.Playlist) playlistResponse {
	videoIDs := playlist.VideoIDs
	if videoIDs == nil {
		videoIDs = []string{}
	}
	return playlistResponse{
		ID:          playlist.ID,
		OwnerID:     playlist.OwnerID,
		Name:        playlist.Name,
		Description: playlist.Description,
		VideoIDs:    videoIDs,
		CreatedAt:   playlist.CreatedAt,
		UpdatedAt:   playlist.UpdatedAt,
	}
}

// Create makes a new, empty playlist for the caller.
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" || req.Description == "" {
		respondError(ctx, w, http.StatusBadRequest, "name and description are required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     principal.ID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to create playlist")
		return
	}
	respondData(ctx, w, http.StatusCreated, newPlaylistResponse(playlist), "playlist created")
}

// Get returns the playlist read model with its videos expanded in order.
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID, ok := pathID(w, r, "playlistId")
	if !ok {
		return
	}

	detail, err := h.Playlists.Detail(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "playlist not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch playlist")
		return
	}
	respondData(ctx, w, http.StatusOK, detail, "playlist fetched")
}

// ListMine returns the caller's playlists.
func (h *PlaylistHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	items, err := h.Playlists.ListForOwner(ctx, principal.ID)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to list playlists")
		return
	}
	respondData(ctx, w, http.StatusOK, items, "playlists fetched")
}

// Delete removes a playlist. Videos themselves are untouched. Only the
// owner may delete.
func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	playlistID, ok := pathID(w, r, "playlistId")
	if !ok {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "playlist not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch playlist")
		return
	}
	if !ownedBy(playlist.OwnerID, principal.ID) {
		respondError(ctx, w, http.StatusForbidden, "only the owner may delete this playlist")
		return
	}

	if err := h.Playlists.Delete(ctx, playlistID); err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete playlist")
		return
	}
	respondData(ctx, w, http.StatusOK, map[string]string{"id": playlistID}, "playlist deleted")
}

// AddVideo appends a video to a playlist. Adding a video that is already
// present is a conflict. Only the owner may modify the playlist.
func (h *PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	playlistID, ok := pathID(w, r, "playlistId")
	if !ok {
		return
	}
	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "playlist not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch playlist")
		return
	}
	if !ownedBy(playlist.OwnerID, principal.ID) {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this playlist")
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

	if err := h.Playlists.AddVideo(ctx, playlistID, videoID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			respondError(ctx, w, http.StatusConflict, "video already in playlist")
		case errors.Is(err, repositories.ErrNotFound):
			respondError(ctx, w, http.StatusNotFound, "playlist not found")
		default:
			respondError(ctx, w, http.StatusInternalServerError, "failed to add video to playlist")
		}
		return
	}
	respondData(ctx, w, http.StatusOK, map[string]string{"playlistId": playlistID, "videoId": videoID}, "video added to playlist")
}

// RemoveVideo removes a video from a playlist. Removing an absent video is
// a no-op success. Only the owner may modify the playlist.
func (h *PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	playlistID, ok := pathID(w, r, "playlistId")
	if !ok {
		return
	}
	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "playlist not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch playlist")
		return
	}
	if !ownedBy(playlist.OwnerID, principal.ID) {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this playlist")
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlistID, videoID); err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to remove video from playlist")
		return
	}
	respondData(ctx, w, http.StatusOK, map[string]string{"playlistId": playlistID, "videoId": videoID}, "video removed from playlist")
}
