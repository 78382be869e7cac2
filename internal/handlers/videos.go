package handlers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

// VideoHandler serves the video catalog: publishing, metadata updates,
// deletion, the paginated listing and the single-video read model.
type VideoHandler struct {
	Videos  VideoStore
	Assets  AssetStore
	Uploads UploadStaging
	NowFunc func() time.Time
}

func (h *VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// videoResponse is the JSON shape of a video owned-entity response.
type videoResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newVideoResponse(video models.Video) videoResponse {
	return videoResponse{
		ID:           video.ID,
		OwnerID:      video.OwnerID,
		Title:        video.Title,
		Description:  video.Description,
		VideoURL:     video.VideoFile.URL,
		ThumbnailURL: video.Thumbnail.URL,
		Duration:     video.Duration,
		Views:        video.Views,
		IsPublished:  video.IsPublished,
		CreatedAt:    video.CreatedAt,
		UpdatedAt:    video.UpdatedAt,
	}
}

// List returns the paginated published-video listing, optionally filtered
// by owner and free-text query and sorted by a whitelisted column.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := pagination.ParseParams(r.URL.Query())

	filter := repositories.VideoFilter{
		Query:  strings.TrimSpace(r.URL.Query().Get("query")),
		SortBy: repositories.SortByCreatedAt,
	}
	if owner := strings.TrimSpace(r.URL.Query().Get("ownerId")); owner != "" {
		if _, err := uuid.Parse(owner); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid ownerId")
			return
		}
		filter.OwnerID = owner
	}
	switch r.URL.Query().Get("sortBy") {
	case "", "createdAt":
	case "views":
		filter.SortBy = repositories.SortByViews
	case "duration":
		filter.SortBy = repositories.SortByDuration
	default:
		respondError(ctx, w, http.StatusBadRequest, "unsupported sortBy value")
		return
	}
	filter.Ascending = r.URL.Query().Get("sortType") == "asc"

	items, total, err := h.Videos.List(ctx, filter, params)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to list videos")
		return
	}
	respondData(ctx, w, http.StatusOK, pagination.NewPage(items, total, params), "videos fetched")
}

// Publish uploads a new video and its thumbnail and creates the record.
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, http.StatusBadRequest, "title and description are required")
		return
	}

	videoPath, err := h.Uploads.Save(r, "videoFile")
	if err != nil {
		if errors.Is(err, ErrMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "videoFile is required")
			return
		}
		respondError(ctx, w, http.StatusBadRequest, "could not read videoFile upload")
		return
	}
	defer os.Remove(videoPath)

	thumbPath, err := h.Uploads.Save(r, "thumbnail")
	if err != nil {
		if errors.Is(err, ErrMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "thumbnail is required")
			return
		}
		respondError(ctx, w, http.StatusBadRequest, "could not read thumbnail upload")
		return
	}
	defer os.Remove(thumbPath)

	videoAsset, err := h.Assets.Store(ctx, videoPath, storage.KindVideo)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to store video file")
		return
	}
	thumbAsset, err := h.Assets.Store(ctx, thumbPath, storage.KindImage)
	if err != nil {
		h.discardAsset(r, videoAsset, storage.KindVideo)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
		return
	}

	var duration float64
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			h.discardAsset(r, videoAsset, storage.KindVideo)
			h.discardAsset(r, thumbAsset, storage.KindImage)
			respondError(ctx, w, http.StatusBadRequest, "invalid duration")
			return
		}
		duration = parsed
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     principal.ID,
		Title:       title,
		Description: description,
		VideoFile:   videoAsset,
		Thumbnail:   thumbAsset,
		Duration:    duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Videos.Create(ctx, video); err != nil {
		h.discardAsset(r, videoAsset, storage.KindVideo)
		h.discardAsset(r, thumbAsset, storage.KindImage)
		respondError(ctx, w, http.StatusInternalServerError, "failed to publish video")
		return
	}
	respondData(ctx, w, http.StatusCreated, newVideoResponse(video), "video published")
}

// Detail returns the single-video read model and records the view.
func (h *VideoHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	detail, err := h.Videos.Detail(ctx, videoID, viewerID(ctx))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch video")
		return
	}
	if err := h.Videos.RecordView(ctx, videoID, viewerID(ctx)); err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to record view")
		return
	}
	respondData(ctx, w, http.StatusOK, detail, "video fetched")
}

// Update changes a video's title and description and optionally replaces
// its thumbnail. Only the owner may update.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch video")
		return
	}
	if !ownedBy(video.OwnerID, principal.ID) {
		respondError(ctx, w, http.StatusForbidden, "only the owner may update this video")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, http.StatusBadRequest, "title and description are required")
		return
	}

	oldThumbnail := video.Thumbnail
	replacedThumbnail := false
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		thumbPath, err := h.Uploads.SaveOptional(r, "thumbnail")
		if err != nil {
			respondError(ctx, w, http.StatusBadRequest, "could not read thumbnail upload")
			return
		}
		if thumbPath != "" {
			defer os.Remove(thumbPath)
			thumbAsset, err := h.Assets.Store(ctx, thumbPath, storage.KindImage)
			if err != nil {
				respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
				return
			}
			video.Thumbnail = thumbAsset
			replacedThumbnail = true
		}
	}

	video.Title = title
	video.Description = description
	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		if replacedThumbnail {
			h.discardAsset(r, video.Thumbnail, storage.KindImage)
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to update video")
		return
	}
	if replacedThumbnail {
		h.discardAsset(r, oldThumbnail, storage.KindImage)
	}
	respondData(ctx, w, http.StatusOK, newVideoResponse(video), "video updated")
}

// Delete removes a video, its likes and both stored assets. Only the owner
// may delete. Asset removal is best effort once the record is gone.
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch video")
		return
	}
	if !ownedBy(video.OwnerID, principal.ID) {
		respondError(ctx, w, http.StatusForbidden, "only the owner may delete this video")
		return
	}

	if err := h.Videos.Delete(ctx, videoID); err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete video")
		return
	}
	h.discardAsset(r, video.VideoFile, storage.KindVideo)
	h.discardAsset(r, video.Thumbnail, storage.KindImage)
	respondData(ctx, w, http.StatusOK, map[string]string{"id": videoID}, "video deleted")
}

// TogglePublishStatus flips a video between published and hidden. Only the
// owner may toggle.
func (h *VideoHandler) TogglePublishStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch video")
		return
	}
	if !ownedBy(video.OwnerID, principal.ID) {
		respondError(ctx, w, http.StatusForbidden, "only the owner may change publish status")
		return
	}

	video.IsPublished = !video.IsPublished
	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to update publish status")
		return
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"isPublished": video.IsPublished}, "publish status toggled")
}

func (h *VideoHandler) discardAsset(r *http.Request, asset models.Asset, kind storage.Kind) {
	if asset.PublicID == "" {
		return
	}
	if _, err := h.Assets.Remove(r.Context(), asset.PublicID, kind); err != nil {
		logging.FromContext(r.Context()).Warn("failed to remove stored asset",
			"publicId", asset.PublicID, "kind", string(kind), "error", err)
	}
}
