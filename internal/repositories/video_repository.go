package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// VideoSort names a whitelisted sort field for the video listing.
type VideoSort string

const (
	SortByCreatedAt VideoSort = "createdAt"
	SortByViews     VideoSort = "views"
	SortByDuration  VideoSort = "duration"
)

// VideoFilter narrows and orders the published-video listing.
type VideoFilter struct {
	OwnerID   string    // optional: only this owner's videos
	Query     string    // optional: substring match on title/description
	SortBy    VideoSort // defaults to SortByCreatedAt
	Ascending bool
}

// VideoRepository exposes data access for videos and their read models.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	// Delete removes the video row together with its likes and the likes
	// of its comments in one transaction. Comments, playlist memberships
	// and watch-history rows cascade at the schema level.
	Delete(ctx context.Context, id string) error

	// Detail produces the video page view for the given viewer ("" for
	// anonymous). It performs no writes; callers record the view
	// separately via RecordView.
	Detail(ctx context.Context, id, viewerID string) (models.VideoDetail, error)
	// RecordView increments the video's view counter and, for an
	// authenticated viewer, upserts the watch-history row, both inside
	// one transaction.
	RecordView(ctx context.Context, videoID, viewerID string) error

	List(ctx context.Context, filter VideoFilter, p pagination.Params) ([]models.VideoListItem, int64, error)
}
