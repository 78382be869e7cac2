package repositories

import (
	"context"
	"time"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// CommentRepository exposes data access for comments and the per-video
// comment listing read model.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error

	ListForVideo(ctx context.Context, videoID, viewerID string, p pagination.Params) ([]models.CommentView, int64, error)
}
