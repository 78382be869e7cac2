package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// LikeRepository exposes the like toggle and the liked-videos read model.
type LikeRepository interface {
	// Toggle flips the presence of a like for (target, userID) and
	// reports the resulting state: true when the like now exists. The
	// composite unique key on likes makes concurrent toggles safe; a
	// duplicate insert degrades to "already present".
	Toggle(ctx context.Context, target models.LikeTarget, userID string) (bool, error)

	ListLikedVideos(ctx context.Context, userID string, p pagination.Params) ([]models.LikedVideo, int64, error)
}
