package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
)

// PlaylistRepository exposes data access for playlists and the
// playlist-with-videos read model.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error

	// AddVideo appends the video at the end of the playlist. Adding a
	// video that is already present returns ErrConflict.
	AddVideo(ctx context.Context, playlistID, videoID string) error
	// RemoveVideo is a no-op when the video is not in the playlist.
	RemoveVideo(ctx context.Context, playlistID, videoID string) error

	Detail(ctx context.Context, id string) (models.PlaylistDetail, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.PlaylistDetail, error)
}
