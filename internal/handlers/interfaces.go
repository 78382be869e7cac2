package handlers

import (
	"context"
	"time"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	UpdateAccount(ctx context.Context, id, fullName, email string, updatedAt time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	UpdateAvatar(ctx context.Context, id string, avatar models.Asset, updatedAt time.Time) error
	UpdateCover(ctx context.Context, id string, cover models.Asset, updatedAt time.Time) error
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string, p pagination.Params) ([]models.WatchHistoryItem, int64, error)
}

// VideoStore captures persistence for videos and their read models.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
	Detail(ctx context.Context, id, viewerID string) (models.VideoDetail, error)
	RecordView(ctx context.Context, videoID, viewerID string) error
	List(ctx context.Context, filter repositories.VideoFilter, p pagination.Params) ([]models.VideoListItem, int64, error)
}

// CommentStore captures persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID, viewerID string, p pagination.Params) ([]models.CommentView, int64, error)
}

// LikeStore captures the like toggle and liked-videos listing.
type LikeStore interface {
	Toggle(ctx context.Context, target models.LikeTarget, userID string) (bool, error)
	ListLikedVideos(ctx context.Context, userID string, p pagination.Params) ([]models.LikedVideo, int64, error)
}

// SubscriptionStore captures the subscription toggle and listings.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string, p pagination.Params) ([]models.SubscriberView, int64, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string, p pagination.Params) ([]models.SubscribedChannel, int64, error)
}

// PlaylistStore captures persistence for playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	Detail(ctx context.Context, id string) (models.PlaylistDetail, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.PlaylistDetail, error)
}

// SessionManager issues, refreshes and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, user models.User) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.User, models.SessionTokens, error)
	Revoke(ctx context.Context, userID string) error
}

// AssetStore is the external collaborator holding binary assets.
type AssetStore = storage.AssetStore
