package repositories

import (
	"context"
	"time"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// UserRepository exposes data access for user accounts and the user-shaped
// read models (channel profile, watch history).
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	FindByRefreshHash(ctx context.Context, hash string) (models.User, error)

	UpdateAccount(ctx context.Context, id, fullName, email string, updatedAt time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	UpdateAvatar(ctx context.Context, id string, avatar models.Asset, updatedAt time.Time) error
	UpdateCover(ctx context.Context, id string, cover models.Asset, updatedAt time.Time) error
	SetRefreshToken(ctx context.Context, id, hash string, expiresAt *time.Time) error

	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string, p pagination.Params) ([]models.WatchHistoryItem, int64, error)
}
