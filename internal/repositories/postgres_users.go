package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, username, email, full_name, avatar_url, avatar_public_id,
        cover_url, cover_public_id, password_hash, refresh_token_hash, refresh_expires_at,
        created_at, updated_at`

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, avatar_url, avatar_public_id,
                cover_url, cover_public_id, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, user.ID, user.Username, user.Email, user.FullName,
		user.Avatar.URL, user.Avatar.PublicID,
		user.CoverImage.URL, user.CoverImage.PublicID,
		user.Password, user.CreatedAt, user.UpdatedAt)
	return mapPgError("insert user", err)
}

// FindByID fetches a user by identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByLogin fetches a user by username or email.
func (r *PostgresUserRepository) FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, usernameOrEmail)
}

// FindByRefreshHash fetches the user holding the given refresh token hash.
func (r *PostgresUserRepository) FindByRefreshHash(ctx context.Context, hash string) (models.User, error) {
	if hash == "" {
		return models.User{}, ErrNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE refresh_token_hash = $1`, hash)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, args ...any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user        models.User
		refreshHash sql.NullString
		refreshExp  sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.Avatar.URL, &user.Avatar.PublicID,
		&user.CoverImage.URL, &user.CoverImage.PublicID,
		&user.Password, &refreshHash, &refreshExp,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	user.RefreshTokenHash = refreshHash.String
	if refreshExp.Valid {
		t := refreshExp.Time.UTC()
		user.RefreshExpiresAt = &t
	}
	return user, nil
}

// UpdateAccount modifies the mutable profile fields of a user.
func (r *PostgresUserRepository) UpdateAccount(ctx context.Context, id, fullName, email string, updatedAt time.Time) error {
	return r.exec(ctx, "update user account", `
        UPDATE users SET full_name = $2, email = $3, updated_at = $4 WHERE id = $1
    `, id, fullName, email, updatedAt)
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	return r.exec(ctx, "update user password", `
        UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
    `, id, passwordHash, updatedAt)
}

// UpdateAvatar replaces the avatar asset reference.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id string, avatar models.Asset, updatedAt time.Time) error {
	return r.exec(ctx, "update user avatar", `
        UPDATE users SET avatar_url = $2, avatar_public_id = $3, updated_at = $4 WHERE id = $1
    `, id, avatar.URL, avatar.PublicID, updatedAt)
}

// UpdateCover replaces the cover image asset reference.
func (r *PostgresUserRepository) UpdateCover(ctx context.Context, id string, cover models.Asset, updatedAt time.Time) error {
	return r.exec(ctx, "update user cover", `
        UPDATE users SET cover_url = $2, cover_public_id = $3, updated_at = $4 WHERE id = $1
    `, id, cover.URL, cover.PublicID, updatedAt)
}

// SetRefreshToken stores (or clears, with empty hash and nil expiry) the
// refresh token hash for a user.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, id, hash string, expiresAt *time.Time) error {
	var (
		storedHash sql.NullString
		storedExp  sql.NullTime
	)
	if hash != "" {
		storedHash = sql.NullString{Valid: true, String: hash}
	}
	if expiresAt != nil {
		storedExp = sql.NullTime{Valid: true, Time: *expiresAt}
	}
	return r.exec(ctx, "set refresh token", `
        UPDATE users SET refresh_token_hash = $2, refresh_expires_at = $3 WHERE id = $1
    `, id, storedHash, storedExp)
}

func (r *PostgresUserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ChannelProfile builds the public channel view of a user: profile fields
// joined with subscriber counts and the viewer's subscription flag. An
// empty viewerID matches no subscription row, so IsSubscribed is false for
// anonymous viewers.
func (r *PostgresUserRepository) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url, u.cover_url,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscriber_count,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_to_count,
               EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2) AS is_subscribed
        FROM users u
        WHERE u.username = $1
    `, username, viewerID)

	var profile models.ChannelProfile
	if err := row.Scan(&profile.ID, &profile.Username, &profile.FullName,
		&profile.AvatarURL, &profile.CoverImageURL,
		&profile.SubscriberCount, &profile.SubscribedToCount, &profile.IsSubscribed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, ErrNotFound
		}
		return models.ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}

	return profile, nil
}

// WatchHistory returns the user's watch history, most recently watched
// first, with the owning channel joined onto each video.
func (r *PostgresUserRepository) WatchHistory(ctx context.Context, userID string, p pagination.Params) ([]models.WatchHistoryItem, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM watch_history WHERE user_id = $1
    `, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count watch history: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url,
               v.duration, v.views, v.created_at,
               u.id, u.username, u.full_name, u.avatar_url,
               wh.watched_at
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE wh.user_id = $1
        ORDER BY wh.watched_at DESC
        LIMIT $2 OFFSET $3
    `, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var items []models.WatchHistoryItem
	for rows.Next() {
		var item models.WatchHistoryItem
		if err := rows.Scan(&item.Video.ID, &item.Video.Title, &item.Video.Description,
			&item.Video.VideoURL, &item.Video.ThumbnailURL,
			&item.Video.Duration, &item.Video.Views, &item.Video.CreatedAt,
			&item.Video.Owner.ID, &item.Video.Owner.Username,
			&item.Video.Owner.FullName, &item.Video.Owner.AvatarURL,
			&item.WatchedAt); err != nil {
			return nil, 0, fmt.Errorf("scan watch history item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate watch history: %w", err)
	}

	return items, total, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
