package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle flips the like state for (target, userID). Delete first: when a
// row was removed the like is now absent. Otherwise insert with ON
// CONFLICT DO NOTHING, so a concurrent duplicate toggle settles on
// "present" instead of violating the unique key.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, target models.LikeTarget, userID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE target_type = $1 AND target_id = $2 AND liked_by = $3
    `, target.Type, target.ID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, target_type, target_id, liked_by, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (target_type, target_id, liked_by) DO NOTHING
    `, uuid.NewString(), target.Type, target.ID, userID, time.Now().UTC())
	if err != nil {
		return false, mapPgError("insert like", err)
	}

	return true, nil
}

// ListLikedVideos returns a page of the videos the user has liked, most
// recent like first, each joined with its owner.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, userID string, p pagination.Params) ([]models.LikedVideo, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        WHERE l.liked_by = $1 AND l.target_type = 'video'
    `, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count liked videos: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url,
               u.id, u.username, u.full_name, u.avatar_url,
               l.created_at
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.target_type = 'video'
        ORDER BY l.created_at DESC
        LIMIT $2 OFFSET $3
    `, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var items []models.LikedVideo
	for rows.Next() {
		var item models.LikedVideo
		if err := rows.Scan(&item.ID, &item.Title, &item.Description,
			&item.VideoURL, &item.ThumbnailURL,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.FullName,
			&item.Owner.AvatarURL, &item.LikedAt); err != nil {
			return nil, 0, fmt.Errorf("scan liked video: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate liked videos: %w", err)
	}

	return items, total, nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
