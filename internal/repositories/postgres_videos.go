package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description,
                video_url, video_public_id, thumbnail_url, thumbnail_public_id,
                duration, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, video.ID, video.OwnerID, video.Title, video.Description,
		video.VideoFile.URL, video.VideoFile.PublicID,
		video.Thumbnail.URL, video.Thumbnail.PublicID,
		video.Duration, video.Views, video.IsPublished,
		video.CreatedAt, video.UpdatedAt)
	return mapPgError("insert video", err)
}

// FindByID fetches a video by identifier.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, title, description,
               video_url, video_public_id, thumbnail_url, thumbnail_public_id,
               duration, views, is_published, created_at, updated_at
        FROM videos
        WHERE id = $1
    `, id)

	var video models.Video
	if err := row.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description,
		&video.VideoFile.URL, &video.VideoFile.PublicID,
		&video.Thumbnail.URL, &video.Thumbnail.PublicID,
		&video.Duration, &video.Views, &video.IsPublished,
		&video.CreatedAt, &video.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// Update modifies the mutable fields of a video record.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3,
            thumbnail_url = $4, thumbnail_public_id = $5,
            is_published = $6, updated_at = $7
        WHERE id = $1
    `, video.ID, video.Title, video.Description,
		video.Thumbnail.URL, video.Thumbnail.PublicID,
		video.IsPublished, video.UpdatedAt)
	if err != nil {
		return mapPgError("update video", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the video record along with the likes that point at it,
// directly or via its comments. Polymorphic like targets have no foreign
// key, so those deletes are explicit; the rest cascades.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	return db.RunInTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            DELETE FROM likes
            WHERE (target_type = 'video' AND target_id = $1)
               OR (target_type = 'comment' AND target_id IN (
                    SELECT id FROM comments WHERE video_id = $1))
        `, id); err != nil {
			return fmt.Errorf("delete video likes: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete video: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Detail builds the video page view: the video joined with like and
// comment counts, the viewer's like flag, and the owner channel enriched
// with subscriber count and subscription flag. An empty viewerID matches
// no rows, so both flags resolve to false for anonymous viewers.
func (r *PostgresVideoRepository) Detail(ctx context.Context, id, viewerID string) (models.VideoDetail, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url,
               v.duration, v.views, v.created_at,
               (SELECT COUNT(*) FROM likes l
                 WHERE l.target_type = 'video' AND l.target_id = v.id) AS like_count,
               (SELECT COUNT(*) FROM comments c
                 WHERE c.video_id = v.id) AS comment_count,
               EXISTS (SELECT 1 FROM likes l
                 WHERE l.target_type = 'video' AND l.target_id = v.id
                   AND l.liked_by = $2) AS is_liked,
               u.id, u.username, u.avatar_url,
               (SELECT COUNT(*) FROM subscriptions s
                 WHERE s.channel_id = u.id) AS subscriber_count,
               EXISTS (SELECT 1 FROM subscriptions s
                 WHERE s.channel_id = u.id AND s.subscriber_id = $2) AS is_subscribed
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1
    `, id, viewerID)

	var detail models.VideoDetail
	if err := row.Scan(&detail.ID, &detail.Title, &detail.Description,
		&detail.VideoURL, &detail.ThumbnailURL,
		&detail.Duration, &detail.Views, &detail.CreatedAt,
		&detail.LikeCount, &detail.CommentCount, &detail.IsLiked,
		&detail.Owner.ID, &detail.Owner.Username, &detail.Owner.AvatarURL,
		&detail.Owner.SubscriberCount, &detail.Owner.IsSubscribed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoDetail{}, ErrNotFound
		}
		return models.VideoDetail{}, fmt.Errorf("select video detail: %w", err)
	}

	return detail, nil
}

// RecordView increments the view counter and, for an authenticated viewer,
// upserts the watch-history row. Both writes commit together.
func (r *PostgresVideoRepository) RecordView(ctx context.Context, videoID, viewerID string) error {
	now := time.Now().UTC()
	return db.RunInTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE videos SET views = views + 1 WHERE id = $1
        `, videoID)
		if err != nil {
			return fmt.Errorf("increment views: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if viewerID == "" {
			return nil
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO watch_history (user_id, video_id, watched_at)
            VALUES ($1, $2, $3)
            ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = $3
        `, viewerID, videoID, now); err != nil {
			return fmt.Errorf("record watch history: %w", err)
		}
		return nil
	})
}

var videoSortColumns = map[VideoSort]string{
	SortByCreatedAt: "v.created_at",
	SortByViews:     "v.views",
	SortByDuration:  "v.duration",
}

// List returns a page of published videos with their owners joined,
// filtered and ordered per the whitelisted options.
func (r *PostgresVideoRepository) List(ctx context.Context, filter VideoFilter, p pagination.Params) ([]models.VideoListItem, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where := []string{"v.is_published = TRUE"}
	args := []any{}

	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(v.title ILIKE $%d OR v.description ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM videos v WHERE `+whereClause, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	sortColumn, ok := videoSortColumns[filter.SortBy]
	if !ok {
		sortColumn = videoSortColumns[SortByCreatedAt]
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	orderBy := fmt.Sprintf("%s %s", sortColumn, direction)
	if sortColumn != "v.created_at" {
		orderBy += ", v.created_at DESC"
	}

	args = append(args, p.Limit, p.Offset())
	rows, err := conn.Query(ctx, fmt.Sprintf(`
        SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url,
               v.duration, v.views, v.created_at,
               u.id, u.username, u.avatar_url
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE %s
        ORDER BY %s
        LIMIT $%d OFFSET $%d
    `, whereClause, orderBy, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var items []models.VideoListItem
	for rows.Next() {
		var item models.VideoListItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Description,
			&item.VideoURL, &item.ThumbnailURL,
			&item.Duration, &item.Views, &item.CreatedAt,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.AvatarURL); err != nil {
			return nil, 0, fmt.Errorf("scan video: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate videos: %w", err)
	}

	return items, total, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
