package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create persists a new comment.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, comment.ID, comment.VideoID, comment.OwnerID, comment.Content,
		comment.CreatedAt, comment.UpdatedAt)
	return mapPgError("insert comment", err)
}

// FindByID fetches a comment by identifier.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, video_id, owner_id, content, created_at, updated_at
        FROM comments
        WHERE id = $1
    `, id)

	var comment models.Comment
	if err := row.Scan(&comment.ID, &comment.VideoID, &comment.OwnerID,
		&comment.Content, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment: %w", err)
	}

	return comment, nil
}

// UpdateContent replaces a comment's text.
func (r *PostgresCommentRepository) UpdateContent(ctx context.Context, id, content string, updatedAt time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1
    `, id, content, updatedAt)
	if err != nil {
		return mapPgError("update comment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a comment together with the likes pointing at it.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	return db.RunInTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            DELETE FROM likes WHERE target_type = 'comment' AND target_id = $1
        `, id); err != nil {
			return fmt.Errorf("delete comment likes: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListForVideo returns a page of a video's comments, newest first, each
// with its owner, like count and the viewer's like flag.
func (r *PostgresCommentRepository) ListForVideo(ctx context.Context, videoID, viewerID string, p pagination.Params) ([]models.CommentView, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM comments WHERE video_id = $1
    `, videoID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT c.id, c.content, c.created_at,
               (SELECT COUNT(*) FROM likes l
                 WHERE l.target_type = 'comment' AND l.target_id = c.id) AS like_count,
               EXISTS (SELECT 1 FROM likes l
                 WHERE l.target_type = 'comment' AND l.target_id = c.id
                   AND l.liked_by = $2) AS is_liked,
               u.id, u.username, u.full_name, u.avatar_url
        FROM comments c
        JOIN users u ON u.id = c.owner_id
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC
        LIMIT $3 OFFSET $4
    `, videoID, viewerID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var views []models.CommentView
	for rows.Next() {
		var view models.CommentView
		if err := rows.Scan(&view.ID, &view.Content, &view.CreatedAt,
			&view.LikeCount, &view.IsLiked,
			&view.Owner.ID, &view.Owner.Username, &view.Owner.FullName,
			&view.Owner.AvatarURL); err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate comments: %w", err)
	}

	return views, total, nil
}

var _ CommentRepository = (*PostgresCommentRepository)(nil)
