package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
)

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create persists a new, empty playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description,
		playlist.CreatedAt, playlist.UpdatedAt)
	return mapPgError("insert playlist", err)
}

// FindByID fetches a playlist and its member video ids in insertion order.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, name, description, created_at, updated_at
        FROM playlists
        WHERE id = $1
    `, id)

	var playlist models.Playlist
	if err := row.Scan(&playlist.ID, &playlist.OwnerID, &playlist.Name,
		&playlist.Description, &playlist.CreatedAt, &playlist.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT video_id FROM playlist_videos
        WHERE playlist_id = $1
        ORDER BY position
    `, id)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	playlist.VideoIDs = []string{}
	for rows.Next() {
		var videoID string
		if err := rows.Scan(&videoID); err != nil {
			return models.Playlist{}, fmt.Errorf("scan playlist video: %w", err)
		}
		playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	}
	if err := rows.Err(); err != nil {
		return models.Playlist{}, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return playlist, nil
}

// Delete removes a playlist; memberships cascade.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideo appends the video at the end of the playlist. The primary key
// on (playlist_id, video_id) turns a duplicate add into ErrConflict.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	return db.RunInTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
            INSERT INTO playlist_videos (playlist_id, video_id, position, added_at)
            SELECT $1, $2,
                   COALESCE(MAX(position), 0) + 1,
                   $3
            FROM playlist_videos
            WHERE playlist_id = $1
        `, playlistID, videoID, time.Now().UTC())
		if err := mapPgError("insert playlist video", err); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
            UPDATE playlists SET updated_at = $2 WHERE id = $1
        `, playlistID, time.Now().UTC()); err != nil {
			return fmt.Errorf("touch playlist: %w", err)
		}
		return nil
	})
}

// RemoveVideo drops the membership row; removing an absent video is a no-op.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID); err != nil {
		return fmt.Errorf("delete playlist video: %w", err)
	}
	return nil
}

// Detail builds the playlist-with-videos view: the playlist, its owner,
// and every member video with that video's owner joined on, in insertion
// order. TotalVideos is the member count.
func (r *PostgresPlaylistRepository) Detail(ctx context.Context, id string) (models.PlaylistDetail, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT p.id, p.name, p.description, p.created_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM playlists p
        JOIN users u ON u.id = p.owner_id
        WHERE p.id = $1
    `, id)

	var detail models.PlaylistDetail
	if err := row.Scan(&detail.ID, &detail.Name, &detail.Description, &detail.CreatedAt,
		&detail.Owner.ID, &detail.Owner.Username, &detail.Owner.FullName,
		&detail.Owner.AvatarURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PlaylistDetail{}, ErrNotFound
		}
		return models.PlaylistDetail{}, fmt.Errorf("select playlist detail: %w", err)
	}

	videos, err := r.memberVideos(ctx, conn, id)
	if err != nil {
		return models.PlaylistDetail{}, err
	}
	detail.Videos = videos
	detail.TotalVideos = int64(len(videos))

	return detail, nil
}

// ListForOwner returns every playlist owned by a user, newest first, each
// in the same joined shape as Detail.
func (r *PostgresPlaylistRepository) ListForOwner(ctx context.Context, ownerID string) ([]models.PlaylistDetail, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT p.id, p.name, p.description, p.created_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM playlists p
        JOIN users u ON u.id = p.owner_id
        WHERE p.owner_id = $1
        ORDER BY p.created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}

	var playlists []models.PlaylistDetail
	for rows.Next() {
		var detail models.PlaylistDetail
		if err := rows.Scan(&detail.ID, &detail.Name, &detail.Description, &detail.CreatedAt,
			&detail.Owner.ID, &detail.Owner.Username, &detail.Owner.FullName,
			&detail.Owner.AvatarURL); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, detail)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	rows.Close()

	for i := range playlists {
		videos, err := r.memberVideos(ctx, conn, playlists[i].ID)
		if err != nil {
			return nil, err
		}
		playlists[i].Videos = videos
		playlists[i].TotalVideos = int64(len(videos))
	}

	return playlists, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PostgresPlaylistRepository) memberVideos(ctx context.Context, conn querier, playlistID string) ([]models.PlaylistVideo, error) {
	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url, v.created_at,
               ou.id, ou.username, ou.full_name, ou.avatar_url
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        JOIN users ou ON ou.id = v.owner_id
        WHERE pv.playlist_id = $1
        ORDER BY pv.position
    `, playlistID)
	if err != nil {
		return nil, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	videos := []models.PlaylistVideo{}
	for rows.Next() {
		var video models.PlaylistVideo
		if err := rows.Scan(&video.ID, &video.Title, &video.Description,
			&video.VideoURL, &video.ThumbnailURL, &video.CreatedAt,
			&video.Owner.ID, &video.Owner.Username, &video.Owner.FullName,
			&video.Owner.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan playlist video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return videos, nil
}

var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)
