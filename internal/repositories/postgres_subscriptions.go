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

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence
// for channel subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips the subscription state for (subscriber, channel), same
// delete-then-insert shape as the like toggle.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (subscriber_id, channel_id) DO NOTHING
    `, uuid.NewString(), subscriberID, channelID, time.Now().UTC())
	if err != nil {
		return false, mapPgError("insert subscription", err)
	}

	return true, nil
}

// ListSubscribers returns a page of a channel's subscribers, newest first.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string, p pagination.Params) ([]models.SubscriberView, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1
    `, channelID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count subscribers: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url, s.created_at
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
        LIMIT $2 OFFSET $3
    `, channelID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var items []models.SubscriberView
	for rows.Next() {
		var item models.SubscriberView
		if err := rows.Scan(&item.Subscriber.ID, &item.Subscriber.Username,
			&item.Subscriber.FullName, &item.Subscriber.AvatarURL,
			&item.SubscribedAt); err != nil {
			return nil, 0, fmt.Errorf("scan subscriber: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate subscribers: %w", err)
	}

	return items, total, nil
}

// ListSubscribedChannels returns a page of the channels a user follows,
// newest subscription first.
func (r *PostgresSubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID string, p pagination.Params) ([]models.SubscribedChannel, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1
    `, subscriberID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count subscribed channels: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url, s.created_at
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
        LIMIT $2 OFFSET $3
    `, subscriberID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query subscribed channels: %w", err)
	}
	defer rows.Close()

	var items []models.SubscribedChannel
	for rows.Next() {
		var item models.SubscribedChannel
		if err := rows.Scan(&item.Channel.ID, &item.Channel.Username,
			&item.Channel.FullName, &item.Channel.AvatarURL,
			&item.SubscribedAt); err != nil {
			return nil, 0, fmt.Errorf("scan subscribed channel: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate subscribed channels: %w", err)
	}

	return items, total, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
