package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// SubscriptionRepository exposes the subscription toggle and the two
// subscription listings.
type SubscriptionRepository interface {
	// Toggle flips the presence of a subscription for (subscriber,
	// channel) and reports the resulting state: true when subscribed.
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)

	ListSubscribers(ctx context.Context, channelID string, p pagination.Params) ([]models.SubscriberView, int64, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string, p pagination.Params) ([]models.SubscribedChannel, int64, error)
}
