package handlers

import (
	"errors"
	"net/http"

	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
)

// SubscriptionHandler serves the subscription toggle and both listings:
// a channel's subscribers and a user's subscribed channels.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
}

// Toggle flips the caller's subscription to a channel. Subscribing to
// yourself is rejected.
func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	channelID, ok := pathID(w, r, "channelId")
	if !ok {
		return
	}
	if channelID == principal.ID {
		respondError(ctx, w, http.StatusBadRequest, "cannot subscribe to your own channel")
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch channel")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, principal.ID, channelID)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to toggle subscription")
		return
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"isSubscribed": subscribed}, "subscription toggled")
}

// Subscribers returns the paginated subscriber list of a channel.
func (h *SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channelID, ok := pathID(w, r, "channelId")
	if !ok {
		return
	}
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch channel")
		return
	}

	params := pagination.ParseParams(r.URL.Query())
	items, total, err := h.Subscriptions.ListSubscribers(ctx, channelID, params)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to list subscribers")
		return
	}
	respondData(ctx, w, http.StatusOK, pagination.NewPage(items, total, params), "subscribers fetched")
}

// SubscribedChannels returns the channels a user is subscribed to.
func (h *SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscriberID, ok := pathID(w, r, "subscriberId")
	if !ok {
		return
	}
	if _, err := h.Users.FindByID(ctx, subscriberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	params := pagination.ParseParams(r.URL.Query())
	items, total, err := h.Subscriptions.ListSubscribedChannels(ctx, subscriberID, params)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to list subscribed channels")
		return
	}
	respondData(ctx, w, http.StatusOK, pagination.NewPage(items, total, params), "subscribed channels fetched")
}
