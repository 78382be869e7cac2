package models

import "time"

// The view types below are the transient documents produced by the
// read-model queries. They are shaped for JSON responses and are never
// persisted. Derived flags (IsLiked, IsSubscribed) resolve to false for
// anonymous viewers.

// OwnerSummary is the restricted owner sub-document embedded in views.
type OwnerSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl"`
}

// ChannelSummary extends OwnerSummary with subscription-derived fields.
type ChannelSummary struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	AvatarURL       string `json:"avatarUrl"`
	SubscriberCount int64  `json:"subscriberCount"`
	IsSubscribed    bool   `json:"isSubscribed"`
}

// VideoDetail is the video page view: the video joined with its like and
// comment counts, the viewer's like flag, and the owner channel summary.
type VideoDetail struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	VideoURL     string         `json:"videoUrl"`
	ThumbnailURL string         `json:"thumbnailUrl"`
	Duration     float64        `json:"duration"`
	Views        int64          `json:"views"`
	CreatedAt    time.Time      `json:"createdAt"`
	LikeCount    int64          `json:"likeCount"`
	CommentCount int64          `json:"commentCount"`
	IsLiked      bool           `json:"isLiked"`
	Owner        ChannelSummary `json:"owner"`
}

// VideoListItem is one row of the published-video listing.
type VideoListItem struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	VideoURL     string       `json:"videoUrl"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	CreatedAt    time.Time    `json:"createdAt"`
	Owner        OwnerSummary `json:"owner"`
}

// CommentView is one row of the comment listing for a video.
type CommentView struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	LikeCount int64        `json:"likeCount"`
	IsLiked   bool         `json:"isLiked"`
	Owner     OwnerSummary `json:"owner"`
}

// LikedVideo is one row of the viewer's liked-videos listing, ordered by
// when the like was created.
type LikedVideo struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	VideoURL     string       `json:"videoUrl"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	Owner        OwnerSummary `json:"owner"`
	LikedAt      time.Time    `json:"likedAt"`
}

// SubscriberView is one row of a channel's subscriber listing.
type SubscriberView struct {
	Subscriber   OwnerSummary `json:"subscriber"`
	SubscribedAt time.Time    `json:"subscribedAt"`
}

// SubscribedChannel is one row of a user's subscribed-channels listing.
type SubscribedChannel struct {
	Channel      OwnerSummary `json:"channel"`
	SubscribedAt time.Time    `json:"subscribedAt"`
}

// PlaylistVideo is a video row inside a playlist view.
type PlaylistVideo struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	VideoURL     string       `json:"videoUrl"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	CreatedAt    time.Time    `json:"createdAt"`
	Owner        OwnerSummary `json:"owner"`
}

// PlaylistDetail is a playlist joined with its videos and their owners.
type PlaylistDetail struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	TotalVideos int64           `json:"totalVideos"`
	Videos      []PlaylistVideo `json:"videos"`
	Owner       OwnerSummary    `json:"owner"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ChannelProfile is the public profile of a user viewed as a channel.
type ChannelProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	FullName          string `json:"fullName"`
	AvatarURL         string `json:"avatarUrl"`
	CoverImageURL     string `json:"coverImageUrl,omitempty"`
	SubscriberCount   int64  `json:"subscriberCount"`
	SubscribedToCount int64  `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// WatchHistoryItem is one row of the viewer's watch history, newest first.
type WatchHistoryItem struct {
	Video     VideoListItem `json:"video"`
	WatchedAt time.Time     `json:"watchedAt"`
}
