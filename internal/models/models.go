package models

import "time"

// Asset references a file held by the external asset store. The public id
// is the store's handle for later removal and never leaves the backend.
type Asset struct {
	URL      string
	PublicID string
}

// User represents an account on the platform. Every user doubles as a
// channel that other users can subscribe to.
type User struct {
	ID               string
	Username         string
	Email            string
	FullName         string
	Avatar           Asset
	CoverImage       Asset
	Password         string
	RefreshTokenHash string
	RefreshExpiresAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Video stores references to an uploaded video and its cached metadata.
type Video struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	VideoFile   Asset
	Thumbnail   Asset
	Duration    float64
	Views       int64
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a user's comment on a video.
type Comment struct {
	ID        string
	VideoID   string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LikeTargetType discriminates what a like points at.
type LikeTargetType string

const (
	LikeTargetVideo   LikeTargetType = "video"
	LikeTargetComment LikeTargetType = "comment"
)

// LikeTarget is the tagged reference a like points at: exactly one of a
// video or a comment, never both and never neither.
type LikeTarget struct {
	Type LikeTargetType
	ID   string
}

// VideoTarget builds a like target pointing at a video.
func VideoTarget(videoID string) LikeTarget {
	return LikeTarget{Type: LikeTargetVideo, ID: videoID}
}

// CommentTarget builds a like target pointing at a comment.
func CommentTarget(commentID string) LikeTarget {
	return LikeTarget{Type: LikeTargetComment, ID: commentID}
}

// Like records that a user liked a video or a comment. At most one like
// exists per (target, likedBy) pair, enforced by a composite unique key.
type Like struct {
	ID        string
	Target    LikeTarget
	LikedBy   string
	CreatedAt time.Time
}

// Subscription records that a subscriber follows a channel. At most one
// subscription exists per (subscriber, channel) pair.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// Playlist is a named, ordered collection of videos owned by a user.
// VideoIDs preserves insertion order and holds no duplicates.
type Playlist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	VideoIDs    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
