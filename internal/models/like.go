package models

import (
	"time"
)

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeAction is the outcome of a like toggle.
type LikeAction string

const (
	// LikeActionLiked means the edge was created.
	LikeActionLiked LikeAction = "liked"
	// LikeActionUnliked means the edge was removed.
	LikeActionUnliked LikeAction = "unliked"
)
