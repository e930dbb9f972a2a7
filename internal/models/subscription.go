package models

import (
	"time"
)

// Subscription is a directed follow edge. Inactive rows are kept so a
// re-follow flips the flag instead of inserting a new row.
type Subscription struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_subscriptions_pair" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_subscriptions_pair;index" json:"following_id"`
	IsActive    bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Follower  *User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following *User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

// SubscriptionAction is the outcome of a follow toggle.
type SubscriptionAction string

const (
	// SubscriptionActionSubscribed means the edge is now active.
	SubscriptionActionSubscribed SubscriptionAction = "subscribed"
	// SubscriptionActionUnsubscribed means the edge is now inactive.
	SubscriptionActionUnsubscribed SubscriptionAction = "unsubscribed"
)
