package models

import (
	"time"
)

// Post limits mirror the column sizes.
const (
	PostTitleMaxLen = 100
	PostTextMaxLen  = 2500
)

// Post represents a post authored by a user.
// LikesCount is a denormalized counter maintained atomically by the like toggle.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title      string    `gorm:"size:100;not null" json:"title"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Image      string    `json:"image"`
	LikesCount int       `gorm:"not null;default:0" json:"likes_count"`
	IsActive   bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// CommentsCount is not persisted; computed at query time
	CommentsCount int64 `gorm:"->;-:migration" json:"comments_count"`
	// Liked indicates whether the requesting user liked this post (computed)
	Liked bool `gorm:"->;-:migration" json:"liked"`
}
