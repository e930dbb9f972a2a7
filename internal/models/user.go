// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the ChattyM application.
// Users are never hard-deleted; deactivation flips IsActive.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"uniqueIndex;size:254;not null" json:"email,omitempty"`
	Username  string     `gorm:"size:150;not null;index" json:"username"`
	Password  string     `gorm:"not null" json:"-"`
	Bio       string     `gorm:"type:text" json:"bio"`
	Avatar    string     `json:"avatar"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	IsStaff   bool       `gorm:"not null;index" json:"is_staff"`
	IsActive  bool       `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// UserSummary is the public projection of a user embedded in other payloads.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}
