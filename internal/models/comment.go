package models

import (
	"time"
)

// CommentContentMaxLen is the maximum comment length in characters.
const CommentContentMaxLen = 2000

// Comment is a remark on a post. Replies reference a root comment on the same post.
type Comment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostID     uint       `gorm:"not null;index" json:"post_id"`
	ParentID   *uint      `gorm:"index" json:"parent_id,omitempty"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	IsActive   bool       `gorm:"not null;index" json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`
	EditedByID *uint      `json:"edited_by_id,omitempty"`

	Replies []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

// IsEdited reports whether the comment content was changed after creation.
func (c *Comment) IsEdited() bool {
	return c.EditedAt != nil
}

// MarkEdited stamps the edit time and editor.
func (c *Comment) MarkEdited(editorID uint, at time.Time) {
	c.EditedAt = &at
	c.EditedByID = &editorID
}
