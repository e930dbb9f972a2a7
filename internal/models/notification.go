package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// NotificationVerbMaxLen is the column size for verbs.
const NotificationVerbMaxLen = 200

// Notification verbs emitted by the application.
const (
	VerbLikedPost      = "liked your post"
	VerbCommentedPost  = "commented on your post"
	VerbRepliedComment = "replied to your comment"
	VerbStartedFollow  = "started following you"
	VerbSentMessage    = "sent you a message"
)

// TargetKind identifies the entity a notification points at.
type TargetKind string

const (
	// TargetPost points at a post.
	TargetPost TargetKind = "post"
	// TargetComment points at a comment.
	TargetComment TargetKind = "comment"
	// TargetUser points at a user.
	TargetUser TargetKind = "user"
	// TargetMessage points at a message.
	TargetMessage TargetKind = "message"
)

// Valid reports whether k is one of the known target kinds.
func (k TargetKind) Valid() bool {
	switch k {
	case TargetPost, TargetComment, TargetUser, TargetMessage:
		return true
	}
	return false
}

// NotificationTarget is a tagged reference to the entity a notification is about.
type NotificationTarget struct {
	Kind TargetKind `json:"kind"`
	ID   uint       `json:"id"`
}

// PostTarget returns a target for a post.
func PostTarget(id uint) *NotificationTarget { return &NotificationTarget{Kind: TargetPost, ID: id} }

// CommentTarget returns a target for a comment.
func CommentTarget(id uint) *NotificationTarget {
	return &NotificationTarget{Kind: TargetComment, ID: id}
}

// UserTarget returns a target for a user.
func UserTarget(id uint) *NotificationTarget { return &NotificationTarget{Kind: TargetUser, ID: id} }

// MessageTarget returns a target for a message.
func MessageTarget(id uint) *NotificationTarget {
	return &NotificationTarget{Kind: TargetMessage, ID: id}
}

// NotificationData is the free-form JSON payload stored with a notification.
type NotificationData map[string]any

// Value implements driver.Valuer.
func (d NotificationData) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (d *NotificationData) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = NotificationData{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("notification data: unsupported type %T", src)
	}
	out := NotificationData{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
	}
	*d = out
	return nil
}

// Notification is an entry in a user's notification feed.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notifications_recipient_unread" json:"recipient_id"`
	ActorID     *uint            `gorm:"index" json:"actor_id,omitempty"`
	Actor       *User            `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Verb        string           `gorm:"size:200;not null" json:"verb"`
	TargetKind  *TargetKind      `gorm:"size:20" json:"-"`
	TargetID    *uint            `json:"-"`
	Data        NotificationData `gorm:"type:jsonb" json:"data"`
	Unread      bool             `gorm:"not null;index:idx_notifications_recipient_unread" json:"unread"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}

// Target returns the tagged target, or nil when the notification has none.
func (n *Notification) Target() *NotificationTarget {
	if n.TargetKind == nil || n.TargetID == nil {
		return nil
	}
	return &NotificationTarget{Kind: *n.TargetKind, ID: *n.TargetID}
}

// SetTarget stores t in the kind/id columns. A nil t clears them.
func (n *Notification) SetTarget(t *NotificationTarget) {
	if t == nil {
		n.TargetKind, n.TargetID = nil, nil
		return
	}
	kind, id := t.Kind, t.ID
	n.TargetKind, n.TargetID = &kind, &id
}
