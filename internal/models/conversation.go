package models

import (
	"time"
)

// Messaging limits.
const (
	ConversationTitleMaxLen = 200
	MessageContentMaxLen    = 4000
)

// Conversation groups participants and their messages. A direct conversation
// is simply one with exactly two active participants.
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200" json:"title"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Participants []Participant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
	Messages     []Message     `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// Participant is a user's membership in a conversation. LastRead is the
// watermark up to which the user has read; nil means nothing read yet.
type Participant struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"not null;uniqueIndex:idx_participants_conversation_user" json:"conversation_id"`
	UserID         uint       `gorm:"not null;uniqueIndex:idx_participants_conversation_user;index" json:"user_id"`
	User           *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	LastRead       *time.Time `json:"last_read,omitempty"`
	IsActive       bool       `gorm:"not null" json:"is_active"`
	JoinedAt       time.Time  `gorm:"autoCreateTime" json:"joined_at"`
}

// Message is a single chat message. Deletion is a flag flip.
type Message struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"not null;index:idx_messages_conversation_created" json:"conversation_id"`
	SenderID       uint       `gorm:"not null;index" json:"sender_id"`
	Sender         *User      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time  `gorm:"index:idx_messages_conversation_created" json:"created_at"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	IsDeleted      bool       `gorm:"not null" json:"is_deleted"`
}
