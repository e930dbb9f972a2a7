package service

import (
	"fmt"
	"log/slog"
	"time"

	"chattym/internal/middleware"
	"chattym/internal/models"

	"github.com/jinzhu/copier"
)

// PageResult is one page of a paginated listing.
type PageResult[T any] struct {
	Results  []T   `json:"results"`
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func newPageResult[T any](items []T, total int64, page, size int) *PageResult[T] {
	if items == nil {
		items = []T{}
	}
	if page < 1 {
		page = 1
	}
	return &PageResult[T]{Results: items, Count: total, Page: page, PageSize: size}
}

// PostView is the public representation of a post.
type PostView struct {
	ID            uint                `json:"id"`
	Title         string              `json:"title"`
	Text          string              `json:"text"`
	Image         string              `json:"image"`
	LikesCount    int                 `json:"likes_count"`
	CommentsCount int64               `json:"comments_count"`
	Liked         bool                `json:"liked"`
	IsActive      bool                `json:"is_active"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Author        *models.UserSummary `json:"author"`
}

// CommentView is a comment with its author and, for roots, its replies.
type CommentView struct {
	ID        uint                `json:"id"`
	PostID    uint                `json:"post_id"`
	ParentID  *uint               `json:"parent_id,omitempty"`
	Content   string              `json:"content"`
	CreatedAt time.Time           `json:"created_at"`
	EditedAt  *time.Time          `json:"edited_at,omitempty"`
	Edited    bool                `json:"edited"`
	Author    *models.UserSummary `json:"author"`
	Replies   []CommentView       `json:"replies,omitempty"`
}

// MessageView is a message as shown in a conversation.
type MessageView struct {
	ID             uint                `json:"id"`
	ConversationID uint                `json:"conversation_id"`
	SenderID       uint                `json:"sender_id"`
	Sender         *models.UserSummary `json:"sender,omitempty"`
	Content        string              `json:"content"`
	CreatedAt      time.Time           `json:"created_at"`
	EditedAt       *time.Time          `json:"edited_at,omitempty"`
}

// NotificationView is a feed entry.
type NotificationView struct {
	ID        uint                       `json:"id"`
	Verb      string                     `json:"verb"`
	Actor     string                     `json:"actor"`
	CreatedAt time.Time                  `json:"created_at"`
	Unread    bool                       `json:"unread"`
	Target    *models.NotificationTarget `json:"target"`
	Data      models.NotificationData    `json:"data"`
}

// copyView fills dst from src by field name. A failed copy is logged and
// reported as false; dst keeps whatever was copied before the failure.
func copyView(dst, src any) bool {
	if err := copier.Copy(dst, src); err != nil {
		middleware.Logger.Error("view mapping failed",
			slog.String("from", fmt.Sprintf("%T", src)),
			slog.String("to", fmt.Sprintf("%T", dst)),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

func summarize(u *models.User) *models.UserSummary {
	if u == nil {
		return nil
	}
	var s models.UserSummary
	copyView(&s, u)
	return &s
}

func toPostView(p *models.Post) PostView {
	var v PostView
	copyView(&v, p)
	v.Author = summarize(p.User)
	return v
}

func toPostViews(posts []models.Post) []PostView {
	out := make([]PostView, 0, len(posts))
	for i := range posts {
		out = append(out, toPostView(&posts[i]))
	}
	return out
}

func toCommentView(c *models.Comment) CommentView {
	v := CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		EditedAt:  c.EditedAt,
		Edited:    c.IsEdited(),
		Author:    summarize(c.User),
	}
	for i := range c.Replies {
		v.Replies = append(v.Replies, toCommentView(&c.Replies[i]))
	}
	return v
}

func toMessageView(m *models.Message) *MessageView {
	if m == nil {
		return nil
	}
	var v MessageView
	copyView(&v, m)
	v.Sender = summarize(m.Sender)
	return &v
}

func toNotificationView(n *models.Notification) NotificationView {
	v := NotificationView{
		ID:        n.ID,
		Verb:      n.Verb,
		CreatedAt: n.CreatedAt,
		Unread:    n.Unread,
		Target:    n.Target(),
		Data:      n.Data,
	}
	if n.Actor != nil {
		v.Actor = n.Actor.Username
	}
	if v.Data == nil {
		v.Data = models.NotificationData{}
	}
	return v
}
