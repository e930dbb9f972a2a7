package repository

import (
	"context"
	"errors"
	"time"

	"chattym/internal/models"
	"chattym/internal/observability"

	"gorm.io/gorm"
)

// MessagingRepository persists conversations, participants and messages.
type MessagingRepository interface {
	FindDirect(ctx context.Context, userA, userB uint) (*models.Conversation, error)
	StartDirect(ctx context.Context, initiatorID, otherID uint) (*models.Conversation, bool, error)
	CreateGroup(ctx context.Context, title string, creatorID uint, memberIDs []uint) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uint) (*models.Conversation, error)
	GetParticipant(ctx context.Context, conversationID, userID uint) (*models.Participant, error)
	ActiveParticipantIDs(ctx context.Context, conversationID uint) ([]uint, error)
	ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error)
	LastMessage(ctx context.Context, conversationID uint) (*models.Message, error)
	SendMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id uint) (*models.Message, error)
	SoftDeleteMessage(ctx context.Context, id uint) error
	MarkRead(ctx context.Context, conversationID, userID uint, at time.Time) error
	UnreadCount(ctx context.Context, conversationID, userID uint) (int64, error)
	TotalUnread(ctx context.Context, userID uint) (int64, error)
	Inbox(ctx context.Context, userID uint, page Page) ([]models.Conversation, int64, error)
	RecentConversations(ctx context.Context, userID uint, limit int) ([]models.Conversation, error)
	Leave(ctx context.Context, conversationID, userID uint) error
}

type messagingRepository struct {
	db *gorm.DB
}

// NewMessagingRepository creates a new messaging repository
func NewMessagingRepository(db *gorm.DB) MessagingRepository {
	return &messagingRepository{db: db}
}

const directLookupSQL = `
SELECT p1.conversation_id FROM participants p1
JOIN participants p2 ON p2.conversation_id = p1.conversation_id
WHERE p1.user_id = ? AND p1.is_active = ? AND p2.user_id = ? AND p2.is_active = ?
AND (SELECT COUNT(*) FROM participants p3 WHERE p3.conversation_id = p1.conversation_id AND p3.is_active = ?) = 2
ORDER BY p1.conversation_id
LIMIT 1`

func findDirectID(tx *gorm.DB, userA, userB uint) (uint, error) {
	var ids []uint
	if err := tx.Raw(directLookupSQL, userA, true, userB, true, true).Scan(&ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

// FindDirect returns the two-person conversation shared by both users, or nil.
func (r *messagingRepository) FindDirect(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	id, err := findDirectID(r.db.WithContext(ctx), userA, userB)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if id == 0 {
		return nil, nil
	}
	return r.GetConversation(ctx, id)
}

// StartDirect looks up the direct conversation between the two users and
// creates it when missing. The lookup and the insert share a transaction.
// The initiator starts with everything read.
func (r *messagingRepository) StartDirect(ctx context.Context, initiatorID, otherID uint) (*models.Conversation, bool, error) {
	var (
		convID  uint
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := findDirectID(tx, initiatorID, otherID)
		if err != nil {
			return err
		}
		if id != 0 {
			convID = id
			return nil
		}

		now := time.Now()
		conv := models.Conversation{}
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		participants := []models.Participant{
			{ConversationID: conv.ID, UserID: initiatorID, IsActive: true, LastRead: &now},
			{ConversationID: conv.ID, UserID: otherID, IsActive: true},
		}
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}
		convID = conv.ID
		created = true
		return nil
	})
	if err != nil {
		return nil, false, wrapInternal(err)
	}

	conv, err := r.GetConversation(ctx, convID)
	if err != nil {
		return nil, false, err
	}
	return conv, created, nil
}

func (r *messagingRepository) CreateGroup(ctx context.Context, title string, creatorID uint, memberIDs []uint) (*models.Conversation, error) {
	var convID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv := models.Conversation{Title: title}
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		now := time.Now()
		participants := []models.Participant{{ConversationID: conv.ID, UserID: creatorID, IsActive: true, LastRead: &now}}
		for _, id := range memberIDs {
			if id == creatorID {
				continue
			}
			participants = append(participants, models.Participant{ConversationID: conv.ID, UserID: id, IsActive: true})
		}
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}
		convID = conv.ID
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	return r.GetConversation(ctx, convID)
}

// GetConversation loads a conversation with its active participants.
func (r *messagingRepository) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants", "is_active = ?", true).
		Preload("Participants.User").
		First(&conv, id).Error
	if err != nil {
		return nil, wrapLookupError(err, "Conversation", id)
	}
	return &conv, nil
}

func (r *messagingRepository) GetParticipant(ctx context.Context, conversationID, userID uint) (*models.Participant, error) {
	var p models.Participant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Take(&p).Error
	if err != nil {
		return nil, wrapLookupError(err, "Participant", userID)
	}
	return &p, nil
}

func (r *messagingRepository) ActiveParticipantIDs(ctx context.Context, conversationID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("conversation_id = ? AND is_active = ?", conversationID, true).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, wrapInternal(err)
}

// ListMessages returns the non-deleted messages oldest first.
func (r *messagingRepository) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ? AND is_deleted = ?", conversationID, false).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

// LastMessage returns nil when the conversation has no visible messages.
func (r *messagingRepository) LastMessage(ctx context.Context, conversationID uint) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ? AND is_deleted = ?", conversationID, false).
		Order("created_at DESC, id DESC").
		Take(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

// SendMessage inserts the message and advances the sender's watermark in
// one transaction.
func (r *messagingRepository) SendMessage(ctx context.Context, msg *models.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
		if err := tx.Omit("Sender").Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Participant{}).
			Where("conversation_id = ? AND user_id = ?", msg.ConversationID, msg.SenderID).
			Update("last_read", msg.CreatedAt).Error
	})
	if err != nil {
		return wrapInternal(err)
	}
	observability.MessagesSent.Inc()
	return nil
}

func (r *messagingRepository) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, wrapLookupError(err, "Message", id)
	}
	return &msg, nil
}

func (r *messagingRepository) SoftDeleteMessage(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Update("is_deleted", true)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Message", id)
	}
	return nil
}

func (r *messagingRepository) MarkRead(ctx context.Context, conversationID, userID uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("last_read", at)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Participant", userID)
	}
	return nil
}

// UnreadCount counts messages from other senders newer than the user's
// watermark. A user who is not a participant has nothing unread.
func (r *messagingRepository) UnreadCount(ctx context.Context, conversationID, userID uint) (int64, error) {
	p, err := r.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return 0, nil
		}
		return 0, err
	}

	q := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ?", conversationID, userID)
	if p.LastRead != nil {
		q = q.Where("created_at > ?", *p.LastRead)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

const totalUnreadSQL = `
SELECT COUNT(*) FROM messages m
JOIN participants p ON p.conversation_id = m.conversation_id
WHERE p.user_id = ? AND p.is_active = ? AND m.sender_id <> ?
AND (p.last_read IS NULL OR m.created_at > p.last_read)`

// TotalUnread sums UnreadCount over the user's active participations.
func (r *messagingRepository) TotalUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(totalUnreadSQL, userID, true, userID).Row().Scan(&count)
	return count, wrapInternal(err)
}

const lastActivityExpr = "(SELECT MAX(m.created_at) FROM messages m WHERE m.conversation_id = conversations.id AND m.is_deleted = false)"

func (r *messagingRepository) memberOf(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Conversation{}).
		Joins("JOIN participants ON participants.conversation_id = conversations.id AND participants.user_id = ? AND participants.is_active = ?", userID, true)
}

// Inbox orders conversations by their latest message, conversations
// without messages last, then by creation time.
func (r *messagingRepository) Inbox(ctx context.Context, userID uint, page Page) ([]models.Conversation, int64, error) {
	var total int64
	if err := r.memberOf(ctx, userID).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var convs []models.Conversation
	db := r.memberOf(ctx, userID).
		Preload("Participants", "is_active = ?", true).
		Preload("Participants.User").
		Order(lastActivityExpr + " IS NULL").
		Order(lastActivityExpr + " DESC").
		Order("conversations.created_at DESC").
		Order("conversations.id DESC")
	if err := page.apply(db).Find(&convs).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return convs, total, nil
}

func (r *messagingRepository) RecentConversations(ctx context.Context, userID uint, limit int) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.memberOf(ctx, userID).
		Preload("Participants", "is_active = ?", true).
		Preload("Participants.User").
		Order("conversations.created_at DESC").
		Order("conversations.id DESC").
		Limit(limit).
		Find(&convs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return convs, nil
}

func (r *messagingRepository) Leave(ctx context.Context, conversationID, userID uint) error {
	result := r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("conversation_id = ? AND user_id = ? AND is_active = ?", conversationID, userID, true).
		Update("is_active", false)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Participant", userID)
	}
	return nil
}
