package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"chattym/internal/models"
	"chattym/internal/observability"
	"chattym/internal/repository"
	"chattym/internal/validation"
)

const (
	InboxPageSize      = 30
	navRecentLimit     = 5
	notParticipantText = "You are not a participant of this conversation"
)

type MessagingService struct {
	repo     repository.MessagingRepository
	userRepo repository.UserRepository
	notifier Notifier
	now      func() time.Time
}

type SendMessageInput struct {
	UserID         uint   `json:"-" form:"-"`
	ConversationID uint   `json:"-" form:"-"`
	Content        string `json:"content" form:"content" validate:"notblank,max=4000"`
}

type CreateGroupInput struct {
	CreatorID uint   `json:"-" form:"-"`
	Title     string `json:"title" form:"title" validate:"max=200"`
	MemberIDs []uint `json:"member_ids" form:"member_ids" validate:"required,min=1,dive,gt=0"`
}

// ConversationSummary is an inbox or nav row.
type ConversationSummary struct {
	ID           uint                  `json:"id"`
	Title        string                `json:"title"`
	CreatedAt    time.Time             `json:"created_at"`
	Participants []*models.UserSummary `json:"participants"`
	OtherUser    *models.UserSummary   `json:"other_user,omitempty"`
	LastMessage  *MessageView          `json:"last_message"`
	Unread       int64                 `json:"unread"`
}

// ConversationDetail is the conversation page payload.
type ConversationDetail struct {
	ID           uint                  `json:"id"`
	Title        string                `json:"title"`
	CreatedAt    time.Time             `json:"created_at"`
	Participants []*models.UserSummary `json:"participants"`
	Messages     []MessageView         `json:"messages"`
}

// NavSummary feeds the messaging badge and dropdown.
type NavSummary struct {
	UnreadCount int64                 `json:"unread_messages_count"`
	Recent      []ConversationSummary `json:"recent_conversations"`
}

func NewMessagingService(
	repo repository.MessagingRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
) *MessagingService {
	return &MessagingService{repo: repo, userRepo: userRepo, notifier: notifier, now: time.Now}
}

// StartDM returns the direct conversation between the two users, creating
// it on first contact. created reports whether a new one was made.
func (s *MessagingService) StartDM(ctx context.Context, initiatorID, otherID uint) (*models.Conversation, bool, error) {
	span, ctx := observability.StartServiceSpan(ctx, "MessagingService", "StartDM")
	defer span.End()

	if initiatorID == otherID {
		return nil, false, models.NewValidationError("Cannot start chat with yourself")
	}
	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, false, err
	}
	if !other.IsActive {
		return nil, false, models.NewNotFoundError("User", otherID)
	}

	conv, created, err := s.repo.StartDirect(ctx, initiatorID, otherID)
	if err != nil {
		span.SetError(err)
		return nil, false, err
	}
	return conv, created, nil
}

func (s *MessagingService) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.Conversation, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	seen := map[uint]bool{in.CreatorID: true}
	members := make([]uint, 0, len(in.MemberIDs))
	for _, id := range in.MemberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}
	if len(members) == 0 {
		return nil, validation.FieldError("member_ids", "Add at least one other member.")
	}

	users, err := s.userRepo.GetByIDs(ctx, members)
	if err != nil {
		return nil, err
	}
	active := 0
	for _, u := range users {
		if u.IsActive {
			active++
		}
	}
	if active != len(members) {
		return nil, validation.FieldError("member_ids", "Unknown or inactive user.")
	}

	return s.repo.CreateGroup(ctx, in.Title, in.CreatorID, members)
}

// requireParticipant returns NOT_FOUND for a missing conversation and
// FORBIDDEN when the user is not an active participant.
func (s *MessagingService) requireParticipant(ctx context.Context, conversationID, userID uint) (*models.Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return nil, models.NewForbiddenError(notParticipantText)
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, models.NewForbiddenError(notParticipantText)
	}
	return conv, nil
}

// Detail returns the conversation and its messages and marks it read.
func (s *MessagingService) Detail(ctx context.Context, conversationID, userID uint) (*ConversationDetail, error) {
	conv, err := s.requireParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkRead(ctx, conversationID, userID, s.now()); err != nil {
		return nil, err
	}

	detail := &ConversationDetail{
		ID:           conv.ID,
		Title:        conv.Title,
		CreatedAt:    conv.CreatedAt,
		Participants: participantSummaries(conv),
		Messages:     make([]MessageView, 0, len(msgs)),
	}
	for i := range msgs {
		detail.Messages = append(detail.Messages, *toMessageView(&msgs[i]))
	}
	return detail, nil
}

// Send stores a message and notifies every other active participant.
func (s *MessagingService) Send(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if _, err := s.requireParticipant(ctx, in.ConversationID, in.UserID); err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.UserID,
		Content:        in.Content,
		CreatedAt:      s.now(),
	}
	if err := s.repo.SendMessage(ctx, msg); err != nil {
		return nil, err
	}

	recipients, err := s.repo.ActiveParticipantIDs(ctx, in.ConversationID)
	if err != nil {
		observability.NotificationFailures.WithLabelValues("recipients").Inc()
		return msg, nil
	}
	for _, id := range recipients {
		if id == in.UserID {
			continue
		}
		notify(ctx, s.notifier, NotifyInput{
			RecipientID: id,
			ActorID:     in.UserID,
			Verb:        models.VerbSentMessage,
			Target:      models.MessageTarget(msg.ID),
			Data:        models.NotificationData{"conversation_id": in.ConversationID},
		})
	}
	return msg, nil
}

func (s *MessagingService) MarkRead(ctx context.Context, conversationID, userID uint) error {
	if _, err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, conversationID, userID, s.now())
}

// UnreadCountFor is zero for users outside the conversation.
func (s *MessagingService) UnreadCountFor(ctx context.Context, conversationID, userID uint) (int64, error) {
	return s.repo.UnreadCount(ctx, conversationID, userID)
}

// DeleteMessage soft-deletes a message. Only its sender may do so.
func (s *MessagingService) DeleteMessage(ctx context.Context, conversationID, messageID, userID uint) error {
	if _, err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.ConversationID != conversationID {
		return models.NewNotFoundError("Message", messageID)
	}
	if msg.SenderID != userID {
		return models.NewForbiddenError(models.PermissionDeniedText)
	}
	return s.repo.SoftDeleteMessage(ctx, messageID)
}

func (s *MessagingService) Leave(ctx context.Context, conversationID, userID uint) error {
	if _, err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}
	return s.repo.Leave(ctx, conversationID, userID)
}

func (s *MessagingService) Inbox(ctx context.Context, userID uint, page int) (*PageResult[ConversationSummary], error) {
	convs, total, err := s.repo.Inbox(ctx, userID, repository.NewPage(page, InboxPageSize))
	if err != nil {
		return nil, err
	}
	rows, err := s.summaries(ctx, convs, userID)
	if err != nil {
		return nil, err
	}
	return newPageResult(rows, total, page, InboxPageSize), nil
}

func (s *MessagingService) NavSummary(ctx context.Context, userID uint) (*NavSummary, error) {
	total, err := s.repo.TotalUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	convs, err := s.repo.RecentConversations(ctx, userID, navRecentLimit)
	if err != nil {
		return nil, err
	}
	rows, err := s.summaries(ctx, convs, userID)
	if err != nil {
		return nil, err
	}
	return &NavSummary{UnreadCount: total, Recent: rows}, nil
}

func (s *MessagingService) summaries(ctx context.Context, convs []models.Conversation, userID uint) ([]ConversationSummary, error) {
	rows := make([]ConversationSummary, 0, len(convs))
	for i := range convs {
		conv := &convs[i]
		last, err := s.repo.LastMessage(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		unread, err := s.repo.UnreadCount(ctx, conv.ID, userID)
		if err != nil {
			return nil, err
		}
		row := ConversationSummary{
			ID:           conv.ID,
			Title:        conv.Title,
			CreatedAt:    conv.CreatedAt,
			Participants: participantSummaries(conv),
			LastMessage:  toMessageView(last),
			Unread:       unread,
		}
		for _, p := range conv.Participants {
			if p.UserID != userID {
				row.OtherUser = summarize(p.User)
				break
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func participantSummaries(conv *models.Conversation) []*models.UserSummary {
	out := make([]*models.UserSummary, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		if s := summarize(p.User); s != nil {
			out = append(out, s)
		}
	}
	return out
}
