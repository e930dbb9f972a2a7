package service

import (
	"context"
	"log/slog"

	"chattym/internal/featureflags"
	"chattym/internal/middleware"
	"chattym/internal/models"
	"chattym/internal/observability"
	"chattym/internal/repository"

	"github.com/goccy/go-json"
)

const (
	RecentNotificationsLimit = 8
	NotificationsPageSize    = 20
)

// Publisher delivers a payload to a user's live connections.
type Publisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

// Notifier records a side-effect notification. Implementations must never
// fail the caller.
type Notifier interface {
	Notify(ctx context.Context, in NotifyInput)
}

// NotifyInput describes one notification event.
type NotifyInput struct {
	RecipientID uint
	ActorID     uint
	Verb        string
	Target      *models.NotificationTarget
	Data        models.NotificationData
}

// RecentNotifications is the dropdown payload.
type RecentNotifications struct {
	Items       []NotificationView `json:"items"`
	UnreadCount int64              `json:"unread_count"`
}

type NotificationService struct {
	repo      repository.NotificationRepository
	userRepo  repository.UserRepository
	publisher Publisher
	flags     *featureflags.Manager
}

func NewNotificationService(
	repo repository.NotificationRepository,
	userRepo repository.UserRepository,
	publisher Publisher,
	flags *featureflags.Manager,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		userRepo:  userRepo,
		publisher: publisher,
		flags:     flags,
	}
}

// Notify stores a notification for the recipient unless the actor is the
// recipient. Errors are logged and counted, never returned.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) {
	if in.RecipientID == 0 || in.ActorID == in.RecipientID {
		return
	}

	n := &models.Notification{
		RecipientID: in.RecipientID,
		Verb:        in.Verb,
		Data:        in.Data,
		Unread:      true,
	}
	if in.ActorID != 0 {
		actorID := in.ActorID
		n.ActorID = &actorID
	}
	n.SetTarget(in.Target)
	if n.Data == nil {
		n.Data = models.NotificationData{}
	}

	if err := s.repo.Create(ctx, n); err != nil {
		observability.NotificationFailures.WithLabelValues("persist").Inc()
		middleware.Logger.ErrorContext(ctx, "notification create failed",
			slog.Uint64("recipient_id", uint64(in.RecipientID)),
			slog.String("verb", in.Verb),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.NotificationsCreated.WithLabelValues(in.Verb).Inc()

	s.push(ctx, n)
}

func (s *NotificationService) push(ctx context.Context, n *models.Notification) {
	if s.publisher == nil || !s.flags.Enabled(featureflags.RealtimePush, n.RecipientID) {
		return
	}
	if n.ActorID != nil && s.userRepo != nil {
		if actor, err := s.userRepo.GetByID(ctx, *n.ActorID); err == nil {
			n.Actor = actor
		}
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":    "notification",
		"payload": toNotificationView(n),
	})
	if err == nil {
		err = s.publisher.PublishUser(ctx, n.RecipientID, string(payload))
	}
	if err != nil {
		observability.NotificationFailures.WithLabelValues("push").Inc()
		middleware.Logger.WarnContext(ctx, "notification push failed",
			slog.Uint64("recipient_id", uint64(n.RecipientID)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *NotificationService) Recent(ctx context.Context, userID uint) (*RecentNotifications, error) {
	items, err := s.repo.Recent(ctx, userID, RecentNotificationsLimit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]NotificationView, 0, len(items))
	for i := range items {
		views = append(views, toNotificationView(&items[i]))
	}
	return &RecentNotifications{Items: views, UnreadCount: unread}, nil
}

func (s *NotificationService) List(ctx context.Context, userID uint, page int) (*PageResult[NotificationView], error) {
	items, total, err := s.repo.List(ctx, userID, repository.NewPage(page, NotificationsPageSize))
	if err != nil {
		return nil, err
	}
	views := make([]NotificationView, 0, len(items))
	for i := range items {
		views = append(views, toNotificationView(&items[i]))
	}
	return newPageResult(views, total, page, NotificationsPageSize), nil
}

// MarkRead returns the remaining unread count.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) (int64, error) {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return 0, err
	}
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	_, err := s.repo.MarkAllRead(ctx, userID)
	return err
}

func notify(ctx context.Context, n Notifier, in NotifyInput) {
	if n != nil {
		n.Notify(ctx, in)
	}
}
