package service

import (
	"context"
	"time"

	"chattym/internal/models"
	"chattym/internal/repository"
)

const SubscriptionsPageSize = 30

type SubscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
	notifier Notifier
}

// ToggleResult is the follow toggle response.
type ToggleResult struct {
	IsSubscribed   bool                      `json:"is_subscribed"`
	Action         models.SubscriptionAction `json:"action"`
	FollowersCount int64                     `json:"followers_count"`
}

// Connection is one row of a followers or following list.
type Connection struct {
	User  *models.UserSummary `json:"user"`
	Since time.Time           `json:"since"`
}

func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, userRepo: userRepo, notifier: notifier}
}

func (s *SubscriptionService) Toggle(ctx context.Context, follower *models.User, targetID uint) (*ToggleResult, error) {
	if follower.ID == targetID {
		return nil, models.NewValidationError("You cannot subscribe to yourself")
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive {
		return nil, models.NewNotFoundError("User", targetID)
	}

	action, err := s.subRepo.Toggle(ctx, follower.ID, targetID)
	if err != nil {
		return nil, err
	}
	followers, err := s.subRepo.CountFollowers(ctx, targetID)
	if err != nil {
		return nil, err
	}

	subscribed := action == models.SubscriptionActionSubscribed
	if subscribed {
		notify(ctx, s.notifier, NotifyInput{
			RecipientID: targetID,
			ActorID:     follower.ID,
			Verb:        models.VerbStartedFollow,
			Target:      models.UserTarget(follower.ID),
			Data: models.NotificationData{
				"follower_id":       follower.ID,
				"follower_username": follower.Username,
			},
		})
	}

	return &ToggleResult{IsSubscribed: subscribed, Action: action, FollowersCount: followers}, nil
}

func (s *SubscriptionService) Followers(ctx context.Context, userID uint, page int) (*PageResult[Connection], error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	subs, total, err := s.subRepo.Followers(ctx, userID, repository.NewPage(page, SubscriptionsPageSize))
	if err != nil {
		return nil, err
	}
	out := make([]Connection, 0, len(subs))
	for _, sub := range subs {
		out = append(out, Connection{User: summarize(sub.Follower), Since: sub.CreatedAt})
	}
	return newPageResult(out, total, page, SubscriptionsPageSize), nil
}

func (s *SubscriptionService) Following(ctx context.Context, userID uint, page int) (*PageResult[Connection], error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	subs, total, err := s.subRepo.Following(ctx, userID, repository.NewPage(page, SubscriptionsPageSize))
	if err != nil {
		return nil, err
	}
	out := make([]Connection, 0, len(subs))
	for _, sub := range subs {
		out = append(out, Connection{User: summarize(sub.Following), Since: sub.CreatedAt})
	}
	return newPageResult(out, total, page, SubscriptionsPageSize), nil
}
