package service

import (
	"context"

	"chattym/internal/middleware"
	"chattym/internal/models"
	"chattym/internal/repository"
)

type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
	notifier Notifier
}

// LikeResult is the toggle response.
type LikeResult struct {
	Action     models.LikeAction `json:"action"`
	LikesCount int               `json:"likes_count"`
}

func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository, notifier Notifier) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo, notifier: notifier}
}

// ToggleLike flips the viewer's like. A new like notifies the post owner
// after the toggle has committed.
func (s *LikeService) ToggleLike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	action, count, err := s.likeRepo.Toggle(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if action == models.LikeActionLiked {
		post, err := s.postRepo.GetByID(ctx, postID)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "like notification skipped", "post_id", postID, "error", err.Error())
		} else {
			notify(ctx, s.notifier, NotifyInput{
				RecipientID: post.UserID,
				ActorID:     userID,
				Verb:        models.VerbLikedPost,
				Target:      models.PostTarget(postID),
				Data:        models.NotificationData{"post_id": postID},
			})
		}
	}

	return &LikeResult{Action: action, LikesCount: count}, nil
}

// RecountLikes rewrites every post's counter from the likes table.
func (s *LikeService) RecountLikes(ctx context.Context, dryRun bool, report func(postID uint, before, after int)) (int, error) {
	changed, err := s.likeRepo.RecountAll(ctx, dryRun, report)
	if err != nil {
		return 0, err
	}
	middleware.Logger.InfoContext(ctx, "likes recounted", "changed", changed, "dry_run", dryRun)
	return changed, nil
}
