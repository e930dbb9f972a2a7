package repository

import (
	"context"
	"errors"

	"chattym/internal/middleware"
	"chattym/internal/models"
	"chattym/internal/observability"

	"gorm.io/gorm"
)

// SubscriptionRepository manages follow edges.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, followerID, followingID uint) (models.SubscriptionAction, error)
	IsSubscribed(ctx context.Context, followerID, followingID uint) (bool, error)
	Followers(ctx context.Context, userID uint, page Page) ([]models.Subscription, int64, error)
	Following(ctx context.Context, userID uint, page Page) ([]models.Subscription, int64, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Toggle flips an existing edge or creates an active one. When a concurrent
// request inserts the same pair first, the stored row is re-read and flipped
// so both requests converge on a single row.
func (r *subscriptionRepository) Toggle(ctx context.Context, followerID, followingID uint) (models.SubscriptionAction, error) {
	var action models.SubscriptionAction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		err := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Take(&sub).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			insertErr := tx.Transaction(func(sp *gorm.DB) error {
				return sp.Create(&models.Subscription{FollowerID: followerID, FollowingID: followingID, IsActive: true}).Error
			})
			if insertErr == nil {
				action = models.SubscriptionActionSubscribed
				return nil
			}
			if !isUniqueConstraintError(insertErr) {
				return insertErr
			}
			observability.UniqueRaceRecoveries.WithLabelValues("subscription").Inc()
			middleware.Logger.WarnContext(ctx, "subscription insert raced, re-reading",
				"follower_id", followerID, "following_id", followingID)
			err = tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Take(&sub).Error
		}
		if err != nil {
			return err
		}

		next := !sub.IsActive
		if err := tx.Model(&sub).Update("is_active", next).Error; err != nil {
			return err
		}
		if next {
			action = models.SubscriptionActionSubscribed
		} else {
			action = models.SubscriptionActionUnsubscribed
		}
		return nil
	})
	if err != nil {
		return "", wrapInternal(err)
	}
	return action, nil
}

func (r *subscriptionRepository) IsSubscribed(ctx context.Context, followerID, followingID uint) (bool, error) {
	if followerID == 0 {
		return false, nil
	}
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND following_id = ? AND is_active = ?", followerID, followingID, true).
		Count(&count).Error
	return count > 0, wrapInternal(err)
}

func (r *subscriptionRepository) Followers(ctx context.Context, userID uint, page Page) ([]models.Subscription, int64, error) {
	return r.edges(ctx, "following_id", "Follower", userID, page)
}

func (r *subscriptionRepository) Following(ctx context.Context, userID uint, page Page) ([]models.Subscription, int64, error) {
	return r.edges(ctx, "follower_id", "Following", userID, page)
}

func (r *subscriptionRepository) edges(ctx context.Context, column, preload string, userID uint, page Page) ([]models.Subscription, int64, error) {
	scope := func() *gorm.DB {
		return readDB(r.db).WithContext(ctx).Model(&models.Subscription{}).
			Where(column+" = ? AND is_active = ?", userID, true)
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var subs []models.Subscription
	err := page.apply(scope().Preload(preload).Order("created_at DESC, id DESC")).Find(&subs).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return subs, total, nil
}

func (r *subscriptionRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Subscription{}).
		Where("following_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, wrapInternal(err)
}

func (r *subscriptionRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, wrapInternal(err)
}
