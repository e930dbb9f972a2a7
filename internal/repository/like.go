package repository

import (
	"context"
	"errors"

	"chattym/internal/cache"
	"chattym/internal/middleware"
	"chattym/internal/models"
	"chattym/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository maintains like edges and the denormalized posts.likes_count.
type LikeRepository interface {
	Toggle(ctx context.Context, userID, postID uint) (models.LikeAction, int, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	RecountAll(ctx context.Context, dryRun bool, report func(postID uint, before, after int)) (int, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle creates or removes the (user, post) edge and moves the counter in
// the same transaction. Counter writes are column expressions, never
// read-modify-write. A duplicate insert means a concurrent request already
// created the edge, so the toggle falls back to removing it.
func (r *likeRepository) Toggle(ctx context.Context, userID, postID uint) (models.LikeAction, int, error) {
	var (
		action models.LikeAction
		count  int
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.Post{}).Where("id = ? AND is_active = ?", postID, true).Count(&active).Error; err != nil {
			return err
		}
		if active == 0 {
			return models.NewNotFoundError("Post", postID)
		}

		var existing models.Like
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).Take(&existing).Error
		switch {
		case err == nil:
			if err := unlike(tx, userID, postID); err != nil {
				return err
			}
			action = models.LikeActionUnliked
		case errors.Is(err, gorm.ErrRecordNotFound):
			insertErr := tx.Transaction(func(sp *gorm.DB) error {
				return sp.Create(&models.Like{UserID: userID, PostID: postID}).Error
			})
			switch {
			case insertErr == nil:
				if err := tx.Model(&models.Post{}).Where("id = ?", postID).
					UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error; err != nil {
					return err
				}
				action = models.LikeActionLiked
			case isUniqueConstraintError(insertErr):
				observability.UniqueRaceRecoveries.WithLabelValues("like").Inc()
				middleware.Logger.WarnContext(ctx, "like insert raced, treating as existing",
					"user_id", userID, "post_id", postID)
				if err := unlike(tx, userID, postID); err != nil {
					return err
				}
				action = models.LikeActionUnliked
			default:
				return insertErr
			}
		default:
			return err
		}

		return tx.Model(&models.Post{}).Select("likes_count").Where("id = ?", postID).Row().Scan(&count)
	})
	if err != nil {
		return "", 0, wrapInternal(err)
	}

	observability.LikeToggles.WithLabelValues(string(action)).Inc()
	cache.InvalidatePost(ctx, postID)
	return action, count, nil
}

// unlike removes the edge and decrements only when a row was actually deleted.
func unlike(tx *gorm.DB, userID, postID uint) error {
	result := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil
	}
	return tx.Model(&models.Post{}).
		Where("id = ? AND likes_count > 0", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count - ?", 1)).Error
}

func (r *likeRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, wrapInternal(err)
}

func (r *likeRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	ids := []uint{}
	if userID == 0 || len(postIDs) == 0 {
		return ids, nil
	}
	err := readDB(r.db).WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Order("post_id").
		Pluck("post_id", &ids).Error
	return ids, wrapInternal(err)
}

type postCount struct {
	ID         uint
	LikesCount int
	Live       int
}

// RecountAll rewrites every post's likes_count from the likes table and
// returns the number of posts whose counter changed. report is called for
// every post in id order.
func (r *likeRepository) RecountAll(ctx context.Context, dryRun bool, report func(postID uint, before, after int)) (int, error) {
	var rows []postCount
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("posts.id, posts.likes_count, (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS live").
		Order("posts.id").
		Scan(&rows).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}

	changed := 0
	for _, row := range rows {
		if report != nil {
			report(row.ID, row.LikesCount, row.Live)
		}
		if row.LikesCount == row.Live {
			continue
		}
		changed++
		if dryRun {
			continue
		}
		if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", row.ID).
			UpdateColumn("likes_count", row.Live).Error; err != nil {
			return changed, models.NewInternalError(err)
		}
		cache.InvalidatePost(ctx, row.ID)
	}
	return changed, nil
}
