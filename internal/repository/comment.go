package repository

import (
	"context"
	"time"

	"chattym/internal/cache"
	"chattym/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string, editorID uint, at time.Time) error
	Deactivate(ctx context.Context, id uint) error
	ListForPost(ctx context.Context, postID uint) ([]models.Comment, error)
	CountActiveByPost(ctx context.Context, postID uint) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Replies", "User").Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, wrapLookupError(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string, editorID uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"content":      content,
		"edited_at":    at,
		"edited_by_id": editorID,
	})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) Deactivate(ctx context.Context, id uint) error {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Select("id", "post_id").First(&comment, id).Error; err != nil {
		return wrapLookupError(err, "Comment", id)
	}
	if err := r.db.WithContext(ctx).Model(&comment).Update("is_active", false).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

// ListForPost returns active root comments oldest first, each with its
// active replies oldest first.
func (r *commentRepository) ListForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("created_at ASC, id ASC")
		}).
		Preload("Replies.User").
		Where("post_id = ? AND parent_id IS NULL AND is_active = ?", postID, true).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountActiveByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND is_active = ?", postID, true).
		Count(&count).Error
	return count, wrapInternal(err)
}
