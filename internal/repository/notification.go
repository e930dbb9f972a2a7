package repository

import (
	"context"

	"chattym/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository stores the per-user notification feed.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	Recent(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	List(ctx context.Context, recipientID uint, page Page) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uint) error
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create writes the notification in its own transaction.
func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Actor").Create(n).Error
	})
	return wrapInternal(err)
}

func (r *notificationRepository) Recent(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	var items []models.Notification
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID uint, page Page) ([]models.Notification, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var items []models.Notification
	db := r.db.WithContext(ctx).
		Preload("Actor").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC")
	if err := page.apply(db).Find(&items).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return items, total, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND unread = ?", recipientID, true).
		Count(&count).Error
	return count, wrapInternal(err)
}

// MarkRead flips one notification to read. Notifications owned by someone
// else are reported as missing.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID uint) error {
	var n models.Notification
	err := r.db.WithContext(ctx).Select("id").
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Take(&n).Error
	if err != nil {
		return wrapLookupError(err, "Notification", id)
	}
	if err := r.db.WithContext(ctx).Model(&n).Update("unread", false).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND unread = ?", recipientID, true).
		Update("unread", false)
	return result.RowsAffected, wrapInternal(result.Error)
}
