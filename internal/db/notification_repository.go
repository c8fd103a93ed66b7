package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/murmurapp/murmur/internal/models"
)

// NotificationRepository provides notification-related database operations
type NotificationRepository struct {
	*Repository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(repo *Repository) *NotificationRepository {
	return &NotificationRepository{Repository: repo}
}

// Create creates a notification
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// ListForUser returns up to limit notifications for a user with IDs strictly
// below beforeID, newest first. beforeID <= 0 starts from the newest.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID, beforeID int64, limit int) ([]*models.Notification, error) {
	query := r.db.WithContext(ctx).
		Where("dst_id = ?", userID)
	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}

	var notifications []*models.Notification
	if err := query.Order("id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications for a user
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("dst_id = ? AND read_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead marks all notifications up to and including lastID as read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, lastID int64) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("dst_id = ? AND id <= ? AND read_at IS NULL", userID, lastID).
		UpdateColumn("read_at", sql.NullTime{Time: time.Now().UTC(), Valid: true}).Error
}
