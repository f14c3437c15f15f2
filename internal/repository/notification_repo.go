package repository

import (
	"context"
	"time"

	"tourbook/internal/domain"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch persists one row per recipient as a single bulk insert. All or
// nothing: a partial failure rolls the whole batch back, which is what lets
// the fan-out engine report FanOutFailed cleanly.
func (r *NotificationRepository) CreateBatch(ctx context.Context, ns []domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range ns {
		ns[i].CreatedAt = now
	}

	return r.db.WithContext(ctx).Create(&ns).Error
}

func (r *NotificationRepository) GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID int64) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

// DeleteReadOlderThan is the retention sweep: only read notifications past
// the age threshold are purged, unread ones stay for pull-based recovery.
func (r *NotificationRepository) DeleteReadOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)
	res := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&domain.Notification{})
	return res.RowsAffected, res.Error
}
