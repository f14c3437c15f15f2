package repository

import (
	"context"
	"errors"
	"time"

	"tourbook/internal/domain"

	"gorm.io/gorm"
)

type ItineraryRepository struct {
	db *gorm.DB
}

func NewItineraryRepository(db *gorm.DB) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

func (r *ItineraryRepository) CreateItem(ctx context.Context, item *domain.ItineraryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *ItineraryRepository) GetItem(ctx context.Context, id int64) (*domain.ItineraryItem, error) {
	var item domain.ItineraryItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *ItineraryRepository) ListItems(ctx context.Context, tourID int64) ([]domain.ItineraryItem, error) {
	var items []domain.ItineraryItem
	err := r.db.WithContext(ctx).
		Where("tour_id = ?", tourID).
		Order("day ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *ItineraryRepository) UpdateItem(ctx context.Context, item *domain.ItineraryItem) error {
	item.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&domain.ItineraryItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"day":        item.Day,
			"title":      item.Title,
			"body":       item.Body,
			"location":   item.Location,
			"updated_at": item.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItineraryRepository) DeleteItem(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.ItineraryItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItineraryRepository) CreateAlert(ctx context.Context, a *domain.EmergencyAlert) error {
	a.Active = true
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ItineraryRepository) GetAlert(ctx context.Context, id int64) (*domain.EmergencyAlert, error) {
	var a domain.EmergencyAlert
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *ItineraryRepository) ListAlerts(ctx context.Context, tourID int64, activeOnly bool) ([]domain.EmergencyAlert, error) {
	q := r.db.WithContext(ctx).Where("tour_id = ?", tourID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var alerts []domain.EmergencyAlert
	err := q.Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

// DeactivateAlert flips active exactly once. The guarded update makes a
// second deactivation report alreadyInactive instead of touching the row.
func (r *ItineraryRepository) DeactivateAlert(ctx context.Context, id int64) (alreadyInactive bool, err error) {
	now := time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&domain.EmergencyAlert{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]any{"active": false, "deactivated_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&domain.EmergencyAlert{}).
		Where("id = ?", id).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	if cnt == 0 {
		return false, domain.ErrNotFound
	}
	return true, nil
}
