package repository

import (
	"context"
	"errors"
	"time"

	"tourbook/internal/domain"

	"gorm.io/gorm"
)

type TourRepository struct {
	db *gorm.DB
}

func NewTourRepository(db *gorm.DB) *TourRepository {
	return &TourRepository{db: db}
}

func (r *TourRepository) Create(ctx context.Context, t *domain.Tour) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TourRepository) GetByID(ctx context.Context, id int64) (*domain.Tour, error) {
	var t domain.Tour
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TourRepository) GetWithDepartures(ctx context.Context, id int64) (*domain.Tour, error) {
	var t domain.Tour
	err := r.db.WithContext(ctx).
		Preload("Departures", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_time ASC")
		}).
		Where("id = ?", id).
		Take(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TourRepository) ListPublished(ctx context.Context, limit, offset int) ([]domain.Tour, error) {
	var tours []domain.Tour
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.TourPublished)).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&tours).Error
	return tours, err
}

func (r *TourRepository) UpdateStatus(ctx context.Context, id int64, status domain.TourStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Tour{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateDeparture fixes the seat capacity at creation time; booked starts at
// zero and is owned by the ledger from then on.
func (r *TourRepository) CreateDeparture(ctx context.Context, d *domain.TourDeparture) error {
	d.Booked = 0
	now := time.Now().UTC()
	d.Active = d.Running(now)
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *TourRepository) GetDeparture(ctx context.Context, id int64) (*domain.TourDeparture, error) {
	var d domain.TourDeparture
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ActiveTourIDs lists tours with a departure currently underway. Operators
// are auto-joined to these rooms on the real-time channel.
func (r *TourRepository) ActiveTourIDs(ctx context.Context, now time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT DISTINCT tour_id FROM tour_departures WHERE start_time <= ? AND end_time >= ?`,
		now, now,
	).Scan(&ids).Error
	return ids, err
}

// SweepActiveFlags recomputes the derived active flag from the departure
// window. Touches nothing else; in particular it never writes booked.
func (r *TourRepository) SweepActiveFlags(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE tour_departures
		    SET active = (start_time <= ? AND end_time >= ?), updated_at = ?
		  WHERE active <> (start_time <= ? AND end_time >= ?)`,
		now, now, now, now, now,
	)
	return res.RowsAffected, res.Error
}
