package catalog

import (
	"context"
	"errors"
	"time"

	"tourbook/internal/domain"
	"tourbook/internal/repository"
)

var ErrValidation = errors.New("validation failed")

type Service struct {
	tours *repository.TourRepository
}

func NewService(tours *repository.TourRepository) *Service {
	return &Service{tours: tours}
}

func (s *Service) ListPublished(ctx context.Context, limit, offset int) ([]domain.Tour, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.tours.ListPublished(ctx, limit, offset)
}

func (s *Service) GetTour(ctx context.Context, id int64) (*TourDetail, error) {
	t, err := s.tours.GetWithDepartures(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &TourDetail{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Region:      t.Region,
		UnitPrice:   t.UnitPrice,
		Status:      string(t.Status),
		Departures:  make([]DepartureView, 0, len(t.Departures)),
	}
	for _, d := range t.Departures {
		detail.Departures = append(detail.Departures, DepartureView{
			ID:        d.ID,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
			Capacity:  d.Capacity,
			SpotsLeft: d.Remaining(),
			Active:    d.Active,
		})
	}
	return detail, nil
}

func (s *Service) CreateTour(ctx context.Context, req CreateTourRequest) (*domain.Tour, error) {
	t := &domain.Tour{
		Title:       req.Title,
		Description: req.Description,
		Region:      req.Region,
		UnitPrice:   req.UnitPrice,
		Status:      domain.TourDraft,
	}
	if err := s.tours.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) UpdateTourStatus(ctx context.Context, id int64, status string) error {
	return s.tours.UpdateStatus(ctx, id, domain.TourStatus(status))
}

func (s *Service) CreateDeparture(ctx context.Context, tourID int64, req CreateDepartureRequest) (*domain.TourDeparture, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrValidation
	}
	if req.StartTime.Before(time.Now().UTC()) {
		return nil, ErrValidation
	}

	if _, err := s.tours.GetByID(ctx, tourID); err != nil {
		return nil, err
	}

	d := &domain.TourDeparture{
		TourID:    tourID,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
		Capacity:  req.Capacity,
	}
	if err := s.tours.CreateDeparture(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
