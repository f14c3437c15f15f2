package itinerary

import (
	"context"

	"tourbook/internal/domain"
	"tourbook/internal/modules/notification"
	"tourbook/internal/modules/travellers"
)

// Store persists itinerary items and emergency alerts.
// Implemented by repository.ItineraryRepository.
type Store interface {
	CreateItem(ctx context.Context, item *domain.ItineraryItem) error
	GetItem(ctx context.Context, id int64) (*domain.ItineraryItem, error)
	ListItems(ctx context.Context, tourID int64) ([]domain.ItineraryItem, error)
	UpdateItem(ctx context.Context, item *domain.ItineraryItem) error
	DeleteItem(ctx context.Context, id int64) error

	CreateAlert(ctx context.Context, a *domain.EmergencyAlert) error
	GetAlert(ctx context.Context, id int64) (*domain.EmergencyAlert, error)
	ListAlerts(ctx context.Context, tourID int64, activeOnly bool) ([]domain.EmergencyAlert, error)
	DeactivateAlert(ctx context.Context, id int64) (alreadyInactive bool, err error)
}

// TourSource validates that the target tour exists.
type TourSource interface {
	GetByID(ctx context.Context, id int64) (*domain.Tour, error)
}

// AudienceResolver is the travellers resolver: the single source of truth
// for both fan-out audiences and itinerary read access.
type AudienceResolver interface {
	Resolve(ctx context.Context, tourID int64, w travellers.Window) ([]domain.ActiveTraveller, error)
	IsActiveTraveller(ctx context.Context, userID, tourID int64) (bool, error)
}

// FanOutEngine is notification.Service.
type FanOutEngine interface {
	FanOut(ctx context.Context, recipients []domain.ActiveTraveller, ev notification.Event) error
}

// TourBroadcaster pushes to the unscoped tour room so operators watching the
// tour live see itinerary edits too. Implemented by realtime.Hub.
type TourBroadcaster interface {
	EmitToTour(tourID int64, event string, payload any)
}
