package itinerary

import (
	"context"
	"fmt"

	"tourbook/internal/domain"
	"tourbook/internal/modules/notification"
	"tourbook/internal/modules/travellers"
	"tourbook/internal/realtime"
)

type Service struct {
	store    Store
	tours    TourSource
	resolver AudienceResolver
	fanout   FanOutEngine
	hub      TourBroadcaster
}

func NewService(store Store, tours TourSource, resolver AudienceResolver, fanout FanOutEngine, hub TourBroadcaster) *Service {
	return &Service{
		store:    store,
		tours:    tours,
		resolver: resolver,
		fanout:   fanout,
		hub:      hub,
	}
}

// CreateItem persists the item and notifies everyone currently on the tour.
// The returned error is domain.ErrFanOutFailed when the item was stored but
// the notification batch was not; the item itself is still returned.
func (s *Service) CreateItem(ctx context.Context, tourID int64, req CreateItemRequest) (*domain.ItineraryItem, error) {
	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}

	item := &domain.ItineraryItem{
		TourID:   tour.ID,
		Day:      req.Day,
		Title:    req.Title,
		Body:     req.Body,
		Location: req.Location,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, s.notifyItineraryChange(ctx, tour, item, "added")
}

func (s *Service) UpdateItem(ctx context.Context, itemID int64, req UpdateItemRequest) (*domain.ItineraryItem, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	tour, err := s.tours.GetByID(ctx, item.TourID)
	if err != nil {
		return nil, err
	}

	item.Day = req.Day
	item.Title = req.Title
	item.Body = req.Body
	item.Location = req.Location
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, s.notifyItineraryChange(ctx, tour, item, "updated")
}

func (s *Service) DeleteItem(ctx context.Context, itemID int64) error {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	tour, err := s.tours.GetByID(ctx, item.TourID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	return s.notifyItineraryChange(ctx, tour, item, "deleted")
}

// notifyItineraryChange fans out to travellers currently on the tour and
// additionally broadcasts into the tour room, so an operator watching the
// tour live sees the edit without holding a booking. Persisted notifications
// land before either push (the engine guarantees it for the per-user pushes;
// the room broadcast is issued after the engine returns).
func (s *Service) notifyItineraryChange(ctx context.Context, tour *domain.Tour, item *domain.ItineraryItem, action string) error {
	audience, err := s.resolver.Resolve(ctx, tour.ID, travellers.WindowRunning)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFanOutFailed, err)
	}

	payload := map[string]any{
		"tour_id": tour.ID,
		"action":  action,
		"item":    item,
	}

	fanErr := s.fanout.FanOut(ctx, audience, notification.Event{
		Type:            domain.NotifItineraryUpdate,
		Title:           "Itinerary updated: " + tour.Title,
		Body:            fmt.Sprintf("%s: %s (day %d)", action, item.Title, item.Day),
		TourID:          &tour.ID,
		RealtimeEvent:   realtime.EventItineraryUpdated,
		RealtimePayload: payload,
	})

	if s.hub != nil {
		s.hub.EmitToTour(tour.ID, realtime.EventItineraryUpdated, payload)
	}

	return fanErr
}

func (s *Service) ListItems(ctx context.Context, tourID, userID int64, role domain.Role) ([]domain.ItineraryItem, error) {
	if role != domain.RoleOperator {
		ok, err := s.resolver.IsActiveTraveller(ctx, userID, tourID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrForbidden
		}
	}
	return s.store.ListItems(ctx, tourID)
}

// CreateAlert stores the alert and fans it out to every traveller whose
// departure has not ended yet: persisted notification, direct per-user push
// and email, each channel independent of the others.
func (s *Service) CreateAlert(ctx context.Context, tourID int64, req CreateAlertRequest) (*domain.EmergencyAlert, error) {
	severity := domain.AlertSeverity(req.Severity)
	switch severity {
	case "":
		severity = domain.SeverityInfo
	case domain.SeverityInfo, domain.SeverityWarning, domain.SeverityCritical:
	default:
		return nil, ErrValidation
	}

	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}

	alert := &domain.EmergencyAlert{
		TourID:   tour.ID,
		Severity: severity,
		Title:    req.Title,
		Message:  req.Message,
	}
	if err := s.store.CreateAlert(ctx, alert); err != nil {
		return nil, err
	}

	audience, err := s.resolver.Resolve(ctx, tour.ID, travellers.WindowNotEnded)
	if err != nil {
		return alert, fmt.Errorf("%w: %v", domain.ErrFanOutFailed, err)
	}

	fanErr := s.fanout.FanOut(ctx, audience, notification.Event{
		Type:          domain.NotifEmergencyAlert,
		Title:         "Emergency alert: " + alert.Title,
		Body:          alert.Message,
		TourID:        &tour.ID,
		RealtimeEvent: realtime.EventEmergencyNew,
		RealtimePayload: map[string]any{
			"tour_id": tour.ID,
			"alert":   alert,
		},
		SendEmail: true,
	})

	return alert, fanErr
}

// DeactivateAlert flips the active flag. Deactivating twice is a no-op, not
// an error, and no traveller fan-out happens on deactivation.
func (s *Service) DeactivateAlert(ctx context.Context, alertID int64) (*domain.EmergencyAlert, error) {
	if _, err := s.store.DeactivateAlert(ctx, alertID); err != nil {
		return nil, err
	}
	return s.store.GetAlert(ctx, alertID)
}

func (s *Service) ListAlerts(ctx context.Context, tourID, userID int64, role domain.Role) ([]domain.EmergencyAlert, error) {
	if role == domain.RoleOperator {
		return s.store.ListAlerts(ctx, tourID, false)
	}

	ok, err := s.resolver.IsActiveTraveller(ctx, userID, tourID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	return s.store.ListAlerts(ctx, tourID, true)
}
