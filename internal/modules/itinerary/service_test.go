package itinerary

import (
	"context"
	"testing"

	"tourbook/internal/domain"
	"tourbook/internal/modules/notification"
	"tourbook/internal/modules/travellers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateItem(ctx context.Context, item *domain.ItineraryItem) error {
	args := m.Called(ctx, item)
	if args.Error(0) == nil {
		item.ID = 11
	}
	return args.Error(0)
}

func (m *MockStore) GetItem(ctx context.Context, id int64) (*domain.ItineraryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItineraryItem), args.Error(1)
}

func (m *MockStore) ListItems(ctx context.Context, tourID int64) ([]domain.ItineraryItem, error) {
	args := m.Called(ctx, tourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ItineraryItem), args.Error(1)
}

func (m *MockStore) UpdateItem(ctx context.Context, item *domain.ItineraryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStore) DeleteItem(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) CreateAlert(ctx context.Context, a *domain.EmergencyAlert) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil {
		a.ID = 21
		a.Active = true
	}
	return args.Error(0)
}

func (m *MockStore) GetAlert(ctx context.Context, id int64) (*domain.EmergencyAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmergencyAlert), args.Error(1)
}

func (m *MockStore) ListAlerts(ctx context.Context, tourID int64, activeOnly bool) ([]domain.EmergencyAlert, error) {
	args := m.Called(ctx, tourID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmergencyAlert), args.Error(1)
}

func (m *MockStore) DeactivateAlert(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockTourSource struct {
	mock.Mock
}

func (m *MockTourSource) GetByID(ctx context.Context, id int64) (*domain.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, tourID int64, w travellers.Window) ([]domain.ActiveTraveller, error) {
	args := m.Called(ctx, tourID, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActiveTraveller), args.Error(1)
}

func (m *MockResolver) IsActiveTraveller(ctx context.Context, userID, tourID int64) (bool, error) {
	args := m.Called(ctx, userID, tourID)
	return args.Bool(0), args.Error(1)
}

type MockFanOut struct {
	mock.Mock
}

func (m *MockFanOut) FanOut(ctx context.Context, recipients []domain.ActiveTraveller, ev notification.Event) error {
	args := m.Called(ctx, recipients, ev)
	return args.Error(0)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) EmitToTour(tourID int64, event string, payload any) {
	m.Called(tourID, event, payload)
}

func publishedTour() *domain.Tour {
	return &domain.Tour{ID: 3, Title: "Чарынский каньон", Status: domain.TourPublished}
}

func TestCreateItem_FansOutToRunningWindow(t *testing.T) {
	store := new(MockStore)
	tours := new(MockTourSource)
	resolver := new(MockResolver)
	fanout := new(MockFanOut)
	hub := new(MockBroadcaster)

	tours.On("GetByID", mock.Anything, int64(3)).Return(publishedTour(), nil)
	store.On("CreateItem", mock.Anything, mock.Anything).Return(nil)

	audience := []domain.ActiveTraveller{{UserID: 42, Email: "aidar@example.com"}}
	resolver.On("Resolve", mock.Anything, int64(3), travellers.WindowRunning).Return(audience, nil)

	fanout.On("FanOut", mock.Anything, audience, mock.MatchedBy(func(ev notification.Event) bool {
		return ev.Type == domain.NotifItineraryUpdate && ev.RealtimeEvent == "itinerary:updated"
	})).Return(nil)
	hub.On("EmitToTour", int64(3), "itinerary:updated", mock.Anything).Return()

	service := NewService(store, tours, resolver, fanout, hub)

	item, err := service.CreateItem(context.Background(), 3, CreateItemRequest{
		Day:   2,
		Title: "Долина замков",
		Body:  "Прогулка по каньону",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), item.ID)
	fanout.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestCreateItem_FanOutFailureStillReturnsItem(t *testing.T) {
	store := new(MockStore)
	tours := new(MockTourSource)
	resolver := new(MockResolver)
	fanout := new(MockFanOut)
	hub := new(MockBroadcaster)

	tours.On("GetByID", mock.Anything, int64(3)).Return(publishedTour(), nil)
	store.On("CreateItem", mock.Anything, mock.Anything).Return(nil)
	resolver.On("Resolve", mock.Anything, int64(3), travellers.WindowRunning).
		Return([]domain.ActiveTraveller{{UserID: 42}}, nil)
	fanout.On("FanOut", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ErrFanOutFailed)
	hub.On("EmitToTour", mock.Anything, mock.Anything, mock.Anything).Return()

	service := NewService(store, tours, resolver, fanout, hub)

	item, err := service.CreateItem(context.Background(), 3, CreateItemRequest{Day: 1, Title: "Выезд"})

	assert.ErrorIs(t, err, domain.ErrFanOutFailed)
	assert.NotNil(t, item, "the item itself was saved")
}

func TestCreateAlert_UsesNotEndedWindowWithEmail(t *testing.T) {
	store := new(MockStore)
	tours := new(MockTourSource)
	resolver := new(MockResolver)
	fanout := new(MockFanOut)

	tours.On("GetByID", mock.Anything, int64(3)).Return(publishedTour(), nil)
	store.On("CreateAlert", mock.Anything, mock.Anything).Return(nil)

	audience := []domain.ActiveTraveller{{UserID: 42}, {UserID: 43}}
	resolver.On("Resolve", mock.Anything, int64(3), travellers.WindowNotEnded).Return(audience, nil)

	fanout.On("FanOut", mock.Anything, audience, mock.MatchedBy(func(ev notification.Event) bool {
		return ev.Type == domain.NotifEmergencyAlert && ev.SendEmail && ev.RealtimeEvent == "emergency:new"
	})).Return(nil)

	service := NewService(store, tours, resolver, fanout, nil)

	alert, err := service.CreateAlert(context.Background(), 3, CreateAlertRequest{
		Severity: "critical",
		Title:    "Дорога закрыта",
		Message:  "Сель на трассе, возвращаемся в лагерь",
	})

	require.NoError(t, err)
	assert.True(t, alert.Active)
	assert.Equal(t, domain.SeverityCritical, alert.Severity)
	fanout.AssertExpectations(t)
}

func TestCreateAlert_BadSeverity(t *testing.T) {
	service := NewService(new(MockStore), new(MockTourSource), new(MockResolver), new(MockFanOut), nil)

	_, err := service.CreateAlert(context.Background(), 3, CreateAlertRequest{Severity: "panic"})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateAlert_EmptySeverityDefaultsToInfo(t *testing.T) {
	store := new(MockStore)
	tours := new(MockTourSource)
	resolver := new(MockResolver)
	fanout := new(MockFanOut)

	tours.On("GetByID", mock.Anything, int64(3)).Return(publishedTour(), nil)
	store.On("CreateAlert", mock.Anything, mock.MatchedBy(func(a *domain.EmergencyAlert) bool {
		return a.Severity == domain.SeverityInfo
	})).Return(nil)
	resolver.On("Resolve", mock.Anything, int64(3), travellers.WindowNotEnded).
		Return([]domain.ActiveTraveller{}, nil)
	fanout.On("FanOut", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := NewService(store, tours, resolver, fanout, nil)

	_, err := service.CreateAlert(context.Background(), 3, CreateAlertRequest{Title: "Изменение погоды"})
	require.NoError(t, err)
}

func TestDeactivateAlert_Idempotent(t *testing.T) {
	store := new(MockStore)
	fanout := new(MockFanOut)

	inactive := &domain.EmergencyAlert{ID: 21, TourID: 3, Active: false}
	store.On("DeactivateAlert", mock.Anything, int64(21)).Return(true, nil)
	store.On("GetAlert", mock.Anything, int64(21)).Return(inactive, nil)

	service := NewService(store, new(MockTourSource), new(MockResolver), fanout, nil)

	alert, err := service.DeactivateAlert(context.Background(), 21)

	require.NoError(t, err)
	assert.False(t, alert.Active)
	// deactivation never notifies travellers
	fanout.AssertNotCalled(t, "FanOut", mock.Anything, mock.Anything, mock.Anything)
}

func TestListItems_AccessControl(t *testing.T) {
	store := new(MockStore)
	resolver := new(MockResolver)

	resolver.On("IsActiveTraveller", mock.Anything, int64(42), int64(3)).Return(false, nil)

	service := NewService(store, new(MockTourSource), resolver, new(MockFanOut), nil)

	_, err := service.ListItems(context.Background(), 3, 42, domain.RoleTraveller)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// operators skip the membership check
	store.On("ListItems", mock.Anything, int64(3)).Return([]domain.ItineraryItem{}, nil)
	_, err = service.ListItems(context.Background(), 3, 1, domain.RoleOperator)
	assert.NoError(t, err)
}

func TestListAlerts_TravellersSeeActiveOnly(t *testing.T) {
	store := new(MockStore)
	resolver := new(MockResolver)

	resolver.On("IsActiveTraveller", mock.Anything, int64(42), int64(3)).Return(true, nil)
	store.On("ListAlerts", mock.Anything, int64(3), true).Return([]domain.EmergencyAlert{}, nil)
	store.On("ListAlerts", mock.Anything, int64(3), false).Return([]domain.EmergencyAlert{}, nil)

	service := NewService(store, new(MockTourSource), resolver, new(MockFanOut), nil)

	_, err := service.ListAlerts(context.Background(), 3, 42, domain.RoleTraveller)
	require.NoError(t, err)
	store.AssertCalled(t, "ListAlerts", mock.Anything, int64(3), true)

	_, err = service.ListAlerts(context.Background(), 3, 1, domain.RoleOperator)
	require.NoError(t, err)
	store.AssertCalled(t, "ListAlerts", mock.Anything, int64(3), false)
}

func TestUpdateItem_NotFound(t *testing.T) {
	store := new(MockStore)
	store.On("GetItem", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

	service := NewService(store, new(MockTourSource), new(MockResolver), new(MockFanOut), nil)

	_, err := service.UpdateItem(context.Background(), 99, UpdateItemRequest{Day: 1, Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
