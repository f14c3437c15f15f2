package booking

import (
	"context"
	"testing"
	"time"

	"tourbook/internal/domain"
	"tourbook/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock repositories
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Reserve(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil && b != nil {
		b.ID = 999 // simulate DB insert
		b.Status = domain.BookingPending
		b.CreatedAt = time.Now().UTC()
	}
	return args.Error(0)
}

func (m *MockBookingRepository) Release(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Confirm(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetUserBookingsWithDetails(ctx context.Context, userID int64, status string, limit, offset int) ([]repository.UserBookingDetails, error) {
	args := m.Called(ctx, userID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.UserBookingDetails), args.Error(1)
}

type MockTourRepository struct {
	mock.Mock
}

func (m *MockTourRepository) GetByID(ctx context.Context, id int64) (*domain.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

func (m *MockTourRepository) GetDeparture(ctx context.Context, id int64) (*domain.TourDeparture, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TourDeparture), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) NotifyBookingConfirmed(ctx context.Context, rcpt domain.ActiveTraveller, b *domain.Booking) error {
	args := m.Called(ctx, rcpt, b)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyBookingCancelled(ctx context.Context, rcpt domain.ActiveTraveller, b *domain.Booking) error {
	args := m.Called(ctx, rcpt, b)
	return args.Error(0)
}

func futureDeparture(id, tourID int64) *domain.TourDeparture {
	start := time.Now().UTC().Add(48 * time.Hour)
	return &domain.TourDeparture{
		ID:        id,
		TourID:    tourID,
		StartTime: start,
		EndTime:   start.Add(10 * time.Hour),
		Capacity:  10,
		Booked:    4,
	}
}

func TestService_CreateBooking_Success(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockTours := new(MockTourRepository)
	mockNotifs := new(MockNotificationSender)

	mockTours.On("GetDeparture", mock.Anything, int64(7)).Return(futureDeparture(7, 3), nil)
	mockTours.On("GetByID", mock.Anything, int64(3)).Return(&domain.Tour{
		ID:        3,
		Title:     "Чарынский каньон",
		UnitPrice: 18000,
		Status:    domain.TourPublished,
	}, nil)
	mockBookings.On("Reserve", mock.Anything, mock.Anything).Return(nil)

	service := NewService(mockBookings, mockTours, mockNotifs)

	details, err := service.CreateBooking(context.Background(), 42, CreateBookingRequest{
		DepartureID:  7,
		Travellers:   2,
		ContactName:  "Айдар",
		ContactEmail: "aidar@example.com",
	})

	assert.NoError(t, err)
	assert.NotNil(t, details)
	assert.Equal(t, int64(999), details.ID)
	assert.Equal(t, 36000.0, details.TotalPrice)
	assert.Equal(t, string(domain.BookingPending), details.Status)
	assert.Equal(t, "Чарынский каньон", details.TourTitle)
	mockBookings.AssertExpectations(t)
}

func TestService_CreateBooking_ValidationError(t *testing.T) {
	service := NewService(new(MockBookingRepository), new(MockTourRepository), new(MockNotificationSender))

	_, err := service.CreateBooking(context.Background(), 42, CreateBookingRequest{
		DepartureID: 7,
		Travellers:  0,
		ContactName: "Айдар",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.CreateBooking(context.Background(), 42, CreateBookingRequest{
		DepartureID: 7,
		Travellers:  1,
		ContactName: "   ",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_CreateBooking_TourNotBookable(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockTours := new(MockTourRepository)

	mockTours.On("GetDeparture", mock.Anything, int64(7)).Return(futureDeparture(7, 3), nil)
	mockTours.On("GetByID", mock.Anything, int64(3)).Return(&domain.Tour{
		ID:     3,
		Status: domain.TourDraft,
	}, nil)

	service := NewService(mockBookings, mockTours, new(MockNotificationSender))

	_, err := service.CreateBooking(context.Background(), 42, CreateBookingRequest{
		DepartureID:  7,
		Travellers:   1,
		ContactName:  "Айдар",
		ContactEmail: "aidar@example.com",
	})

	assert.ErrorIs(t, err, domain.ErrNotBookable)
	mockBookings.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}

func TestService_CreateBooking_CapacityExceeded(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockTours := new(MockTourRepository)

	mockTours.On("GetDeparture", mock.Anything, int64(7)).Return(futureDeparture(7, 3), nil)
	mockTours.On("GetByID", mock.Anything, int64(3)).Return(&domain.Tour{
		ID:        3,
		UnitPrice: 18000,
		Status:    domain.TourPublished,
	}, nil)
	mockBookings.On("Reserve", mock.Anything, mock.Anything).
		Return(&domain.CapacityError{Remaining: 1})

	service := NewService(mockBookings, mockTours, new(MockNotificationSender))

	_, err := service.CreateBooking(context.Background(), 42, CreateBookingRequest{
		DepartureID:  7,
		Travellers:   3,
		ContactName:  "Айдар",
		ContactEmail: "aidar@example.com",
	})

	var capErr *domain.CapacityError
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, 1, capErr.Remaining)
}

func TestService_CancelBooking_OwnBooking(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockNotifs := new(MockNotificationSender)

	owned := &domain.Booking{ID: 55, UserID: 42, TourID: 3, Status: domain.BookingConfirmed}
	cancelled := &domain.Booking{ID: 55, UserID: 42, TourID: 3, Status: domain.BookingCancelled}

	mockBookings.On("GetByID", mock.Anything, int64(55)).Return(owned, nil)
	mockBookings.On("Release", mock.Anything, int64(55)).Return(cancelled, nil)

	service := NewService(mockBookings, new(MockTourRepository), mockNotifs)

	got, err := service.CancelBooking(context.Background(), 55, 42, domain.RoleTraveller)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	// the traveller cancelled themselves, no notification needed
	mockNotifs.AssertNotCalled(t, "NotifyBookingCancelled", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CancelBooking_ByOperatorNotifies(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockNotifs := new(MockNotificationSender)

	owned := &domain.Booking{ID: 55, UserID: 42, TourID: 3, Status: domain.BookingConfirmed, ContactEmail: "aidar@example.com"}
	cancelled := &domain.Booking{ID: 55, UserID: 42, TourID: 3, Status: domain.BookingCancelled, ContactEmail: "aidar@example.com"}

	mockBookings.On("GetByID", mock.Anything, int64(55)).Return(owned, nil)
	mockBookings.On("Release", mock.Anything, int64(55)).Return(cancelled, nil)
	mockNotifs.On("NotifyBookingCancelled", mock.Anything, mock.Anything, cancelled).Return(nil)

	service := NewService(mockBookings, new(MockTourRepository), mockNotifs)

	_, err := service.CancelBooking(context.Background(), 55, 1, domain.RoleOperator)

	assert.NoError(t, err)
	mockNotifs.AssertCalled(t, "NotifyBookingCancelled", mock.Anything, mock.Anything, cancelled)
}

func TestService_CancelBooking_Forbidden(t *testing.T) {
	mockBookings := new(MockBookingRepository)

	mockBookings.On("GetByID", mock.Anything, int64(55)).
		Return(&domain.Booking{ID: 55, UserID: 42}, nil)

	service := NewService(mockBookings, new(MockTourRepository), new(MockNotificationSender))

	_, err := service.CancelBooking(context.Background(), 55, 43, domain.RoleTraveller)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	mockBookings.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestService_CancelBooking_DepartureStarted(t *testing.T) {
	mockBookings := new(MockBookingRepository)

	mockBookings.On("GetByID", mock.Anything, int64(55)).
		Return(&domain.Booking{ID: 55, UserID: 42}, nil)
	mockBookings.On("Release", mock.Anything, int64(55)).
		Return(nil, domain.ErrDepartureStarted)

	service := NewService(mockBookings, new(MockTourRepository), new(MockNotificationSender))

	_, err := service.CancelBooking(context.Background(), 55, 42, domain.RoleTraveller)

	assert.ErrorIs(t, err, domain.ErrDepartureStarted)
}

func TestService_ConfirmBooking_OperatorOnly(t *testing.T) {
	service := NewService(new(MockBookingRepository), new(MockTourRepository), new(MockNotificationSender))

	_, err := service.ConfirmBooking(context.Background(), 55, domain.RoleTraveller)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestService_ConfirmBooking_Notifies(t *testing.T) {
	mockBookings := new(MockBookingRepository)
	mockNotifs := new(MockNotificationSender)

	confirmed := &domain.Booking{ID: 55, UserID: 42, TourID: 3, Status: domain.BookingConfirmed, ContactEmail: "aidar@example.com"}

	mockBookings.On("Confirm", mock.Anything, int64(55)).Return(nil)
	mockBookings.On("GetByID", mock.Anything, int64(55)).Return(confirmed, nil)
	mockNotifs.On("NotifyBookingConfirmed", mock.Anything, mock.Anything, confirmed).Return(nil)

	service := NewService(mockBookings, new(MockTourRepository), mockNotifs)

	got, err := service.ConfirmBooking(context.Background(), 55, domain.RoleOperator)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	mockNotifs.AssertExpectations(t)
}

func TestService_ListBookings_BadStatus(t *testing.T) {
	service := NewService(new(MockBookingRepository), new(MockTourRepository), new(MockNotificationSender))

	_, err := service.ListBookings(context.Background(), 42, "paid", 20, 0)

	assert.ErrorIs(t, err, ErrValidation)
}
