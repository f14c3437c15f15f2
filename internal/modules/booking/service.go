package booking

import (
	"context"
	"math"
	"strings"

	"tourbook/internal/domain"
	"tourbook/internal/repository"
)

type Service struct {
	bookings BookingRepository
	tours    TourRepository
	notifs   NotificationSender
}

func NewService(bookings BookingRepository, tours TourRepository, notifs NotificationSender) *Service {
	return &Service{
		bookings: bookings,
		tours:    tours,
		notifs:   notifs,
	}
}

// CreateBooking validates the business rules and hands the seat-taking to
// the ledger. The temporal and capacity checks live inside Reserve's
// transaction; repeating them here would only race. No internal retries: a
// failed call left nothing behind, a retried success would double count.
func (s *Service) CreateBooking(ctx context.Context, userID int64, req CreateBookingRequest) (*BookingDetails, error) {
	if req.Travellers < 1 {
		return nil, ErrValidation
	}
	if strings.TrimSpace(req.ContactName) == "" || strings.TrimSpace(req.ContactEmail) == "" {
		return nil, ErrValidation
	}

	dep, err := s.tours.GetDeparture(ctx, req.DepartureID)
	if err != nil {
		return nil, err
	}

	tour, err := s.tours.GetByID(ctx, dep.TourID)
	if err != nil {
		return nil, err
	}
	if !tour.Bookable() {
		return nil, domain.ErrNotBookable
	}

	total := tour.UnitPrice * float64(req.Travellers)
	total = math.Round(total*100) / 100

	b := &domain.Booking{
		UserID:       userID,
		TourID:       tour.ID,
		DepartureID:  dep.ID,
		Travellers:   req.Travellers,
		TotalPrice:   total,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	}

	if err := s.bookings.Reserve(ctx, b); err != nil {
		return nil, err
	}

	return &BookingDetails{
		ID:          b.ID,
		Status:      string(b.Status),
		Travellers:  b.Travellers,
		TotalPrice:  b.TotalPrice,
		TourID:      tour.ID,
		TourTitle:   tour.Title,
		DepartureID: dep.ID,
		StartTime:   dep.StartTime,
		EndTime:     dep.EndTime,
		CreatedAt:   b.CreatedAt,
	}, nil
}

// CancelBooking releases the seats. Only the owner or an operator may
// cancel; once the departure has started the window is closed for good.
func (s *Service) CancelBooking(ctx context.Context, bookingID, actorID int64, actorRole domain.Role) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actorID && actorRole != domain.RoleOperator {
		return nil, domain.ErrForbidden
	}

	cancelled, err := s.bookings.Release(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// an operator cancelling on the traveller's behalf tells them about it
	if s.notifs != nil && actorID != b.UserID {
		_ = s.notifs.NotifyBookingCancelled(ctx, recipientOf(cancelled), cancelled)
	}

	return cancelled, nil
}

// ConfirmBooking is an operator action; seats were already reserved so only
// the status moves.
func (s *Service) ConfirmBooking(ctx context.Context, bookingID int64, actorRole domain.Role) (*domain.Booking, error) {
	if actorRole != domain.RoleOperator {
		return nil, domain.ErrForbidden
	}

	if err := s.bookings.Confirm(ctx, bookingID); err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingConfirmed(ctx, recipientOf(b), b)
	}

	return b, nil
}

func (s *Service) ListBookings(ctx context.Context, userID int64, status string, limit, offset int) ([]repository.UserBookingDetails, error) {
	switch status {
	case "", string(domain.BookingPending), string(domain.BookingConfirmed), string(domain.BookingCancelled):
	default:
		return nil, ErrValidation
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.bookings.GetUserBookingsWithDetails(ctx, userID, status, limit, offset)
}

func (s *Service) GetBooking(ctx context.Context, bookingID, actorID int64, actorRole domain.Role) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actorID && actorRole != domain.RoleOperator {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

func recipientOf(b *domain.Booking) domain.ActiveTraveller {
	return domain.ActiveTraveller{
		UserID:      b.UserID,
		Email:       b.ContactEmail,
		DisplayName: b.ContactName,
	}
}
