package booking

import (
	"context"

	"tourbook/internal/domain"
	"tourbook/internal/repository"
)

// BookingRepository is the capacity ledger plus booking reads.
// Implemented by repository.BookingRepository.
type BookingRepository interface {
	Reserve(ctx context.Context, b *domain.Booking) error
	Release(ctx context.Context, bookingID int64) (*domain.Booking, error)
	Confirm(ctx context.Context, bookingID int64) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetUserBookingsWithDetails(ctx context.Context, userID int64, status string, limit, offset int) ([]repository.UserBookingDetails, error)
}

// TourRepository provides the departure/tour lookups the lifecycle rules
// need. Implemented by repository.TourRepository.
type TourRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Tour, error)
	GetDeparture(ctx context.Context, id int64) (*domain.TourDeparture, error)
}

// NotificationSender fans out booking lifecycle events to the traveller.
// Best-effort: the service never fails a mutation over a notification.
type NotificationSender interface {
	NotifyBookingConfirmed(ctx context.Context, rcpt domain.ActiveTraveller, b *domain.Booking) error
	NotifyBookingCancelled(ctx context.Context, rcpt domain.ActiveTraveller, b *domain.Booking) error
}
