package domain

import (
	"errors"
	"fmt"
)

// Shared error kinds for capacity and lifecycle rules. Handlers map these to
// response codes; side-channel (push/email) failures never surface as errors.
var (
	ErrNotFound         = errors.New("not found")
	ErrNotBookable      = errors.New("tour is not bookable")
	ErrDepartureClosed  = errors.New("departure has already started")
	ErrDepartureStarted = errors.New("cancellation window has closed")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	ErrForbidden        = errors.New("forbidden")
	ErrFanOutFailed     = errors.New("notification fan-out failed")
)

// CapacityError reports how many seats were left when a reservation was
// rejected, so clients can offer a reduced traveller count.
type CapacityError struct {
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats: %d remaining", e.Remaining)
}
