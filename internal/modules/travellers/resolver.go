package travellers

import (
	"context"
	"time"

	"tourbook/internal/domain"
)

// Window selects which departures of a tour count toward the audience.
type Window int

const (
	// WindowRunning: departures currently underway. Itinerary fan-out.
	WindowRunning Window = iota
	// WindowNotEnded: departures that have not ended yet, including
	// upcoming ones. Emergency-alert fan-out.
	WindowNotEnded
)

// AudienceSource is implemented by repository.BookingRepository.
type AudienceSource interface {
	ActiveTravellers(ctx context.Context, tourID int64, runningOnly bool, now time.Time) ([]domain.ActiveTraveller, error)
	IsActiveTraveller(ctx context.Context, userID, tourID int64, now time.Time) (bool, error)
}

// Resolver computes the fan-out audience for a tour. It is the one place
// that answers "who is an active traveller"; access checks and fan-out both
// go through it so eligibility logic cannot diverge. Results are never
// cached: emergency broadcasts must see the latest cancellations.
type Resolver struct {
	src AudienceSource
}

func NewResolver(src AudienceSource) *Resolver {
	return &Resolver{src: src}
}

func (r *Resolver) Resolve(ctx context.Context, tourID int64, w Window) ([]domain.ActiveTraveller, error) {
	return r.src.ActiveTravellers(ctx, tourID, w == WindowRunning, time.Now().UTC())
}

// IsActiveTraveller reports whether the user belongs to the tour's audience
// (not-yet-ended window). Used for itinerary read access.
func (r *Resolver) IsActiveTraveller(ctx context.Context, userID, tourID int64) (bool, error) {
	return r.src.IsActiveTraveller(ctx, userID, tourID, time.Now().UTC())
}
