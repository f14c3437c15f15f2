package realtime

import "strconv"

// Wire event names. Stable: mobile and web clients match on these.
const (
	EventItineraryUpdated = "itinerary:updated"
	EventEmergencyNew     = "emergency:new"
	EventBookingUpdated   = "booking:updated"
	EventJoinedTour       = "joined:tour"
)

// Message is the envelope pushed to clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Rooms are keyed by kind-prefixed strings so one registry can hold both
// per-user and per-tour groups.
func UserRoom(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

func TourRoom(tourID int64) string {
	return "tour:" + strconv.FormatInt(tourID, 10)
}
