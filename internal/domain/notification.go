package domain

import "time"

type NotificationType string

const (
	NotifItineraryUpdate   NotificationType = "itinerary_update"
	NotifItineraryReminder NotificationType = "itinerary_reminder"
	NotifEmergencyAlert    NotificationType = "emergency_alert"
	NotifBookingUpdate     NotificationType = "booking_update"
	NotifGeneral           NotificationType = "general"
)

// Notification is one fan-out record per (recipient, event). Created in bulk
// by the fan-out engine, mutated only by the recipient marking it read.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body,omitempty" gorm:"type:text"`
	TourID    *int64           `json:"tour_id,omitempty"`
	BookingID *int64           `json:"booking_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// MarkRead marks notification as read with timestamp.
func (n *Notification) MarkRead() {
	n.IsRead = true
	now := time.Now()
	n.ReadAt = &now
}
