package domain

import "time"

type ItineraryItem struct {
	ID        int64     `json:"id"`
	TourID    int64     `json:"tour_id" validate:"required"`
	Day       int       `json:"day" validate:"gte=1"`
	Title     string    `json:"title" validate:"required"`
	Body      string    `json:"body,omitempty" gorm:"type:text"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// EmergencyAlert is a tour-scoped safety broadcast. Active flips to false
// exactly once; repeated deactivation is a no-op.
type EmergencyAlert struct {
	ID            int64         `json:"id"`
	TourID        int64         `json:"tour_id" validate:"required"`
	Severity      AlertSeverity `json:"severity"`
	Title         string        `json:"title" validate:"required"`
	Message       string        `json:"message" gorm:"type:text"`
	Active        bool          `json:"active"`
	CreatedAt     time.Time     `json:"created_at"`
	DeactivatedAt *time.Time    `json:"deactivated_at,omitempty"`
}
