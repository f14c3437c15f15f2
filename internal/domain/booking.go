package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id" validate:"required"`
	TourID       int64         `json:"tour_id" validate:"required"`
	DepartureID  int64         `json:"departure_id" validate:"required"`
	Travellers   int           `json:"travellers" validate:"required,gte=1"`
	TotalPrice   float64       `json:"total_price" validate:"gte=0"`
	Status       BookingStatus `json:"status"`
	ContactName  string        `json:"contact_name"`
	ContactPhone string        `json:"contact_phone,omitempty"`
	ContactEmail string        `json:"contact_email"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	CancelledAt  *time.Time    `json:"cancelled_at,omitempty"`

	// Связи
	User      *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Departure *TourDeparture `json:"departure,omitempty" gorm:"foreignKey:DepartureID"`
}

// Live reports whether the booking still holds seats against its departure.
func (b *Booking) Live() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}
