package booking

import "time"

type CreateBookingRequest struct {
	DepartureID  int64  `json:"departure_id" binding:"required"`
	Travellers   int    `json:"travellers" binding:"required,gte=1"`
	ContactName  string `json:"contact_name" binding:"required"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email" binding:"required,email"`
}

// BookingDetails is the booking together with the denormalized tour and
// departure summary clients render without extra round trips.
type BookingDetails struct {
	ID          int64     `json:"id"`
	Status      string    `json:"status"`
	Travellers  int       `json:"travellers"`
	TotalPrice  float64   `json:"total_price"`
	TourID      int64     `json:"tour_id"`
	TourTitle   string    `json:"tour_title"`
	DepartureID int64     `json:"departure_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
}
