package domain

import "time"

type TourStatus string

const (
	TourDraft     TourStatus = "draft"
	TourPublished TourStatus = "published"
	TourArchived  TourStatus = "archived"
)

type Tour struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	Region      string     `json:"region,omitempty"`
	UnitPrice   float64    `json:"unit_price" validate:"gte=0"`
	Status      TourStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Departures []TourDeparture `json:"departures,omitempty" gorm:"foreignKey:TourID"`
}

func (t *Tour) Bookable() bool {
	return t.Status == TourPublished
}

// TourDeparture is one dated running of a tour with a fixed seat capacity.
// Booked is mutated only through the capacity ledger (BookingRepository
// Reserve/Release); every other write path must leave it alone.
type TourDeparture struct {
	ID        int64     `json:"id"`
	TourID    int64     `json:"tour_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Capacity  int       `json:"capacity" validate:"required,gte=1"`
	Booked    int       `json:"booked" gorm:"check:chk_departure_booked,booked >= 0 AND booked <= capacity"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *TourDeparture) Remaining() int {
	return d.Capacity - d.Booked
}

func (d *TourDeparture) Started(now time.Time) bool {
	return !d.StartTime.After(now)
}

func (d *TourDeparture) Ended(now time.Time) bool {
	return d.EndTime.Before(now)
}

// Running reports whether now falls inside [StartTime, EndTime].
func (d *TourDeparture) Running(now time.Time) bool {
	return d.Started(now) && !d.Ended(now)
}
