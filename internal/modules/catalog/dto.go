package catalog

import "time"

type CreateTourRequest struct {
	Title       string  `json:"title" binding:"required,min=3"`
	Description string  `json:"description"`
	Region      string  `json:"region"`
	UnitPrice   float64 `json:"unit_price" binding:"required,gt=0"`
}

type UpdateTourStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft published archived"`
}

type CreateDepartureRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Capacity  int       `json:"capacity" binding:"required,gte=1"`
}

// DepartureView is the public availability figure. Capacity is fixed at
// creation; spots_left reflects the ledger at read time.
type DepartureView struct {
	ID        int64     `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Capacity  int       `json:"capacity"`
	SpotsLeft int       `json:"spots_left"`
	Active    bool      `json:"active"`
}

type TourDetail struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Region      string          `json:"region,omitempty"`
	UnitPrice   float64         `json:"unit_price"`
	Status      string          `json:"status"`
	Departures  []DepartureView `json:"departures"`
}
