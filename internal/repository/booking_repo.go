package repository

import (
	"context"
	"errors"
	"time"

	"tourbook/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingRow struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	UserID       int64      `gorm:"column:user_id"`
	TourID       int64      `gorm:"column:tour_id"`
	DepartureID  int64      `gorm:"column:departure_id"`
	Travellers   int        `gorm:"column:travellers"`
	TotalPrice   float64    `gorm:"column:total_price"`
	Status       string     `gorm:"column:status"`
	ContactName  string     `gorm:"column:contact_name"`
	ContactPhone *string    `gorm:"column:contact_phone"`
	ContactEmail string     `gorm:"column:contact_email"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at"`
}

func (bookingRow) TableName() string { return "bookings" }

type departureRow struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	TourID    int64     `gorm:"column:tour_id"`
	StartTime time.Time `gorm:"column:start_time"`
	EndTime   time.Time `gorm:"column:end_time"`
	Capacity  int       `gorm:"column:capacity"`
	Booked    int       `gorm:"column:booked"`
	Active    bool      `gorm:"column:active"`
}

func (departureRow) TableName() string { return "tour_departures" }

func toDomainBooking(m bookingRow) *domain.Booking {
	var phone string
	if m.ContactPhone != nil {
		phone = *m.ContactPhone
	}

	return &domain.Booking{
		ID:           m.ID,
		UserID:       m.UserID,
		TourID:       m.TourID,
		DepartureID:  m.DepartureID,
		Travellers:   m.Travellers,
		TotalPrice:   m.TotalPrice,
		Status:       domain.BookingStatus(m.Status),
		ContactName:  m.ContactName,
		ContactPhone: phone,
		ContactEmail: m.ContactEmail,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		CancelledAt:  m.CancelledAt,
	}
}

// Reserve is the capacity ledger's seat-taking side. The booked counter is
// bumped with a guarded UPDATE evaluated by the storage engine against the
// committed row, and the booking row is inserted in the same transaction, so
// two reservations racing for the last seats can never both pass.
//
// On success b.ID and b.Status are filled in. Failure kinds:
// domain.ErrNotFound, domain.ErrDepartureClosed, *domain.CapacityError.
func (r *BookingRepository) Reserve(ctx context.Context, b *domain.Booking) error {
	now := time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`UPDATE tour_departures
			    SET booked = booked + ?, updated_at = ?
			  WHERE id = ? AND start_time > ? AND capacity - booked >= ?`,
			b.Travellers, now, b.DepartureID, now, b.Travellers,
		)
		if res.Error != nil {
			var pgErr *pgconn.PgError
			if errors.As(res.Error, &pgErr) && pgErr.Code == "23514" {
				// chk_departure_booked backstop; the guard above should
				// make this unreachable
				return &domain.CapacityError{Remaining: 0}
			}
			return res.Error
		}

		if res.RowsAffected == 0 {
			var d departureRow
			if err := tx.Where("id = ?", b.DepartureID).Take(&d).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return err
			}
			if !d.StartTime.After(now) {
				return domain.ErrDepartureClosed
			}
			return &domain.CapacityError{Remaining: d.Capacity - d.Booked}
		}

		var phone *string
		if b.ContactPhone != "" {
			p := b.ContactPhone
			phone = &p
		}

		m := bookingRow{
			UserID:       b.UserID,
			TourID:       b.TourID,
			DepartureID:  b.DepartureID,
			Travellers:   b.Travellers,
			TotalPrice:   b.TotalPrice,
			Status:       string(domain.BookingPending),
			ContactName:  b.ContactName,
			ContactPhone: phone,
			ContactEmail: b.ContactEmail,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		b.ID = m.ID
		b.Status = domain.BookingPending
		b.CreatedAt = now
		b.UpdatedAt = now
		return nil
	})
}

// Release is the ledger's seat-returning side: flips the booking to cancelled
// and gives the travellers back to the departure, atomically. The status flip
// is guarded so a racing double cancel releases the seats exactly once.
//
// Failure kinds: domain.ErrNotFound, domain.ErrAlreadyCancelled,
// domain.ErrDepartureStarted.
func (r *BookingRepository) Release(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	now := time.Now().UTC()
	var out *domain.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m bookingRow
		if err := tx.Where("id = ?", bookingID).Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if m.Status == string(domain.BookingCancelled) {
			return domain.ErrAlreadyCancelled
		}

		var d departureRow
		if err := tx.Where("id = ?", m.DepartureID).Take(&d).Error; err != nil {
			return err
		}
		if !d.StartTime.After(now) {
			return domain.ErrDepartureStarted
		}

		res := tx.Exec(
			`UPDATE bookings
			    SET status = ?, cancelled_at = ?, updated_at = ?
			  WHERE id = ? AND status IN (?, ?)`,
			string(domain.BookingCancelled), now, now,
			bookingID, string(domain.BookingPending), string(domain.BookingConfirmed),
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race to another cancel
			return domain.ErrAlreadyCancelled
		}

		if err := tx.Exec(
			`UPDATE tour_departures SET booked = booked - ?, updated_at = ? WHERE id = ?`,
			m.Travellers, now, m.DepartureID,
		).Error; err != nil {
			return err
		}

		m.Status = string(domain.BookingCancelled)
		m.CancelledAt = &now
		m.UpdatedAt = now
		out = toDomainBooking(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Confirm moves a pending booking to confirmed. Seats were already taken at
// reservation time, so the ledger is untouched. Confirming a confirmed
// booking is a no-op.
func (r *BookingRepository) Confirm(ctx context.Context, bookingID int64) error {
	now := time.Now().UTC()

	res := r.db.WithContext(ctx).Exec(
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(domain.BookingConfirmed), now, bookingID, string(domain.BookingPending),
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var m bookingRow
	if err := r.db.WithContext(ctx).Where("id = ?", bookingID).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if m.Status == string(domain.BookingCancelled) {
		return domain.ErrAlreadyCancelled
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainBooking(m), nil
}

// UserBookingDetails is a booking with the denormalized tour/departure
// summary the client renders in lists.
type UserBookingDetails struct {
	ID          int64     `gorm:"column:id" json:"id"`
	Status      string    `gorm:"column:status" json:"status"`
	Travellers  int       `gorm:"column:travellers" json:"travellers"`
	TotalPrice  float64   `gorm:"column:total_price" json:"total_price"`
	TourID      int64     `gorm:"column:tour_id" json:"tour_id"`
	TourTitle   string    `gorm:"column:tour_title" json:"tour_title"`
	DepartureID int64     `gorm:"column:departure_id" json:"departure_id"`
	StartTime   time.Time `gorm:"column:start_time" json:"start_time"`
	EndTime     time.Time `gorm:"column:end_time" json:"end_time"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (r *BookingRepository) GetUserBookingsWithDetails(ctx context.Context, userID int64, status string, limit, offset int) ([]UserBookingDetails, error) {
	q := `SELECT b.id, b.status, b.travellers, b.total_price, b.created_at,
	             b.tour_id, t.title AS tour_title,
	             b.departure_id, d.start_time, d.end_time
	        FROM bookings b
	        JOIN tours t ON t.id = b.tour_id
	        JOIN tour_departures d ON d.id = b.departure_id
	       WHERE b.user_id = ?`
	args := []any{userID}

	if status != "" {
		q += ` AND b.status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY b.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var rows []UserBookingDetails
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveTravellers is the single source of truth for fan-out audiences: the
// distinct users with a live (pending or confirmed) booking on the tour.
// runningOnly narrows to departures currently underway; otherwise any
// departure that has not ended yet counts (the emergency-alert window).
func (r *BookingRepository) ActiveTravellers(ctx context.Context, tourID int64, runningOnly bool, now time.Time) ([]domain.ActiveTraveller, error) {
	q := `SELECT DISTINCT u.id AS user_id, u.email, u.display_name
	        FROM bookings b
	        JOIN tour_departures d ON d.id = b.departure_id
	        JOIN users u ON u.id = b.user_id
	       WHERE b.tour_id = ? AND b.status IN (?, ?) AND d.end_time >= ?`
	args := []any{tourID, string(domain.BookingPending), string(domain.BookingConfirmed), now}

	if runningOnly {
		q += ` AND d.start_time <= ?`
		args = append(args, now)
	}

	var out []domain.ActiveTraveller
	if err := r.db.WithContext(ctx).Raw(q, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// IsActiveTraveller answers the same membership question as ActiveTravellers
// for one user, against the not-yet-ended window.
func (r *BookingRepository) IsActiveTraveller(ctx context.Context, userID, tourID int64, now time.Time) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		   FROM bookings b
		   JOIN tour_departures d ON d.id = b.departure_id
		  WHERE b.user_id = ? AND b.tour_id = ? AND b.status IN (?, ?) AND d.end_time >= ?`,
		userID, tourID, string(domain.BookingPending), string(domain.BookingConfirmed), now,
	).Scan(&cnt).Error
	return cnt > 0, err
}

// HasConfirmedBooking backs explicit join:tour requests on the real-time
// channel.
func (r *BookingRepository) HasConfirmedBooking(ctx context.Context, userID, tourID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&bookingRow{}).
		Where("user_id = ? AND tour_id = ? AND status = ?", userID, tourID, string(domain.BookingConfirmed)).
		Count(&cnt).Error
	return cnt > 0, err
}

// ConfirmedTourIDs lists tours the user is auto-joined to on connect: a
// confirmed booking on a departure currently underway.
func (r *BookingRepository) ConfirmedTourIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT DISTINCT b.tour_id
		   FROM bookings b
		   JOIN tour_departures d ON d.id = b.departure_id
		  WHERE b.user_id = ? AND b.status = ? AND d.start_time <= ? AND d.end_time >= ?`,
		userID, string(domain.BookingConfirmed), now, now,
	).Scan(&ids).Error
	return ids, err
}
