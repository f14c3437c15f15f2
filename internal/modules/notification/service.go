package notification

import (
	"context"
	"fmt"
	"html"
	"log"
	"sync"

	"tourbook/internal/domain"
	"tourbook/internal/mailer"
	"tourbook/internal/realtime"
)

// Event is one logical fan-out: the persisted record template plus the
// side-channel payloads.
type Event struct {
	Type      domain.NotificationType
	Title     string
	Body      string
	TourID    *int64
	BookingID *int64

	// RealtimeEvent empty = no push for this event.
	RealtimeEvent   string
	RealtimePayload any

	// SendEmail: emergency alerts go out by email too.
	SendEmail bool
}

type Service struct {
	repo   Store
	pusher Pusher
	mailer mailer.Mailer
}

func NewService(repo Store, pusher Pusher, m mailer.Mailer) *Service {
	return &Service{repo: repo, pusher: pusher, mailer: m}
}

// FanOut delivers one event to every recipient. Step 1 persists a row per
// recipient in a single bulk insert; if that fails nothing else happens and
// the caller gets ErrFanOutFailed. Step 2 pushes and emails each recipient,
// all recipients concurrently, and swallows every side-channel failure — an
// offline client or a dead SMTP relay must never fail the business mutation.
// The insert strictly precedes the first push so a reconnecting client can
// always recover the notification through the pull API.
func (s *Service) FanOut(ctx context.Context, recipients []domain.ActiveTraveller, ev Event) error {
	if len(recipients) == 0 {
		return nil
	}

	rows := make([]domain.Notification, 0, len(recipients))
	for _, rcpt := range recipients {
		rows = append(rows, domain.Notification{
			UserID:    rcpt.UserID,
			Type:      ev.Type,
			Title:     ev.Title,
			Body:      ev.Body,
			TourID:    ev.TourID,
			BookingID: ev.BookingID,
		})
	}

	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		log.Printf("fanout: persist failed type=%s recipients=%d error=%v", ev.Type, len(recipients), err)
		return fmt.Errorf("%w: %v", domain.ErrFanOutFailed, err)
	}

	var wg sync.WaitGroup
	for _, rcpt := range recipients {
		wg.Add(1)
		go func(t domain.ActiveTraveller) {
			defer wg.Done()

			if s.pusher != nil && ev.RealtimeEvent != "" {
				s.pusher.EmitToUser(t.UserID, ev.RealtimeEvent, ev.RealtimePayload)
			}

			if s.mailer != nil && ev.SendEmail && t.Email != "" {
				if err := s.mailer.Send(ctx, t.Email, ev.Title, emailHTML(ev.Body), ev.Body); err != nil {
					log.Printf("fanout: email failed user_id=%d type=%s error=%v", t.UserID, ev.Type, err)
				}
			}
		}(rcpt)
	}
	wg.Wait()

	return nil
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.repo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}

	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// NotifyBookingConfirmed tells the traveller their seats are locked in.
// Best-effort relative to the confirm itself; the booking service ignores
// the returned error by design, it exists for the single-recipient FanOut
// contract.
func (s *Service) NotifyBookingConfirmed(ctx context.Context, rcpt domain.ActiveTraveller, b *domain.Booking) error {
	return s.FanOut(ctx, []domain.ActiveTraveller{rcpt}, Event{
		Type:            domain.NotifBookingUpdate,
		Title:           "Booking confirmed",
		Body:            fmt.Sprintf("Your booking for %d traveller(s) has been confirmed.", b.Travellers),
		TourID:          &b.TourID,
		BookingID:       &b.ID,
		RealtimeEvent:   realtime.EventBookingUpdated,
		RealtimePayload: b,
	})
}

func (s *Service) NotifyBookingCancelled(ctx context.Context, rcpt domain.ActiveTraveller, b *domain.Booking) error {
	return s.FanOut(ctx, []domain.ActiveTraveller{rcpt}, Event{
		Type:            domain.NotifBookingUpdate,
		Title:           "Booking cancelled",
		Body:            "Your booking has been cancelled and the seats released.",
		TourID:          &b.TourID,
		BookingID:       &b.ID,
		RealtimeEvent:   realtime.EventBookingUpdated,
		RealtimePayload: b,
	})
}

func emailHTML(body string) string {
	return "<p>" + html.EscapeString(body) + "</p>"
}
