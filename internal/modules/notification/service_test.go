package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tourbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	batches [][]domain.Notification
	failOn  error
}

func (s *fakeStore) CreateBatch(ctx context.Context, rows []domain.Notification) error {
	if s.failOn != nil {
		return s.failOn
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, rows)
	return nil
}

func (s *fakeStore) GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	return nil, nil
}
func (s *fakeStore) CountUnread(ctx context.Context, userID int64) (int64, error) { return 0, nil }
func (s *fakeStore) MarkAsRead(ctx context.Context, id, userID int64) error       { return nil }
func (s *fakeStore) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	return 0, nil
}
func (s *fakeStore) DeleteReadOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	return 0, nil
}

type fakePusher struct {
	mu     sync.Mutex
	pushed []int64
}

func (p *fakePusher) EmitToUser(userID int64, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, userID)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return m.err
}

func audience(n int) []domain.ActiveTraveller {
	out := make([]domain.ActiveTraveller, 0, n)
	emails := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com", "e@example.com"}
	for i := 0; i < n; i++ {
		out = append(out, domain.ActiveTraveller{UserID: int64(i + 1), Email: emails[i%len(emails)]})
	}
	return out
}

func TestFanOut_PersistsOneRowPerRecipient(t *testing.T) {
	store := &fakeStore{}
	pusher := &fakePusher{}
	service := NewService(store, pusher, nil)

	tourID := int64(3)
	err := service.FanOut(context.Background(), audience(5), Event{
		Type:          domain.NotifItineraryUpdate,
		Title:         "Itinerary updated",
		Body:          "Day 2 changed",
		TourID:        &tourID,
		RealtimeEvent: "itinerary:updated",
	})

	require.NoError(t, err)
	require.Len(t, store.batches, 1, "one bulk insert, not per-recipient inserts")
	assert.Len(t, store.batches[0], 5)
	for _, row := range store.batches[0] {
		assert.Equal(t, domain.NotifItineraryUpdate, row.Type)
		assert.Equal(t, tourID, *row.TourID)
		assert.False(t, row.IsRead)
	}
	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, pusher.pushed)
}

func TestFanOut_PersistFailureStopsEverything(t *testing.T) {
	store := &fakeStore{failOn: errors.New("disk full")}
	pusher := &fakePusher{}
	mailer := &fakeMailer{}
	service := NewService(store, pusher, mailer)

	err := service.FanOut(context.Background(), audience(3), Event{
		Type:          domain.NotifEmergencyAlert,
		Title:         "Road closed",
		RealtimeEvent: "emergency:new",
		SendEmail:     true,
	})

	assert.ErrorIs(t, err, domain.ErrFanOutFailed)
	assert.Empty(t, pusher.pushed, "no push before a successful insert")
	assert.Empty(t, mailer.sent)
}

func TestFanOut_MailerFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{}
	pusher := &fakePusher{}
	mailer := &fakeMailer{err: errors.New("smtp relay down")}
	service := NewService(store, pusher, mailer)

	err := service.FanOut(context.Background(), audience(4), Event{
		Type:          domain.NotifEmergencyAlert,
		Title:         "Flash flood warning",
		Body:          "Return to the lodge",
		RealtimeEvent: "emergency:new",
		SendEmail:     true,
	})

	require.NoError(t, err, "side-channel failures must not fail the fan-out")
	assert.Len(t, store.batches, 1)
	assert.Len(t, mailer.sent, 4, "every recipient still attempted")
	assert.Len(t, pusher.pushed, 4)
}

func TestFanOut_NoEmailWithoutFlag(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	service := NewService(store, &fakePusher{}, mailer)

	err := service.FanOut(context.Background(), audience(2), Event{
		Type:          domain.NotifItineraryUpdate,
		Title:         "Itinerary updated",
		RealtimeEvent: "itinerary:updated",
	})

	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestFanOut_EmptyAudienceIsNoop(t *testing.T) {
	store := &fakeStore{}
	service := NewService(store, &fakePusher{}, nil)

	err := service.FanOut(context.Background(), nil, Event{Type: domain.NotifGeneral})

	require.NoError(t, err)
	assert.Empty(t, store.batches)
}

func TestGetUserNotifications_ClampsLimit(t *testing.T) {
	store := &fakeStore{}
	service := NewService(store, nil, nil)

	_, _, err := service.GetUserNotifications(context.Background(), 1, -5, -1)
	require.NoError(t, err)

	_, _, err = service.GetUserNotifications(context.Background(), 1, 100000, 0)
	require.NoError(t, err)
}

func TestNotifyBookingConfirmed_SingleRecipient(t *testing.T) {
	store := &fakeStore{}
	pusher := &fakePusher{}
	service := NewService(store, pusher, nil)

	b := &domain.Booking{ID: 55, UserID: 42, TourID: 3, Travellers: 2}
	rcpt := domain.ActiveTraveller{UserID: 42, Email: "aidar@example.com"}

	require.NoError(t, service.NotifyBookingConfirmed(context.Background(), rcpt, b))

	require.Len(t, store.batches, 1)
	require.Len(t, store.batches[0], 1)
	row := store.batches[0][0]
	assert.Equal(t, int64(42), row.UserID)
	assert.Equal(t, domain.NotifBookingUpdate, row.Type)
	assert.Equal(t, int64(55), *row.BookingID)
	assert.Equal(t, []int64{42}, pusher.pushed)
}
