package realtime

import (
	"encoding/json"
	"testing"

	"tourbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id string, userID int64, role domain.Role) *client {
	return &client{
		id:     id,
		userID: userID,
		role:   role,
		send:   make(chan []byte, 8),
		rooms:  map[string]bool{UserRoom(userID): true},
	}
}

func recvMessage(t *testing.T, c *client) Message {
	t.Helper()
	select {
	case raw := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	default:
		t.Fatal("expected a message on the send channel")
		return Message{}
	}
}

func TestHub_EmitToUser_ReachesEveryConnectionOfThatUser(t *testing.T) {
	hub := NewHub()

	phone := newTestClient("conn-1", 42, domain.RoleTraveller)
	web := newTestClient("conn-2", 42, domain.RoleTraveller)
	other := newTestClient("conn-3", 7, domain.RoleTraveller)
	hub.register(phone)
	hub.register(web)
	hub.register(other)

	hub.EmitToUser(42, EventBookingUpdated, map[string]int64{"booking_id": 55})

	for _, c := range []*client{phone, web} {
		msg := recvMessage(t, c)
		assert.Equal(t, EventBookingUpdated, msg.Event)
	}
	assert.Empty(t, other.send)
}

func TestHub_EmitToTour_OnlyRoomMembers(t *testing.T) {
	hub := NewHub()

	member := newTestClient("conn-1", 1, domain.RoleTraveller)
	outsider := newTestClient("conn-2", 2, domain.RoleTraveller)
	hub.register(member)
	hub.register(outsider)

	hub.join(member, TourRoom(3))

	hub.EmitToTour(3, EventItineraryUpdated, map[string]any{"tour_id": 3, "action": "updated"})

	msg := recvMessage(t, member)
	assert.Equal(t, EventItineraryUpdated, msg.Event)
	assert.Empty(t, outsider.send)
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := NewHub()

	c := newTestClient("conn-1", 1, domain.RoleTraveller)
	hub.register(c)
	hub.join(c, TourRoom(3))
	hub.leave(c, TourRoom(3))

	hub.EmitToTour(3, EventEmergencyNew, nil)

	assert.Empty(t, c.send)
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()

	c := newTestClient("conn-1", 1, domain.RoleTraveller)
	hub.register(c)
	hub.unregister(c)

	_, open := <-c.send
	assert.False(t, open)

	// emits after disconnect must not panic or block
	hub.EmitToUser(1, EventBookingUpdated, nil)
}

func TestHub_SlowClientIsSkippedNotBlocked(t *testing.T) {
	hub := NewHub()

	slow := &client{
		id:     "conn-1",
		userID: 1,
		send:   make(chan []byte, 1),
		rooms:  map[string]bool{TourRoom(3): true},
	}
	hub.register(slow)

	// fill the buffer, further emits drop instead of blocking the hub
	hub.EmitToTour(3, EventItineraryUpdated, nil)
	hub.EmitToTour(3, EventItineraryUpdated, nil)
	hub.EmitToTour(3, EventItineraryUpdated, nil)

	assert.Len(t, slow.send, 1)
}

func TestRoomKeys(t *testing.T) {
	assert.Equal(t, "user:42", UserRoom(42))
	assert.Equal(t, "tour:3", TourRoom(3))
}
