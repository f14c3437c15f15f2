package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tourbook/internal/domain"
	jwtsvc "tourbook/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // configure in prod
}

// MembershipSource answers which tour rooms a traveller may occupy.
// Implemented by repository.BookingRepository.
type MembershipSource interface {
	ConfirmedTourIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error)
	HasConfirmedBooking(ctx context.Context, userID, tourID int64) (bool, error)
}

// ActiveTourSource lists rooms an operator is auto-joined to.
// Implemented by repository.TourRepository.
type ActiveTourSource interface {
	ActiveTourIDs(ctx context.Context, now time.Time) ([]int64, error)
}

// Gateway authenticates websocket connections and enforces room eligibility.
// Connection lifecycle: unauthenticated -> authenticated -> subscribed ->
// closed; a bad token closes the socket before any room membership exists.
type Gateway struct {
	hub      *Hub
	jwt      *jwtsvc.Service
	bookings MembershipSource
	tours    ActiveTourSource
}

func NewGateway(hub *Hub, jwt *jwtsvc.Service, bookings MembershipSource, tours ActiveTourSource) *Gateway {
	return &Gateway{hub: hub, jwt: jwt, bookings: bookings, tours: tours}
}

func (g *Gateway) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", g.HandleWS)
}

// HandleWS upgrades the connection after the token checks out.
//
// Endpoint: GET /ws?token=JWT (websocket clients cannot set headers).
func (g *Gateway) HandleWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Token is required. Use ?token=YOUR_JWT_TOKEN"},
		})
		return
	}

	claims, err := g.jwt.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Invalid or expired token"},
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed user_id=%d error=%v", claims.UserID, err)
		return
	}

	cl := &client{
		id:     uuid.NewString(),
		userID: claims.UserID,
		role:   domain.Role(claims.Role),
		conn:   conn,
		send:   make(chan []byte, 256),
		rooms:  make(map[string]bool),
	}

	// Auto-subscribe before registration so no event between the two is
	// misrouted: own user room always, plus the eligible tour rooms.
	cl.rooms[UserRoom(cl.userID)] = true
	for _, tourID := range g.autoJoinTours(c.Request.Context(), cl) {
		cl.rooms[TourRoom(tourID)] = true
	}

	g.hub.register(cl)
	log.Printf("ws: connected user_id=%d conn=%s rooms=%d", cl.userID, cl.id, len(cl.rooms))

	go g.hub.writePump(cl)
	g.hub.readPump(g, cl) // blocks until disconnect
	log.Printf("ws: disconnected user_id=%d conn=%s", cl.userID, cl.id)
}

func (g *Gateway) autoJoinTours(ctx context.Context, cl *client) []int64 {
	var (
		ids []int64
		err error
	)
	if cl.role == domain.RoleOperator {
		ids, err = g.tours.ActiveTourIDs(ctx, time.Now().UTC())
	} else {
		ids, err = g.bookings.ConfirmedTourIDs(ctx, cl.userID, time.Now().UTC())
	}
	if err != nil {
		log.Printf("ws: auto-join lookup failed user_id=%d error=%v", cl.userID, err)
		return nil
	}
	return ids
}

type clientMessage struct {
	Action string `json:"action"`
	TourID int64  `json:"tour_id"`
}

// handleClientMessage processes join:tour / leave:tour requests. An
// unauthorized join is silently ignored rather than rejected so the channel
// does not leak which tours exist.
func (g *Gateway) handleClientMessage(cl *client, raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Action {
	case "join:tour":
		if msg.TourID <= 0 {
			return
		}
		if !g.mayJoin(cl, msg.TourID) {
			return
		}
		g.hub.join(cl, TourRoom(msg.TourID))
		g.hub.sendTo(cl, EventJoinedTour, gin.H{"tour_id": msg.TourID})
	case "leave:tour":
		if msg.TourID <= 0 {
			return
		}
		g.hub.leave(cl, TourRoom(msg.TourID))
	}
}

func (g *Gateway) mayJoin(cl *client, tourID int64) bool {
	if cl.role == domain.RoleOperator {
		return true
	}
	ok, err := g.bookings.HasConfirmedBooking(context.Background(), cl.userID, tourID)
	if err != nil {
		log.Printf("ws: join check failed user_id=%d tour_id=%d error=%v", cl.userID, tourID, err)
		return false
	}
	return ok
}
