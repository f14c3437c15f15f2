package booking

import (
	"errors"
	"net/http"
	"strconv"

	"tourbook/internal/domain"
	"tourbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings", h.ListBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)
	rg.POST("/bookings/:id/confirm", h.ConfirmBooking)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	details, err := h.service.CreateBooking(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": details})
}

func (h *Handler) ListBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	status := c.Query("status")

	list, err := h.service.ListBookings(c.Request.Context(), c.GetInt64("user_id"), status, limit, offset)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking ID")
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking ID")
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking ID")
		return
	}

	b, err := h.service.ConfirmBooking(c.Request.Context(), id, domain.Role(c.GetString("role")))
	if err != nil {
		writeBookingError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// writeBookingError maps error kinds to the response envelope. Capacity and
// lifecycle failures carry enough detail for the client to act on them.
func writeBookingError(c *gin.Context, err error) {
	var capErr *domain.CapacityError

	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request")
	case errors.As(err, &capErr):
		response.ErrorWithDetails(c, http.StatusConflict, "CAPACITY_EXCEEDED",
			"Not enough seats remaining on this departure",
			gin.H{"remaining": capErr.Remaining})
	case errors.Is(err, domain.ErrDepartureClosed):
		response.Error(c, http.StatusConflict, "DEPARTURE_CLOSED", "This departure has already started")
	case errors.Is(err, domain.ErrDepartureStarted):
		response.Error(c, http.StatusConflict, "DEPARTURE_STARTED", "The cancellation window has closed: the departure has already started")
	case errors.Is(err, domain.ErrAlreadyCancelled):
		response.Error(c, http.StatusConflict, "ALREADY_CANCELLED", "This booking is already cancelled")
	case errors.Is(err, domain.ErrNotBookable):
		response.Error(c, http.StatusConflict, "NOT_BOOKABLE", "This tour is not open for booking")
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking or departure not found")
	case errors.Is(err, domain.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't have access to this booking")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
