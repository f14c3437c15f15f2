package itinerary

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

// RegisterRoutes wires the read endpoints for any authenticated user.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tours/:id/itinerary", h.ListItems)
	rg.GET("/tours/:id/alerts", h.ListAlerts)
}

// RegisterOperatorRoutes wires the mutations; the caller guards the group
// with the operator role middleware.
func (h *Handler) RegisterOperatorRoutes(rg *gin.RouterGroup) {
	rg.POST("/tours/:id/itinerary", h.CreateItem)
	rg.PUT("/itinerary/:id", h.UpdateItem)
	rg.DELETE("/itinerary/:id", h.DeleteItem)
	rg.POST("/tours/:id/alerts", h.CreateAlert)
	rg.POST("/alerts/:id/deactivate", h.DeactivateAlert)
}

func (h *Handler) CreateItem(c *gin.Context) {
	tourID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid tour ID")
		return
	}

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), tourID, req)
	if err != nil && !errors.Is(err, domain.ErrFanOutFailed) {
		writeItineraryError(c, err)
		return
	}
	if err != nil {
		// item stored, notifications were not; the operator should retrigger
		response.Error(c, http.StatusInternalServerError, "FANOUT_FAILED", "Itinerary item saved but traveller notifications failed")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"item": item})
}

func (h *Handler) UpdateItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item ID")
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), itemID, req)
	if err != nil {
		if errors.Is(err, domain.ErrFanOutFailed) {
			response.Error(c, http.StatusInternalServerError, "FANOUT_FAILED", "Itinerary item saved but traveller notifications failed")
			return
		}
		writeItineraryError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"item": item})
}

func (h *Handler) DeleteItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item ID")
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), itemID); err != nil {
		if errors.Is(err, domain.ErrFanOutFailed) {
			response.Error(c, http.StatusInternalServerError, "FANOUT_FAILED", "Itinerary item deleted but traveller notifications failed")
			return
		}
		writeItineraryError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListItems(c *gin.Context) {
	tourID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid tour ID")
		return
	}

	items, err := h.service.ListItems(c.Request.Context(), tourID, c.GetInt64("user_id"), domain.Role(c.GetString("role")))
	if err != nil {
		writeItineraryError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"items": items})
}

func (h *Handler) ListAlerts(c *gin.Context) {
	tourID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid tour ID")
		return
	}

	alerts, err := h.service.ListAlerts(c.Request.Context(), tourID, c.GetInt64("user_id"), domain.Role(c.GetString("role")))
	if err != nil {
		writeItineraryError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"alerts": alerts})
}

func (h *Handler) CreateAlert(c *gin.Context) {
	tourID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid tour ID")
		return
	}

	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	alert, err := h.service.CreateAlert(c.Request.Context(), tourID, req)
	if err != nil {
		if errors.Is(err, domain.ErrFanOutFailed) {
			response.Error(c, http.StatusInternalServerError, "FANOUT_FAILED", "Alert recorded but traveller notifications failed")
			return
		}
		writeItineraryError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"alert": alert})
}

func (h *Handler) DeactivateAlert(c *gin.Context) {
	alertID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid alert ID")
		return
	}

	alert, err := h.service.DeactivateAlert(c.Request.Context(), alertID)
	if err != nil {
		writeItineraryError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"alert": alert})
}

func writeItineraryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request")
	case errors.Is(err, domain.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Tour, item or alert not found")
	case errors.Is(err, domain.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not a traveller on this tour")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
