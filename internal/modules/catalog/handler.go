package catalog

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

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/tours", h.ListTours)
	v1.GET("/tours/:id", h.GetTour)
}

func (h *Handler) RegisterOperatorRoutes(op *gin.RouterGroup) {
	op.POST("/tours", h.CreateTour)
	op.PATCH("/tours/:id/status", h.UpdateTourStatus)
	op.POST("/tours/:id/departures", h.CreateDeparture)
}

func (h *Handler) ListTours(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tours, err := h.service.ListPublished(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load tours")
		return
	}
	response.Success(c, http.StatusOK, tours)
}

func (h *Handler) GetTour(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid tour ID")
		return
	}

	detail, err := h.service.GetTour(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Tour not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load tour")
		return
	}
	response.Success(c, http.StatusOK, detail)
}

func (h *Handler) CreateTour(c *gin.Context) {
	var req CreateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	tour, err := h.service.CreateTour(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create tour")
		return
	}
	response.Success(c, http.StatusCreated, tour)
}

func (h *Handler) UpdateTourStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid tour ID")
		return
	}

	var req UpdateTourStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status must be draft, published or archived")
		return
	}

	if err := h.service.UpdateTourStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Tour not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update tour")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "status": req.Status})
}

func (h *Handler) CreateDeparture(c *gin.Context) {
	tourID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid tour ID")
		return
	}

	var req CreateDepartureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	d, err := h.service.CreateDeparture(c.Request.Context(), tourID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Departure must start in the future and end after it starts")
		case errors.Is(err, domain.ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Tour not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create departure")
		}
		return
	}
	response.Success(c, http.StatusCreated, d)
}
