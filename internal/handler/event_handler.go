package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classtap-api/internal/dto"
	"github.com/noah-isme/classtap-api/internal/service"
	appErrors "github.com/noah-isme/classtap-api/pkg/errors"
	"github.com/noah-isme/classtap-api/pkg/response"
)

type eventService interface {
	Ingest(ctx context.Context, req dto.TapEventRequest) (*dto.TapEventResponse, error)
}

// EventHandler is the ingestion endpoint for card-reader taps.
type EventHandler struct {
	service eventService
	metrics *service.MetricsService
}

// NewEventHandler constructs an event handler.
func NewEventHandler(svc eventService, metrics *service.MetricsService) *EventHandler {
	return &EventHandler{service: svc, metrics: metrics}
}

// Ingest godoc
// @Summary Ingest one card tap
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.TapEventRequest true "Tap payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Unknown card for the course"
// @Router /events [post]
func (h *EventHandler) Ingest(c *gin.Context) {
	var req dto.TapEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.service.Ingest(c.Request.Context(), req)
	if err != nil {
		h.metrics.ObserveTapRejected()
		response.Error(c, err)
		return
	}
	h.metrics.ObserveTap(resp.Event)
	response.JSON(c, http.StatusOK, resp, nil)
}
