package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"recoEngine/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type EventService interface {
	TrackEvent(ctx context.Context, userID string, productID uint64, eventType string) (*domain.Event, error)
	UserEvents(ctx context.Context, userID, eventType string, limit int) ([]domain.UserEvent, error)
}

type EventHandler struct {
	eventService EventService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewEventHandler(eventService EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		validator:    validator.New(),
		timeout:      10 * time.Second,
	}
}

type TrackEventRequest struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID uint64 `json:"productId" validate:"required"`
	EventType string `json:"eventType" validate:"required,oneof=view purchase cart_add wishlist"`
}

func (h *EventHandler) TrackEvent(c echo.Context) error {
	var req TrackEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	event, err := h.eventService.TrackEvent(ctx, req.UserID, req.ProductID, req.EventType)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(event))
}

// GET /api/v1/events/user/:userId?eventType=view&limit=50
func (h *EventHandler) UserEvents(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	events, err := h.eventService.UserEvents(ctx, c.Param("userId"), c.QueryParam("eventType"), limit)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(events))
}
