package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"quixellMarket/domain"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type TrackingService interface {
	RecordImpression(ctx context.Context, userID string, productID uint64) error
	RecordClick(ctx context.Context, userID string, productID uint64) error
	RecordEvent(ctx context.Context, userID, eventType, uri string) error
	Metric(ctx context.Context, metric string) (int64, error)
	ConversionRates(ctx context.Context, year int) ([]domain.MonthlyConversion, error)
}

type TrackingHandler struct {
	service   TrackingService
	validator *validator.Validate
	timeout   time.Duration
}

func NewTrackingHandler(service TrackingService) *TrackingHandler {
	return &TrackingHandler{
		service:   service,
		validator: validator.New(),
		timeout:   10 * time.Second,
	}
}

type TrackEventRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	EventType string `json:"event_type" validate:"required"`
	URI       string `json:"uri"`
}

type ConversionQuery struct {
	Year int `query:"year" validate:"gte=0"`
}

func interactionParams(c echo.Context) (string, uint64, error) {
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil {
		return "", 0, err
	}
	return c.Param("user_id"), productID, nil
}

func (h *TrackingHandler) RecordImpression(c echo.Context) error {
	userID, productID, err := interactionParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	if err := h.service.RecordImpression(c.Request().Context(), userID, productID); err != nil {
		return respondError(c, "Failed to record impression", err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Impression recorded"})
}

func (h *TrackingHandler) RecordClick(c echo.Context) error {
	userID, productID, err := interactionParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	if err := h.service.RecordClick(c.Request().Context(), userID, productID); err != nil {
		return respondError(c, "Failed to record click", err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Click recorded"})
}

func (h *TrackingHandler) RecordEvent(c echo.Context) error {
	var req TrackEventRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.service.RecordEvent(c.Request().Context(), req.UserID, req.EventType, req.URI); err != nil {
		return respondError(c, "Failed to record event", err)
	}

	return c.JSON(http.StatusAccepted, MessageResponse{Message: "Event recorded"})
}

func (h *TrackingHandler) Metric(c echo.Context) error {
	metric := c.Param("metric")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	n, err := h.service.Metric(ctx, metric)
	if err != nil {
		return respondError(c, "Failed to load metric", err)
	}

	return c.JSON(http.StatusOK, map[string]int64{metric: n})
}

func (h *TrackingHandler) ConversionRates(c echo.Context) error {
	var q ConversionQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rates, err := h.service.ConversionRates(ctx, q.Year)
	if err != nil {
		return respondError(c, "Failed to load conversion rates", err)
	}

	return c.JSON(http.StatusOK, rates)
}
