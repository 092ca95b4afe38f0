package rest

import (
	"context"
	"net/http"
	"time"

	"quixellMarket/business/recommendation"
	"quixellMarket/pkg/apperror"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type SnapshotRefresher interface {
	Refresh(ctx context.Context) (*recommendation.Snapshot, error)
}

type ModelReloader interface {
	Reload() error
}

// ForecastInvalidator is nil when the forecast cache is disabled.
type ForecastInvalidator interface {
	InvalidateForecasts(ctx context.Context) (int64, error)
}

type AdminHandler struct {
	snapshots SnapshotRefresher
	models    ModelReloader
	forecasts ForecastInvalidator
	timeout   time.Duration
}

func NewAdminHandler(snapshots SnapshotRefresher, models ModelReloader, forecasts ForecastInvalidator) *AdminHandler {
	return &AdminHandler{
		snapshots: snapshots,
		models:    models,
		forecasts: forecasts,
		timeout:   60 * time.Second,
	}
}

type SnapshotSummary struct {
	Users        int       `json:"users"`
	Items        int       `json:"items"`
	Interactions int       `json:"interactions"`
	BuiltAt      time.Time `json:"built_at"`
}

func (h *AdminHandler) RefreshRecommendations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	snap, err := h.snapshots.Refresh(ctx)
	if err != nil {
		return respondError(c, "Failed to refresh interaction snapshot", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(SnapshotSummary{
		Users:        snap.Users.Len(),
		Items:        snap.Items.Len(),
		Interactions: len(snap.Interactions),
		BuiltAt:      snap.BuiltAt,
	}))
}

func (h *AdminHandler) ReloadModel(c echo.Context) error {
	if err := h.models.Reload(); err != nil {
		return respondError(c, "Failed to reload hybrid model", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Model reloaded"))
}

func (h *AdminHandler) InvalidateForecasts(c echo.Context) error {
	if h.forecasts == nil {
		return respondError(c, "Forecast cache disabled", apperror.ServiceUnavailable("forecast cache is disabled", nil))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	n, err := h.forecasts.InvalidateForecasts(ctx)
	if err != nil {
		return respondError(c, "Failed to invalidate forecasts", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]int64{"deleted": n}))
}
