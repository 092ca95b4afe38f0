package rest

import (
	"context"
	"net/http"
	"time"

	"quixellMarket/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type DiscoveryService interface {
	SavePreference(ctx context.Context, pref *domain.UserPreference) error
	RandomCategory(ctx context.Context) (string, error)
	ProductsInCategory(ctx context.Context, category string) ([]domain.Product, error)
}

type DiscoveryHandler struct {
	service   DiscoveryService
	validator *validator.Validate
	timeout   time.Duration
}

func NewDiscoveryHandler(service DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{
		service:   service,
		validator: validator.New(),
		timeout:   10 * time.Second,
	}
}

type UserPreferenceRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	ProductID   uint64 `json:"product_id" validate:"required"`
	Category    string `json:"category"`
	ProductName string `json:"product_name"`
}

func (h *DiscoveryHandler) SavePreference(c echo.Context) error {
	var req UserPreferenceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	pref := &domain.UserPreference{
		UserID:      req.UserID,
		ProductID:   req.ProductID,
		Category:    req.Category,
		ProductName: req.ProductName,
	}
	if err := h.service.SavePreference(ctx, pref); err != nil {
		return respondError(c, "Failed to save user preference", err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(pref))
}

func (h *DiscoveryHandler) RandomCategory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category, err := h.service.RandomCategory(ctx)
	if err != nil {
		return respondError(c, "Failed to pick random category", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"category": category})
}

func (h *DiscoveryHandler) ProductsInCategory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.service.ProductsInCategory(ctx, c.Param("category"))
	if err != nil {
		return respondError(c, "Failed to load category products", err)
	}

	return c.JSON(http.StatusOK, products)
}
