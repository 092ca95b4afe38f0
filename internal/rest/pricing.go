package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"quixellMarket/business/pricing"
	"quixellMarket/domain"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

type PricingService interface {
	Optimize(ctx context.Context, in pricing.OptimizeInput) (float64, error)
	OptimizeProduct(ctx context.Context, id uint64, date *time.Time) (*domain.Product, error)
}

type PricingHandler struct {
	service   PricingService
	validator *validator.Validate
	timeout   time.Duration
}

func NewPricingHandler(service PricingService) *PricingHandler {
	return &PricingHandler{
		service:   service,
		validator: validator.New(),
		timeout:   10 * time.Second,
	}
}

type OptimizeRequest struct {
	Product         string   `json:"product" validate:"required"`
	ProductCategory string   `json:"product_category"`
	Cost            float64  `json:"cost" validate:"required,gt=0"`
	Date            string   `json:"date" validate:"required,datetime=2006-01-02"`
	MaxProfitMargin *float64 `json:"max_profit_margin" validate:"omitempty,gte=0"`
	MinProfitMargin *float64 `json:"min_profit_margin" validate:"omitempty,gte=0"`
}

func (h *PricingHandler) Optimize(c echo.Context) error {
	var req OptimizeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err)
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	price, err := h.service.Optimize(ctx, pricing.OptimizeInput{
		Product:         req.Product,
		ProductCategory: req.ProductCategory,
		Cost:            req.Cost,
		Date:            date,
		MaxMargin:       req.MaxProfitMargin,
		MinMargin:       req.MinProfitMargin,
	})
	if err != nil {
		return respondError(c, "Failed to optimize price", err)
	}

	return c.JSON(http.StatusOK, price)
}

func (h *PricingHandler) OptimizeProduct(c echo.Context) error {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	var date *time.Time
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "date must be YYYY-MM-DD"})
		}
		date = &d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	p, err := h.service.OptimizeProduct(ctx, productID, date)
	if err != nil {
		return respondError(c, "Failed to optimize product price", err)
	}

	return c.JSON(http.StatusOK, p)
}

type PromotionService interface {
	PredictPromotions(ctx context.Context) ([]domain.InventoryItem, error)
}

type PromotionHandler struct {
	service PromotionService
	timeout time.Duration
}

func NewPromotionHandler(service PromotionService) *PromotionHandler {
	return &PromotionHandler{
		service: service,
		timeout: 30 * time.Second,
	}
}

func (h *PromotionHandler) PredictPromotions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, err := h.service.PredictPromotions(ctx)
	if err != nil {
		return respondError(c, "Failed to predict promotions", err)
	}

	return c.JSON(http.StatusOK, items)
}
