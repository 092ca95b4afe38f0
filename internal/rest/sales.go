package rest

import (
	"context"
	"net/http"
	"time"

	"quixellMarket/domain"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type SalesService interface {
	MonthlySales(ctx context.Context) ([]domain.MonthlySales, error)
	CategorySales(ctx context.Context) ([]domain.CategorySales, error)
	SalesTrend(ctx context.Context, start, end time.Time) ([]domain.DailySales, error)
	SeasonalDecompose(ctx context.Context, year, week, period int) ([]domain.DecompositionPoint, error)
	CombinedSales(ctx context.Context) ([]domain.MonthlySales, error)
}

type SalesHandler struct {
	service   SalesService
	validator *validator.Validate
	timeout   time.Duration
}

func NewSalesHandler(service SalesService) *SalesHandler {
	return &SalesHandler{
		service:   service,
		validator: validator.New(),
		timeout:   15 * time.Second,
	}
}

type SalesTrendQuery struct {
	StartDate string `query:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"required,datetime=2006-01-02"`
}

type DecomposeQuery struct {
	Year   int `query:"year" validate:"required,gte=1"`
	Week   int `query:"week" validate:"gte=0,lte=53"`
	Period int `query:"period" validate:"gte=0"`
}

type dailySalesResponse struct {
	Date       string  `json:"date"`
	TotalSales float64 `json:"total_sales"`
}

func (h *SalesHandler) MonthlySales(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rows, err := h.service.MonthlySales(ctx)
	if err != nil {
		return respondError(c, "Failed to load monthly sales", err)
	}

	return c.JSON(http.StatusOK, rows)
}

func (h *SalesHandler) CategorySales(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rows, err := h.service.CategorySales(ctx)
	if err != nil {
		return respondError(c, "Failed to load category sales", err)
	}

	return c.JSON(http.StatusOK, rows)
}

func (h *SalesHandler) SalesTrend(c echo.Context) error {
	var q SalesTrendQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	start, err := time.Parse(dateLayout, q.StartDate)
	if err != nil {
		return badRequest(c, err)
	}
	end, err := time.Parse(dateLayout, q.EndDate)
	if err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rows, err := h.service.SalesTrend(ctx, start, end)
	if err != nil {
		return respondError(c, "Failed to load sales trend", err)
	}

	out := make([]dailySalesResponse, len(rows))
	for i, r := range rows {
		out[i] = dailySalesResponse{Date: r.Date.Format(dateLayout), TotalSales: r.TotalSales}
	}

	return c.JSON(http.StatusOK, out)
}

func (h *SalesHandler) SeasonalDecompose(c echo.Context) error {
	var q DecomposeQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	points, err := h.service.SeasonalDecompose(ctx, q.Year, q.Week, q.Period)
	if err != nil {
		return respondError(c, "Failed to decompose sales", err)
	}

	return c.JSON(http.StatusOK, points)
}

func (h *SalesHandler) CombinedSales(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rows, err := h.service.CombinedSales(ctx)
	if err != nil {
		return respondError(c, "Failed to load combined sales", err)
	}

	return c.JSON(http.StatusOK, rows)
}
