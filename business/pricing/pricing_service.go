package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"
	"quixellMarket/pkg/logger"

	"github.com/shopspring/decimal"
)

const (
	DefaultMaxMargin = 20.0
	DefaultMinMargin = 10.0

	noCategory = "No Category"
)

type Predictor interface {
	Predict(features map[string]float64) float64
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	SetOptimizedPrice(ctx context.Context, id uint64, price float64) error
}

// OptimizeInput describes one price request. Nil margins take the defaults.
type OptimizeInput struct {
	Product         string
	ProductCategory string
	Cost            float64
	Date            time.Time
	MaxMargin       *float64
	MinMargin       *float64
}

type pricingService struct {
	model    Predictor
	products ProductRepository
	now      func() time.Time
}

func NewPricingService(model Predictor, products ProductRepository) *pricingService {
	return &pricingService{
		model:    model,
		products: products,
		now:      time.Now,
	}
}

// WeekOfMonth numbers the calendar weeks of a month starting at 1, with
// weeks beginning on Monday.
func WeekOfMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return (t.Day()+mondayIndex(first.Weekday())-1)/7 + 1
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// Features builds the one-hot feature row of a price request.
func Features(product, category string, cost float64, date time.Time) map[string]float64 {
	if strings.TrimSpace(category) == "" {
		category = noCategory
	}
	f := map[string]float64{
		"Product_" + product:           1,
		"Product_Category_" + category: 1,
		"cost":                         cost,
		"week_of_month":                float64(WeekOfMonth(date)),
	}
	f["month_"+date.Month().String()] = 1
	return f
}

// Price applies the predicted demand to the margin band:
// cost + cost * (max + (max - min) * demand / 100) / 100, rounded to cents.
func Price(cost, maxMargin, minMargin, demand float64) decimal.Decimal {
	c := decimal.NewFromFloat(cost)
	hi := decimal.NewFromFloat(maxMargin)
	lo := decimal.NewFromFloat(minMargin)
	hundred := decimal.NewFromInt(100)

	margin := hi.Add(hi.Sub(lo).Mul(decimal.NewFromFloat(demand)).Div(hundred))
	return c.Add(c.Mul(margin).Div(hundred)).Round(2)
}

func (s *pricingService) Optimize(ctx context.Context, in OptimizeInput) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	if strings.TrimSpace(in.Product) == "" {
		return 0, apperror.Validation("product is required")
	}
	if in.Cost <= 0 {
		return 0, apperror.Validation("cost must be greater than 0")
	}
	if in.Date.IsZero() {
		return 0, apperror.Validation("date is required")
	}

	maxMargin, minMargin := DefaultMaxMargin, DefaultMinMargin
	if in.MaxMargin != nil {
		maxMargin = *in.MaxMargin
	}
	if in.MinMargin != nil {
		minMargin = *in.MinMargin
	}
	if minMargin > maxMargin {
		return 0, apperror.Validation("min profit margin cannot exceed max profit margin")
	}

	demand := s.model.Predict(Features(in.Product, in.ProductCategory, in.Cost, in.Date))
	price := Price(in.Cost, maxMargin, minMargin, demand)

	logger.Debug("price optimized", "product", in.Product, "demand", demand, "price", price.String())

	return price.InexactFloat64(), nil
}

// OptimizeProduct prices a stored product and persists the result. A nil
// date means today.
func (s *pricingService) OptimizeProduct(ctx context.Context, id uint64, date *time.Time) (*domain.Product, error) {
	if id == 0 {
		return nil, apperror.Validation("invalid product id")
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product for pricing", "product_id", id, "error", err)
		return nil, err
	}

	when := s.now()
	if date != nil {
		when = *date
	}

	in := OptimizeInput{
		Product:         p.ProductName,
		ProductCategory: p.ProductCategory,
		Cost:            p.Cost,
		Date:            when,
	}
	if p.MaxMargin > 0 || p.MinMargin > 0 {
		in.MaxMargin, in.MinMargin = &p.MaxMargin, &p.MinMargin
	}

	price, err := s.Optimize(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.products.SetOptimizedPrice(ctx, id, price); err != nil {
		logger.Error("failed to persist optimized price", "product_id", id, "error", err)
		return nil, apperror.WrapUnkinded(apperror.KindTransientWrite, "failed to persist optimized price", err)
	}

	p.OptimizedPrice = &price
	logger.Info("optimized price stored", "product_id", id, "price", price)

	return &p, nil
}
