package postgres

import (
	"context"
	"fmt"
	"time"

	"quixellMarket/domain"

	"gorm.io/gorm"
)

type SalesRepository struct {
	DB *gorm.DB
}

func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{
		DB: db,
	}
}

func (r *SalesRepository) MonthlySales(ctx context.Context) ([]domain.MonthlySales, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.MonthlySales{}
	err := r.DB.WithContext(ctx).
		Model(&domain.Sale{}).
		Select(`EXTRACT(YEAR FROM order_date)::int AS sale_year,
			EXTRACT(MONTH FROM order_date)::int AS sale_month,
			COALESCE(SUM(amount), 0) AS total_sales`).
		Where("order_date IS NOT NULL").
		Group("sale_year, sale_month").
		Order("sale_year, sale_month").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly sales: %w", err)
	}

	return rows, nil
}

// CategorySales skips categories whose total is null.
func (r *SalesRepository) CategorySales(ctx context.Context) ([]domain.CategorySales, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.CategorySales{}
	err := r.DB.WithContext(ctx).
		Model(&domain.Sale{}).
		Select("product_category, SUM(amount) AS total_sales").
		Group("product_category").
		Having("SUM(amount) IS NOT NULL").
		Order("product_category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate category sales: %w", err)
	}

	return rows, nil
}

func (r *SalesRepository) DailySales(ctx context.Context, from, to time.Time) ([]domain.DailySales, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.DailySales{}
	err := r.DB.WithContext(ctx).
		Model(&domain.Sale{}).
		Select("DATE(order_date) AS date, COALESCE(SUM(amount), 0) AS total_sales").
		Where("order_date >= ? AND order_date < ?", from, to).
		Group("DATE(order_date)").
		Order("date").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}

	return rows, nil
}

type ForecastAuditRepository struct {
	DB *gorm.DB
}

func NewForecastAuditRepository(db *gorm.DB) *ForecastAuditRepository {
	return &ForecastAuditRepository{
		DB: db,
	}
}

func (r *ForecastAuditRepository) Create(ctx context.Context, f *domain.SalesForecast) error {
	if err := r.DB.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("failed to store sales forecast: %w", err)
	}
	return nil
}
