package postgres

import (
	"context"
	"errors"
	"fmt"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, apperror.NotFound("product not found")
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).Order("id").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}

// FindByIDs loads the rows for ids in no particular order; ids without a
// row are simply absent from the result.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products by ids: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) FindPage(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	products := []domain.Product{}
	err := r.DB.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find product page: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var n int64
	if err := r.DB.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return n, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"product_name":     product.ProductName,
		"product_category": product.ProductCategory,
		"product_brand":    product.ProductBrand,
		"department":       product.Department,
		"cost":             product.Cost,
		"selling_price":    product.SellingPrice,
		"max_margin":       product.MaxMargin,
		"min_margin":       product.MinMargin,
	}

	result := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", product.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product not found or already deleted")
	}

	return nil
}

func (r *ProductRepository) SetOptimizedPrice(ctx context.Context, id uint64, price float64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Update("optimized_price", price)
	if result.Error != nil {
		return fmt.Errorf("failed to update optimized price: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product not found or already deleted")
	}

	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Delete(&domain.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product not found or already deleted")
	}

	return nil
}

func (r *ProductRepository) RandomCategory(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	var categories []string
	err := r.DB.WithContext(ctx).
		Raw("SELECT product_category FROM (SELECT DISTINCT product_category FROM products) c ORDER BY RANDOM() LIMIT 1").
		Scan(&categories).Error
	if err != nil {
		return "", fmt.Errorf("failed to find random category: %w", err)
	}
	if len(categories) == 0 {
		return "", apperror.NotFound("no product categories")
	}

	return categories[0], nil
}

func (r *ProductRepository) RandomByCategory(ctx context.Context, category string, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	products := []domain.Product{}
	err := r.DB.WithContext(ctx).
		Where("product_category = ?", category).
		Order("RANDOM()").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products by category: %w", err)
	}

	return products, nil
}
