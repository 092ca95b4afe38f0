package product

import (
	"context"
	"fmt"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"
	"quixellMarket/pkg/logger"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindPage(ctx context.Context, offset, limit int) ([]domain.Product, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint64) error
}

type productService struct {
	productRepo ProductRepository
}

func NewProductService(productRepo ProductRepository) *productService {
	return &productService{
		productRepo: productRepo,
	}
}

// Page is one page of the catalog along with the total row count.
type Page struct {
	Count int64
	Data  []domain.Product
}

func (s *productService) ListProducts(ctx context.Context, page, limit int) (Page, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when list products")
		return Page{}, fmt.Errorf("context error: %w", err)
	}

	if page < 1 {
		return Page{}, apperror.Validation("page must be at least 1")
	}
	if limit < 1 || limit > MaxLimit {
		return Page{}, apperror.Validation(fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}

	total, err := s.productRepo.Count(ctx)
	if err != nil {
		logger.Error("Failed to count products", err)
		return Page{}, err
	}

	products, err := s.productRepo.FindPage(ctx, (page-1)*limit, limit)
	if err != nil {
		logger.Error("Failed to find product page", err)
		return Page{}, err
	}

	return Page{Count: total, Data: products}, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		logger.Error("invalid product id")
		return nil, apperror.Validation("invalid product id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when get product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", "product_id", id, "error", err)
		return nil, err
	}

	return &product, nil
}

// validate checks the catalog invariants of a full record.
func validate(p *domain.Product) error {
	switch {
	case p.ProductName == "":
		return apperror.Validation("product name is required")
	case p.ProductCategory == "":
		return apperror.Validation("product category is required")
	case p.ProductBrand == "":
		return apperror.Validation("product brand is required")
	case p.Cost <= 0:
		return apperror.Validation("cost must be greater than 0")
	case p.SellingPrice <= 0:
		return apperror.Validation("selling price must be greater than 0")
	case p.MinMargin > p.MaxMargin:
		return apperror.Validation("min margin cannot exceed max margin")
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := validate(product); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", err)
		return nil, apperror.WrapUnkinded(apperror.KindTransientWrite, "failed to create product", err)
	}

	logger.Info("product created successfully", "product_id", product.ID)

	return product, nil
}

// UpdateProduct applies a partial update; the merged record must still
// satisfy every catalog invariant.
func (s *productService) UpdateProduct(ctx context.Context, id uint64, patch domain.ProductPatch) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if id == 0 {
		logger.Error("Invalid product data: ID is required")
		return nil, apperror.Validation("product ID is required")
	}

	current, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("product not found", "product_id", id, "error", err)
		return nil, err
	}

	merged := patch.Apply(current)
	if err := validate(&merged); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	if err := s.productRepo.Update(ctx, &merged); err != nil {
		logger.Error("failed to update product", err)
		return nil, apperror.WrapUnkinded(apperror.KindTransientWrite, "failed to update product", err)
	}

	updated, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to fetch updated product", err)
		return nil, fmt.Errorf("failed to fetch updated product: %w", err)
	}

	logger.Info("product updated success", "product_id", id)

	return &updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint64) error {
	if id == 0 {
		logger.Error("Invalid product id when deleting product")
		return apperror.Validation("invalid product id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when deleting product")
		return fmt.Errorf("context error: %w", err)
	}

	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		logger.Error("product not found", "product_id", id, "error", err)
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return apperror.WrapUnkinded(apperror.KindTransientWrite, "failed to delete product", err)
	}

	logger.Info("product deleted success", "product_id", id)

	return nil
}
