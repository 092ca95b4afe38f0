package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"quixellMarket/business/product"
	"quixellMarket/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ProductService interface {
	ListProducts(ctx context.Context, page, limit int) (product.Page, error)
	GetProductByID(ctx context.Context, id uint64) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uint64, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint64) error
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type ListProductsQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

type CreateProductRequest struct {
	ProductName     string  `json:"product_name" validate:"required"`
	ProductCategory string  `json:"product_category" validate:"required"`
	ProductBrand    string  `json:"product_brand" validate:"required"`
	Department      string  `json:"department"`
	Cost            float64 `json:"cost" validate:"required,gt=0"`
	SellingPrice    float64 `json:"selling_price" validate:"required,gt=0"`
	MaxMargin       float64 `json:"max_margin" validate:"gte=0"`
	MinMargin       float64 `json:"min_margin" validate:"gte=0"`
}

type UpdateProductRequest struct {
	ProductName     *string  `json:"product_name" validate:"omitempty,min=1"`
	ProductCategory *string  `json:"product_category" validate:"omitempty,min=1"`
	ProductBrand    *string  `json:"product_brand" validate:"omitempty,min=1"`
	Department      *string  `json:"department"`
	Cost            *float64 `json:"cost" validate:"omitempty,gt=0"`
	SellingPrice    *float64 `json:"selling_price" validate:"omitempty,gt=0"`
	MaxMargin       *float64 `json:"max_margin" validate:"omitempty,gte=0"`
	MinMargin       *float64 `json:"min_margin" validate:"omitempty,gte=0"`
}

type ProductListResponse struct {
	Title string           `json:"title"`
	Count int64            `json:"count"`
	Data  []domain.Product `json:"data"`
}

func parseProductID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	q := ListProductsQuery{Page: product.DefaultPage, Limit: product.DefaultLimit}
	if err := c.Bind(&q); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	page, err := h.productService.ListProducts(ctx, q.Page, q.Limit)
	if err != nil {
		return respondError(c, "Failed to list products", err)
	}

	return c.JSON(http.StatusOK, ProductListResponse{
		Title: "Products",
		Count: page.Count,
		Data:  page.Data,
	})
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	productID, err := parseProductID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	p, err := h.productService.GetProductByID(ctx, productID)
	if err != nil {
		return respondError(c, "Failed to find product", err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req CreateProductRequest

	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	p := &domain.Product{
		ProductName:     req.ProductName,
		ProductCategory: req.ProductCategory,
		ProductBrand:    req.ProductBrand,
		Department:      req.Department,
		Cost:            req.Cost,
		SellingPrice:    req.SellingPrice,
		MaxMargin:       req.MaxMargin,
		MinMargin:       req.MinMargin,
	}

	created, err := h.productService.CreateProduct(ctx, p)
	if err != nil {
		return respondError(c, "Failed to create product", err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	productID, err := parseProductID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.productService.UpdateProduct(ctx, productID, domain.ProductPatch{
		ProductName:     req.ProductName,
		ProductCategory: req.ProductCategory,
		ProductBrand:    req.ProductBrand,
		Department:      req.Department,
		Cost:            req.Cost,
		SellingPrice:    req.SellingPrice,
		MaxMargin:       req.MaxMargin,
		MinMargin:       req.MinMargin,
	})
	if err != nil {
		return respondError(c, "Failed to update product", err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	productID, err := parseProductID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, productID); err != nil {
		return respondError(c, "Failed to delete product", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Product deleted successfully"))
}
