package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"quixellMarket/business/recommendation"
	"quixellMarket/domain"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type RecommendationService interface {
	Recommend(ctx context.Context, userID string, count int) ([]domain.RecommendedProduct, error)
	SimilarItems(ctx context.Context, itemID uint64, n int) ([]recommendation.SimilarItem, error)
	SimilarUsers(ctx context.Context, userID string, n int) ([]recommendation.SimilarUser, error)
	KnownPositives(ctx context.Context, userID string) ([]recommendation.KnownPositive, error)
}

type RecommendationHandler struct {
	service   RecommendationService
	validator *validator.Validate
	timeout   time.Duration
}

func NewRecommendationHandler(service RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		service:   service,
		validator: validator.New(),
		timeout:   10 * time.Second,
	}
}

type RecommendQuery struct {
	UserID string `param:"user_id" validate:"required"`
	Count  int    `query:"count" validate:"gte=0,lte=100"`
}

type RecommendRequest struct {
	UserID             string `json:"user_id" validate:"required"`
	NumRecommendations int    `json:"num_recommendations" validate:"gte=0,lte=100"`
}

type NeighbourQuery struct {
	N int `query:"n" validate:"gte=0,lte=100"`
}

func (h *RecommendationHandler) GetRecommendations(c echo.Context) error {
	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	return h.recommend(c, q.UserID, q.Count)
}

func (h *RecommendationHandler) PostRecommendations(c echo.Context) error {
	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, err)
	}

	return h.recommend(c, req.UserID, req.NumRecommendations)
}

func (h *RecommendationHandler) recommend(c echo.Context, userID string, count int) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.service.Recommend(ctx, userID, count)
	if err != nil {
		return respondError(c, "Failed to recommend products", err)
	}

	return c.JSON(http.StatusOK, products)
}

func (h *RecommendationHandler) SimilarItems(c echo.Context) error {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	var q NeighbourQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, err := h.service.SimilarItems(ctx, itemID, q.N)
	if err != nil {
		return respondError(c, "Failed to find similar items", err)
	}

	return c.JSON(http.StatusOK, items)
}

func (h *RecommendationHandler) SimilarUsers(c echo.Context) error {
	var q NeighbourQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(&q); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	users, err := h.service.SimilarUsers(ctx, c.Param("user_id"), q.N)
	if err != nil {
		return respondError(c, "Failed to find similar users", err)
	}

	return c.JSON(http.StatusOK, users)
}

func (h *RecommendationHandler) KnownPositives(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, err := h.service.KnownPositives(ctx, c.Param("user_id"))
	if err != nil {
		return respondError(c, "Failed to find known positives", err)
	}

	return c.JSON(http.StatusOK, items)
}
