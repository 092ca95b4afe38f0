package discovery

import (
	"context"
	"fmt"
	"strings"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"
	"quixellMarket/pkg/logger"
)

const categorySampleSize = 3

// PreferenceRepository contract interface
type PreferenceRepository interface {
	Create(ctx context.Context, pref *domain.UserPreference) error
}

// CategoryRepository contract interface
type CategoryRepository interface {
	RandomCategory(ctx context.Context) (string, error)
	RandomByCategory(ctx context.Context, category string, limit int) ([]domain.Product, error)
}

type discoveryService struct {
	preferences PreferenceRepository
	categories  CategoryRepository
}

func NewDiscoveryService(preferences PreferenceRepository, categories CategoryRepository) *discoveryService {
	return &discoveryService{
		preferences: preferences,
		categories:  categories,
	}
}

func (s *discoveryService) SavePreference(ctx context.Context, pref *domain.UserPreference) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when save preference")
		return fmt.Errorf("context error: %w", err)
	}

	if strings.TrimSpace(pref.UserID) == "" {
		return apperror.Validation("user id is required")
	}
	if pref.ProductID == 0 {
		return apperror.Validation("invalid product id")
	}

	if err := s.preferences.Create(ctx, pref); err != nil {
		logger.Error("failed to save user preference", err)
		return apperror.WrapUnkinded(apperror.KindTransientWrite, "failed to save user preference", err)
	}

	logger.Info("user preference saved", "user_id", pref.UserID, "product_id", pref.ProductID)

	return nil
}

// RandomCategory picks one distinct product category at random.
func (s *discoveryService) RandomCategory(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get random category")
		return "", fmt.Errorf("context error: %w", err)
	}

	category, err := s.categories.RandomCategory(ctx)
	if err != nil {
		logger.Error("Failed to find random category", err)
		return "", err
	}

	return category, nil
}

// ProductsInCategory samples a few random products of the category.
func (s *discoveryService) ProductsInCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get products by category")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if strings.TrimSpace(category) == "" {
		return nil, apperror.Validation("category is required")
	}

	products, err := s.categories.RandomByCategory(ctx, category, categorySampleSize)
	if err != nil {
		logger.Error("Failed to find products by category", err)
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}

	return products, nil
}
