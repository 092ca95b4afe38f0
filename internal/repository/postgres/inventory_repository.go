package postgres

import (
	"context"
	"fmt"

	"quixellMarket/domain"

	"gorm.io/gorm"
)

type InventoryRepository struct {
	DB *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{
		DB: db,
	}
}

func (r *InventoryRepository) FindAll(ctx context.Context) ([]domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var items []domain.InventoryItem
	if err := r.DB.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find inventory items: %w", err)
	}

	return items, nil
}

type PreferenceRepository struct {
	DB *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{
		DB: db,
	}
}

func (r *PreferenceRepository) Create(ctx context.Context, pref *domain.UserPreference) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(pref).Error; err != nil {
		return fmt.Errorf("failed to create user preference: %w", err)
	}

	return nil
}
