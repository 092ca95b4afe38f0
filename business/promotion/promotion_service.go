package promotion

import (
	"context"
	"fmt"
	"sort"

	"quixellMarket/domain"
	"quixellMarket/pkg/logger"
)

type Classifier interface {
	Predict(features map[string]float64) bool
}

type InventoryRepository interface {
	FindAll(ctx context.Context) ([]domain.InventoryItem, error)
}

type promotionService struct {
	model     Classifier
	inventory InventoryRepository
}

func NewPromotionService(model Classifier, inventory InventoryRepository) *promotionService {
	return &promotionService{
		model:     model,
		inventory: inventory,
	}
}

// LabelEncoder maps each distinct value to its position in sorted order.
type LabelEncoder map[string]int

func NewLabelEncoder(values []string) LabelEncoder {
	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		distinct[v] = struct{}{}
	}

	sorted := make([]string, 0, len(distinct))
	for v := range distinct {
		sorted = append(sorted, v)
	}
	sort.Strings(sorted)

	enc := make(LabelEncoder, len(sorted))
	for i, v := range sorted {
		enc[v] = i
	}
	return enc
}

// ItemFeatures derives the classifier row of one inventory item. Day of week
// counts from Monday=0, week of year is the ISO week.
func ItemFeatures(item domain.InventoryItem, categories, departments LabelEncoder) map[string]float64 {
	_, week := item.CreatedAt.ISOWeek()
	return map[string]float64{
		FeatureCost:              item.Cost,
		FeatureCategoryEncoded:   float64(categories[item.ProductCategory]),
		FeatureDepartmentEncoded: float64(departments[item.ProductDepartment]),
		FeatureDayOfWeek:         float64((int(item.CreatedAt.Weekday()) + 6) % 7),
		FeatureWeekOfYear:        float64(week),
	}
}

// PredictPromotions returns the inventory items the classifier marks as
// promotion candidates, in inventory order.
func (s *promotionService) PredictPromotions(ctx context.Context) ([]domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	items, err := s.inventory.FindAll(ctx)
	if err != nil {
		logger.Error("failed to load inventory items", err)
		return nil, err
	}

	cats := make([]string, len(items))
	depts := make([]string, len(items))
	for i, it := range items {
		cats[i] = it.ProductCategory
		depts[i] = it.ProductDepartment
	}
	catEnc, deptEnc := NewLabelEncoder(cats), NewLabelEncoder(depts)

	out := make([]domain.InventoryItem, 0)
	for _, it := range items {
		if s.model.Predict(ItemFeatures(it, catEnc, deptEnc)) {
			out = append(out, it)
		}
	}

	logger.Debug("promotion prediction", "items", len(items), "promotional", len(out))

	return out, nil
}
