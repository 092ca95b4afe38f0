package promotion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticInventory struct {
	items []domain.InventoryItem
	err   error
}

func (s staticInventory) FindAll(context.Context) ([]domain.InventoryItem, error) {
	return s.items, s.err
}

func TestNewLabelEncoder(t *testing.T) {
	enc := NewLabelEncoder([]string{"Tops", "Jeans", "Tops", "Accessories"})
	assert.Equal(t, LabelEncoder{"Accessories": 0, "Jeans": 1, "Tops": 2}, enc)
}

func TestItemFeatures(t *testing.T) {
	// 2024-01-03 is a Wednesday in ISO week 1
	item := domain.InventoryItem{
		Cost:              12.5,
		ProductCategory:   "Tops",
		ProductDepartment: "Women",
		CreatedAt:         time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
	}
	cats := NewLabelEncoder([]string{"Jeans", "Tops"})
	depts := NewLabelEncoder([]string{"Men", "Women"})

	assert.Equal(t, map[string]float64{
		FeatureCost:              12.5,
		FeatureCategoryEncoded:   1,
		FeatureDepartmentEncoded: 1,
		FeatureDayOfWeek:         2,
		FeatureWeekOfYear:        1,
	}, ItemFeatures(item, cats, depts))
}

func TestPredictPromotions(t *testing.T) {
	model := &LogisticModel{
		Intercept: -5,
		Weights:   map[string]float64{FeatureCost: 1},
		Threshold: 0.5,
	}
	items := []domain.InventoryItem{
		{ID: 1, Cost: 2, CreatedAt: time.Now()},
		{ID: 2, Cost: 9, CreatedAt: time.Now()},
		{ID: 3, Cost: 5, CreatedAt: time.Now()},
	}
	svc := NewPromotionService(model, staticInventory{items: items})

	got, err := svc.PredictPromotions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[0].ID)
	assert.Equal(t, uint64(3), got[1].ID, "probability 0.5 meets the threshold")
}

func TestPredictPromotions_Empty(t *testing.T) {
	svc := NewPromotionService(&LogisticModel{Weights: map[string]float64{FeatureCost: 1}, Threshold: 0.5}, staticInventory{})

	got, err := svc.PredictPromotions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPredictPromotions_RepositoryError(t *testing.T) {
	svc := NewPromotionService(&LogisticModel{}, staticInventory{err: errors.New("timeout")})

	_, err := svc.PredictPromotions(context.Background())
	assert.Error(t, err)
}

func TestLoadLogisticModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "promotion.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"intercept": 0, "weights": {"cost": 1}}`), 0o600))

	m, err := LoadLogisticModel(path)
	require.NoError(t, err)
	assert.Equal(t, defaultDecisionThreshold, m.Threshold)
	assert.InDelta(t, 0.5, m.Probability(map[string]float64{}), 1e-9)

	_, err = LoadLogisticModel(filepath.Join(dir, "nope.json"))
	assert.True(t, apperror.Is(err, apperror.KindServiceUnavailable))
}
