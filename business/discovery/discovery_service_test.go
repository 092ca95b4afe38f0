package discovery

import (
	"context"
	"errors"
	"testing"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPreferences struct {
	rows []domain.UserPreference
	err  error
}

func (m *memPreferences) Create(_ context.Context, p *domain.UserPreference) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, *p)
	return nil
}

type fakeCategories struct {
	category string
	products []domain.Product
	limit    int
}

func (f *fakeCategories) RandomCategory(context.Context) (string, error) {
	if f.category == "" {
		return "", apperror.NotFound("no product categories")
	}
	return f.category, nil
}

func (f *fakeCategories) RandomByCategory(_ context.Context, _ string, limit int) ([]domain.Product, error) {
	f.limit = limit
	return f.products, nil
}

func TestSavePreference(t *testing.T) {
	prefs := &memPreferences{}
	svc := NewDiscoveryService(prefs, &fakeCategories{})

	err := svc.SavePreference(context.Background(), &domain.UserPreference{UserID: "u1", ProductID: 5, Category: "Tops"})
	require.NoError(t, err)
	assert.Len(t, prefs.rows, 1)

	err = svc.SavePreference(context.Background(), &domain.UserPreference{UserID: "u1"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	prefs.err = errors.New("insert failed")
	err = svc.SavePreference(context.Background(), &domain.UserPreference{UserID: "u1", ProductID: 5})
	assert.True(t, apperror.Is(err, apperror.KindTransientWrite))
}

func TestRandomCategory(t *testing.T) {
	svc := NewDiscoveryService(&memPreferences{}, &fakeCategories{category: "Jeans"})
	got, err := svc.RandomCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jeans", got)

	svc = NewDiscoveryService(&memPreferences{}, &fakeCategories{})
	_, err = svc.RandomCategory(context.Background())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestProductsInCategory(t *testing.T) {
	cats := &fakeCategories{}
	svc := NewDiscoveryService(&memPreferences{}, cats)

	got, err := svc.ProductsInCategory(context.Background(), "Jeans")
	require.NoError(t, err)
	assert.Equal(t, []domain.Product{}, got)
	assert.Equal(t, 3, cats.limit)

	_, err = svc.ProductsInCategory(context.Background(), "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
