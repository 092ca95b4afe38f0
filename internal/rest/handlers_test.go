package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quixellMarket/business/product"
	"quixellMarket/business/recommendation"
	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type fakeRecommender struct {
	gotUser  string
	gotCount int
	err      error
}

func (f *fakeRecommender) Recommend(_ context.Context, userID string, count int) ([]domain.RecommendedProduct, error) {
	f.gotUser, f.gotCount = userID, count
	if f.err != nil {
		return nil, f.err
	}
	return []domain.RecommendedProduct{{ID: 42, ProductName: "Air Max"}, {ID: 7, ProductName: "Tee"}}, nil
}

func (f *fakeRecommender) SimilarItems(_ context.Context, itemID uint64, n int) ([]recommendation.SimilarItem, error) {
	if itemID == 404 {
		return nil, apperror.NotFound("product not found")
	}
	return []recommendation.SimilarItem{{ID: 2, ProductName: "b", Similarity: 0.9}}, nil
}

func (f *fakeRecommender) SimilarUsers(_ context.Context, userID string, n int) ([]recommendation.SimilarUser, error) {
	return []recommendation.SimilarUser{{UserID: "2", Similarity: 0.5}}, nil
}

func (f *fakeRecommender) KnownPositives(_ context.Context, userID string) ([]recommendation.KnownPositive, error) {
	return nil, apperror.NotFound("user has no interaction history")
}

func recommendationServer(svc *fakeRecommender) *echo.Echo {
	e := echo.New()
	h := NewRecommendationHandler(svc)
	e.GET("/recommendations/:user_id", h.GetRecommendations)
	e.POST("/recommendations", h.PostRecommendations)
	e.GET("/recommendations/similar-items/:id", h.SimilarItems)
	e.GET("/recommendations/known-positives/:user_id", h.KnownPositives)
	return e
}

func TestGetRecommendations(t *testing.T) {
	svc := &fakeRecommender{}
	rec := serve(recommendationServer(svc), http.MethodGet, "/recommendations/u1?count=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", svc.gotUser)
	assert.Equal(t, 2, svc.gotCount)
	assert.JSONEq(t, `[{"id":42,"product_name":"Air Max"},{"id":7,"product_name":"Tee"}]`, rec.Body.String())
}

func TestPostRecommendations(t *testing.T) {
	svc := &fakeRecommender{}
	rec := serve(recommendationServer(svc), http.MethodPost, "/recommendations", `{"user_id":"99","num_recommendations":5}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "99", svc.gotUser)
	assert.Equal(t, 5, svc.gotCount)
}

func TestRecommendationsValidation(t *testing.T) {
	e := recommendationServer(&fakeRecommender{})

	rec := serve(e, http.MethodPost, "/recommendations", `{"num_recommendations":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodGet, "/recommendations/u1?count=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodGet, "/recommendations/u1?count=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendationsErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		message string
	}{
		{"unknown user", fmt.Errorf("recommend: %w", apperror.NotFound("user not found")), http.StatusNotFound, "user not found"},
		{
			"no model",
			apperror.ServiceUnavailable("recommendation model unavailable", errors.New("open /srv/models/hybrid.json: no such file or directory")),
			http.StatusServiceUnavailable,
			"recommendation model unavailable",
		},
		{"missing row", apperror.DataInconsistency("ranked product 3 has no catalog row"), http.StatusInternalServerError, "internal data inconsistency"},
		{
			"write failure",
			apperror.TransientWrite("failed to update user demographics", errors.New(`ERROR: relation "brands" does not exist (SQLSTATE 42P01)`)),
			http.StatusInternalServerError,
			"failed to update user demographics",
		},
		{
			"forecast down",
			apperror.Upstream("forecast service unavailable", errors.New("dial tcp 10.0.0.7:443: connect: connection refused")),
			http.StatusBadGateway,
			"forecast service unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(recommendationServer(&fakeRecommender{err: tt.err}), http.MethodGet, "/recommendations/u1", "")
			assert.Equal(t, tt.want, rec.Code)

			var body ResponseError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestInternalErrorsAreMasked(t *testing.T) {
	rec := serve(recommendationServer(&fakeRecommender{err: errors.New("pq: connection refused")}), http.MethodGet, "/recommendations/u1", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal server error"}`, rec.Body.String())
}

func TestSimilarItemsAndKnownPositives(t *testing.T) {
	e := recommendationServer(&fakeRecommender{})

	rec := serve(e, http.MethodGet, "/recommendations/similar-items/1?n=3", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodGet, "/recommendations/similar-items/404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e, http.MethodGet, "/recommendations/similar-items/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodGet, "/recommendations/known-positives/u9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeProducts struct {
	gotPage, gotLimit int
	patch             domain.ProductPatch
}

func (f *fakeProducts) ListProducts(_ context.Context, page, limit int) (product.Page, error) {
	f.gotPage, f.gotLimit = page, limit
	if limit > product.MaxLimit {
		return product.Page{}, apperror.Validation("limit must be between 1 and 100")
	}
	return product.Page{Count: 31, Data: []domain.Product{{ID: 1, ProductName: "Tee"}}}, nil
}

func (f *fakeProducts) GetProductByID(_ context.Context, id uint64) (*domain.Product, error) {
	if id != 1 {
		return nil, apperror.NotFound("product not found")
	}
	return &domain.Product{ID: 1, ProductName: "Tee"}, nil
}

func (f *fakeProducts) CreateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	p.ID = 5
	return p, nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, id uint64, patch domain.ProductPatch) (*domain.Product, error) {
	f.patch = patch
	return &domain.Product{ID: id}, nil
}

func (f *fakeProducts) DeleteProduct(_ context.Context, id uint64) error {
	if id != 1 {
		return apperror.NotFound("product not found or already deleted")
	}
	return nil
}

func productServer(svc *fakeProducts) *echo.Echo {
	e := echo.New()
	h := NewProductHandler(svc)
	e.GET("/products", h.ListProducts)
	e.GET("/products/:id", h.GetProductByID)
	e.POST("/products", h.CreateProduct)
	e.PUT("/products/:id", h.UpdateProduct)
	e.DELETE("/products/:id", h.DeleteProduct)
	return e
}

func TestListProducts(t *testing.T) {
	svc := &fakeProducts{}
	e := productServer(svc)

	rec := serve(e, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, product.DefaultPage, svc.gotPage)
	assert.Equal(t, product.DefaultLimit, svc.gotLimit)

	var body ProductListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Products", body.Title)
	assert.Equal(t, int64(31), body.Count)
	assert.Len(t, body.Data, 1)

	rec = serve(e, http.MethodGet, "/products?page=2&limit=500", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, svc.gotPage)
}

func TestProductCRUD(t *testing.T) {
	svc := &fakeProducts{}
	e := productServer(svc)

	rec := serve(e, http.MethodGet, "/products/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e, http.MethodPost, "/products", `{"product_name":"Tee","product_category":"Tops","product_brand":"Nike","cost":10,"selling_price":20}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(e, http.MethodPost, "/products", `{"product_name":"Tee","product_category":"Tops","product_brand":"Nike","cost":0,"selling_price":20}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodPut, "/products/1", `{"selling_price":25.5}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.patch.SellingPrice)
	assert.InDelta(t, 25.5, *svc.patch.SellingPrice, 1e-9)
	assert.Nil(t, svc.patch.ProductName)

	rec = serve(e, http.MethodDelete, "/products/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e, http.MethodDelete, "/products/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

type fakeTracking struct {
	impressions chan uint64
	year        int
}

func (f *fakeTracking) RecordImpression(_ context.Context, userID string, productID uint64) error {
	f.impressions <- productID
	return nil
}

func (f *fakeTracking) RecordClick(_ context.Context, userID string, productID uint64) error {
	return nil
}

func (f *fakeTracking) RecordEvent(_ context.Context, userID, eventType, uri string) error {
	return nil
}

func (f *fakeTracking) Metric(_ context.Context, metric string) (int64, error) {
	if metric != "impressions" {
		return 0, apperror.NotFound("Metric not found")
	}
	return 12, nil
}

func (f *fakeTracking) ConversionRates(_ context.Context, year int) ([]domain.MonthlyConversion, error) {
	f.year = year
	return []domain.MonthlyConversion{}, nil
}

func TestTrackingHandlers(t *testing.T) {
	svc := &fakeTracking{impressions: make(chan uint64, 1)}
	h := NewTrackingHandler(svc)
	e := echo.New()
	e.POST("/tracking/impression/:user_id/:product_id", h.RecordImpression)
	e.POST("/tracking/click/:user_id/:product_id", h.RecordClick)
	e.GET("/tracking/metrics/:metric", h.Metric)
	e.GET("/tracking/conversion-rates", h.ConversionRates)

	rec := serve(e, http.MethodPost, "/tracking/impression/u1/77", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Impression recorded"}`, rec.Body.String())
	assert.Equal(t, uint64(77), <-svc.impressions)

	rec = serve(e, http.MethodPost, "/tracking/click/u1/77", "")
	assert.JSONEq(t, `{"message":"Click recorded"}`, rec.Body.String())

	rec = serve(e, http.MethodPost, "/tracking/click/u1/x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodGet, "/tracking/metrics/impressions", "")
	assert.JSONEq(t, `{"impressions":12}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/tracking/metrics/views", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Metric not found"}`, rec.Body.String())

	rec = serve(e, http.MethodGet, "/tracking/conversion-rates?year=2023", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2023, svc.year)
}

type fakeSales struct {
	start, end time.Time
}

func (f *fakeSales) MonthlySales(context.Context) ([]domain.MonthlySales, error) {
	return []domain.MonthlySales{}, nil
}

func (f *fakeSales) CategorySales(context.Context) ([]domain.CategorySales, error) {
	return []domain.CategorySales{}, nil
}

func (f *fakeSales) SalesTrend(_ context.Context, start, end time.Time) ([]domain.DailySales, error) {
	f.start, f.end = start, end
	return []domain.DailySales{{Date: start, TotalSales: 12.5}}, nil
}

func (f *fakeSales) SeasonalDecompose(context.Context, int, int, int) ([]domain.DecompositionPoint, error) {
	return nil, apperror.Validation("need at least 14 observations")
}

func (f *fakeSales) CombinedSales(context.Context) ([]domain.MonthlySales, error) {
	return nil, apperror.Upstream("forecast service failed", errors.New("502"))
}

func TestSalesHandlers(t *testing.T) {
	svc := &fakeSales{}
	h := NewSalesHandler(svc)
	e := echo.New()
	e.GET("/sales-forecasting/sales-trend", h.SalesTrend)
	e.GET("/sales-forecasting/seasonal-decompose", h.SeasonalDecompose)
	e.GET("/sales-forecasting/combined-sales", h.CombinedSales)

	rec := serve(e, http.MethodGet, "/sales-forecasting/sales-trend?start_date=2024-01-01&end_date=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"date":"2024-01-01","total_sales":12.5}]`, rec.Body.String())
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), svc.end)

	rec = serve(e, http.MethodGet, "/sales-forecasting/sales-trend?start_date=01/01/2024&end_date=2024-01-31", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodGet, "/sales-forecasting/seasonal-decompose", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodGet, "/sales-forecasting/seasonal-decompose?year=2024&week=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodGet, "/sales-forecasting/combined-sales", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

type fakeDemographics struct {
	update domain.DemographicsUpdate
}

func (f *fakeDemographics) GetDemographics(_ context.Context, userID string) (domain.Demographics, error) {
	return domain.Demographics{Brands: []string{}}, nil
}

func (f *fakeDemographics) UpdateDemographics(_ context.Context, userID string, update domain.DemographicsUpdate) error {
	f.update = update
	return nil
}

func TestDemographicsHandlers(t *testing.T) {
	svc := &fakeDemographics{}
	h := NewDemographicsHandler(svc)
	e := echo.New()
	e.GET("/user-demo-data/demographics/:user_id", h.GetDemographics)
	e.PUT("/user-demo-data/demographics/update/:user_id", h.UpdateDemographics)

	rec := serve(e, http.MethodGet, "/user-demo-data/demographics/nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":null,"age":null,"gender":null,"location":null,"brands":[]}`, rec.Body.String())

	rec = serve(e, http.MethodPut, "/user-demo-data/demographics/update/u1", `{"age":31,"gender":"male","brands":["Nike"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.update.Age)
	assert.Equal(t, 31, *svc.update.Age)
	assert.Equal(t, []string{"Nike"}, svc.update.Brands)

	rec = serve(e, http.MethodPut, "/user-demo-data/demographics/update/u1", `{"age":300}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeRefresher struct{ err error }

func (f fakeRefresher) Refresh(context.Context) (*recommendation.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &recommendation.Snapshot{BuiltAt: time.Now()}, nil
}

type fakeReloader struct{ err error }

func (f fakeReloader) Reload() error { return f.err }

func TestAdminHandlers(t *testing.T) {
	h := NewAdminHandler(fakeRefresher{}, fakeReloader{err: apperror.ServiceUnavailable("bad artifact", nil)}, nil)
	e := echo.New()
	e.POST("/admin/recommendations/refresh", h.RefreshRecommendations)
	e.POST("/admin/models/reload", h.ReloadModel)
	e.POST("/admin/forecasts/invalidate", h.InvalidateForecasts)

	rec := serve(e, http.MethodPost, "/admin/recommendations/refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodPost, "/admin/models/reload", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(e, http.MethodPost, "/admin/forecasts/invalidate", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
