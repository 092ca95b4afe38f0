package sales

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"
	"quixellMarket/pkg/logger"

	"gorm.io/datatypes"
)

const (
	dateLayout      = "2006-01-02"
	forecastHistory = 12
)

type SalesRepository interface {
	MonthlySales(ctx context.Context) ([]domain.MonthlySales, error)
	CategorySales(ctx context.Context) ([]domain.CategorySales, error)
	// DailySales returns per-day totals for order dates in [from, to).
	DailySales(ctx context.Context, from, to time.Time) ([]domain.DailySales, error)
}

// Prediction is the forecasting endpoint's answer along with its raw body.
type Prediction struct {
	Sales float64
	Raw   map[string]interface{}
}

type Forecaster interface {
	Predict(ctx context.Context, records []float64) (Prediction, error)
}

// ForecastCache is optional; a nil cache disables caching.
type ForecastCache interface {
	GetForecast(ctx context.Context, key string) (float64, bool, error)
	SetForecast(ctx context.Context, key string, sales float64, ttl time.Duration) error
}

type ForecastAuditRepository interface {
	Create(ctx context.Context, f *domain.SalesForecast) error
}

type salesService struct {
	repo       SalesRepository
	forecaster Forecaster
	cache      ForecastCache
	audit      ForecastAuditRepository
	cacheTTL   time.Duration
	now        func() time.Time
}

func NewSalesService(repo SalesRepository, forecaster Forecaster, cache ForecastCache, audit ForecastAuditRepository, cacheTTL time.Duration) *salesService {
	return &salesService{
		repo:       repo,
		forecaster: forecaster,
		cache:      cache,
		audit:      audit,
		cacheTTL:   cacheTTL,
		now:        time.Now,
	}
}

func (s *salesService) MonthlySales(ctx context.Context) ([]domain.MonthlySales, error) {
	rows, err := s.repo.MonthlySales(ctx)
	if err != nil {
		logger.Error("failed to load monthly sales", err)
		return nil, err
	}
	return rows, nil
}

func (s *salesService) CategorySales(ctx context.Context) ([]domain.CategorySales, error) {
	rows, err := s.repo.CategorySales(ctx)
	if err != nil {
		logger.Error("failed to load category sales", err)
		return nil, err
	}
	return rows, nil
}

// SalesTrend returns daily totals for the inclusive date range.
func (s *salesService) SalesTrend(ctx context.Context, start, end time.Time) ([]domain.DailySales, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperror.Validation("start_date and end_date are required")
	}
	if start.After(end) {
		return nil, apperror.Validation("start_date must not be after end_date")
	}

	rows, err := s.repo.DailySales(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		logger.Error("failed to load sales trend", err)
		return nil, err
	}
	return rows, nil
}

// SeasonalDecompose decomposes the daily totals of year from ISO week 1
// through week. A zero week covers the whole ISO year and ends at the last
// day with sales; a zero period means DefaultPeriod.
func (s *salesService) SeasonalDecompose(ctx context.Context, year, week, period int) ([]domain.DecompositionPoint, error) {
	if year < 1 {
		return nil, apperror.Validation("year is required")
	}
	if week < 0 || week > 53 {
		return nil, apperror.Validation("week must be between 1 and 53")
	}
	if period == 0 {
		period = DefaultPeriod
	}

	from := isoWeekStart(year)
	to := isoWeekStart(year + 1)
	if week > 0 {
		to = from.AddDate(0, 0, 7*week)
	}

	rows, err := s.repo.DailySales(ctx, from, to)
	if err != nil {
		logger.Error("failed to load daily sales", err)
		return nil, err
	}

	if week == 0 && len(rows) > 0 {
		last := rows[0].Date
		for _, r := range rows[1:] {
			if r.Date.After(last) {
				last = r.Date
			}
		}
		to = time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}

	days, values := fillDaily(rows, from, to)
	d, err := Decompose(values, period)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DecompositionPoint, len(days))
	for i, day := range days {
		out[i] = domain.DecompositionPoint{
			Date:     day.Format(dateLayout),
			Observed: d.Observed[i],
			Trend:    d.Trend[i],
			Seasonal: d.Seasonal[i],
			Resid:    d.Resid[i],
		}
	}
	return out, nil
}

// NextMonth is the month after the last actual row, or the current month
// when there are no actual rows.
func NextMonth(rows []domain.MonthlySales, now time.Time) (int, int) {
	if len(rows) == 0 {
		return now.Year(), int(now.Month())
	}
	last := rows[len(rows)-1]
	if last.SaleMonth >= 12 {
		return last.SaleYear + 1, 1
	}
	return last.SaleYear, last.SaleMonth + 1
}

func forecastKey(year, month int, records []float64) string {
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = strconv.FormatFloat(r, 'f', -1, 64)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return fmt.Sprintf("sales_forecast:%04d-%02d:%s", year, month, hex.EncodeToString(sum[:8]))
}

// CombinedSales appends the forecast of the next month to the actual
// monthly totals. The forecast is fed the last twelve actual totals.
func (s *salesService) CombinedSales(ctx context.Context) ([]domain.MonthlySales, error) {
	actual, err := s.MonthlySales(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]float64, 0, forecastHistory)
	start := len(actual) - forecastHistory
	if start < 0 {
		start = 0
	}
	for _, row := range actual[start:] {
		records = append(records, row.TotalSales)
	}

	year, month := NextMonth(actual, s.now())
	predicted, err := s.predict(ctx, year, month, records)
	if err != nil {
		return nil, err
	}

	combined := make([]domain.MonthlySales, 0, len(actual)+1)
	combined = append(combined, actual...)
	combined = append(combined, domain.MonthlySales{SaleYear: year, SaleMonth: month, TotalSales: predicted})

	return combined, nil
}

func (s *salesService) predict(ctx context.Context, year, month int, records []float64) (float64, error) {
	key := forecastKey(year, month, records)

	if s.cache != nil {
		v, ok, err := s.cache.GetForecast(ctx, key)
		if err != nil {
			logger.Warn("forecast cache read failed", "key", key, "error", err)
		} else if ok {
			logger.Debug("forecast cache hit", "key", key)
			return v, nil
		}
	}

	p, err := s.forecaster.Predict(ctx, records)
	if err != nil {
		logger.Error("sales forecast failed", "year", year, "month", month, "error", err)
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetForecast(ctx, key, p.Sales, s.cacheTTL); err != nil {
			logger.Warn("forecast cache write failed", "key", key, "error", err)
		}
	}

	if s.audit != nil {
		rec := &domain.SalesForecast{
			TargetYear:     year,
			TargetMonth:    month,
			PredictedSales: p.Sales,
			Request:        datatypes.JSONMap{"records": records},
			Response:       datatypes.JSONMap(p.Raw),
		}
		if err := s.audit.Create(ctx, rec); err != nil {
			logger.Warn("failed to audit sales forecast", "error", err)
		}
	}

	return p.Sales, nil
}
