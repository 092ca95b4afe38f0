package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"
	"quixellMarket/pkg/async"
	"quixellMarket/pkg/logger"
)

// Write kinds, also used as background task names.
const (
	KindImpression = "impression"
	KindClick      = "click"
	KindEvent      = "event"
)

const (
	MetricImpressions = "impressions"
	MetricClicks      = "clicks"
)

// TrackingRepository contract interface
type TrackingRepository interface {
	InsertImpression(ctx context.Context, imp *domain.Impression) error
	InsertClick(ctx context.Context, click *domain.Click) error
	InsertEvent(ctx context.Context, event *domain.Event) error
	CountImpressions(ctx context.Context) (int64, error)
	CountClicks(ctx context.Context) (int64, error)
	// MonthlyConversions returns trial and conversion counts per month of year.
	MonthlyConversions(ctx context.Context, year int) ([]domain.MonthlyConversion, error)
}

type BackgroundRunner interface {
	Go(name string, task async.Task) error
}

type trackingService struct {
	repo   TrackingRepository
	runner BackgroundRunner
	now    func() time.Time
}

func NewTrackingService(repo TrackingRepository, runner BackgroundRunner) *trackingService {
	return &trackingService{
		repo:   repo,
		runner: runner,
		now:    time.Now,
	}
}

// OnWriteFailure is the runner failure hook for tracking writes.
func OnWriteFailure(name string, _ error) {
	WriteFailures.WithLabelValues(name).Inc()
}

// schedule hands a write to the background runner. Nothing about the write
// is ever reported back to the caller.
func (s *trackingService) schedule(kind string, task async.Task) {
	if err := s.runner.Go(kind, task); err != nil {
		logger.Warn("tracking write dropped", "kind", kind, "error", err)
		WriteFailures.WithLabelValues(kind).Inc()
		return
	}
	WritesScheduled.WithLabelValues(kind).Inc()
}

func validateIDs(userID string, productID uint64) error {
	if strings.TrimSpace(userID) == "" {
		return apperror.Validation("user id is required")
	}
	if productID == 0 {
		return apperror.Validation("invalid product id")
	}
	return nil
}

func (s *trackingService) RecordImpression(ctx context.Context, userID string, productID uint64) error {
	if err := validateIDs(userID, productID); err != nil {
		return err
	}

	imp := &domain.Impression{UserID: userID, ProductID: productID, ImpressionTime: s.now()}
	s.schedule(KindImpression, func(ctx context.Context) error {
		return s.repo.InsertImpression(ctx, imp)
	})
	return nil
}

func (s *trackingService) RecordClick(ctx context.Context, userID string, productID uint64) error {
	if err := validateIDs(userID, productID); err != nil {
		return err
	}

	click := &domain.Click{UserID: userID, ProductID: productID, ClickTime: s.now()}
	s.schedule(KindClick, func(ctx context.Context) error {
		return s.repo.InsertClick(ctx, click)
	})
	return nil
}

// RecordEvent appends to the raw event log that feeds the recommender.
func (s *trackingService) RecordEvent(ctx context.Context, userID, eventType, uri string) error {
	if strings.TrimSpace(userID) == "" {
		return apperror.Validation("user id is required")
	}
	eventType = strings.ToLower(strings.TrimSpace(eventType))
	if eventType == "" {
		return apperror.Validation("event type is required")
	}

	event := &domain.Event{UserID: userID, EventType: eventType, URI: uri, CreatedAt: s.now()}
	s.schedule(KindEvent, func(ctx context.Context) error {
		return s.repo.InsertEvent(ctx, event)
	})
	return nil
}

func (s *trackingService) Metric(ctx context.Context, metric string) (int64, error) {
	switch metric {
	case MetricImpressions:
		return s.repo.CountImpressions(ctx)
	case MetricClicks:
		return s.repo.CountClicks(ctx)
	default:
		return 0, apperror.NotFound("Metric not found")
	}
}

// ConversionRates reports trial-to-conversion rates per month of year; a
// zero year means the current UTC year. Months without trials have rate 0.
func (s *trackingService) ConversionRates(ctx context.Context, year int) ([]domain.MonthlyConversion, error) {
	if year == 0 {
		year = s.now().UTC().Year()
	}
	if year < 1 {
		return nil, apperror.Validation("invalid year")
	}

	rows, err := s.repo.MonthlyConversions(ctx, year)
	if err != nil {
		logger.Error("failed to load conversions", "year", year, "error", err)
		return nil, fmt.Errorf("failed to load conversions: %w", err)
	}

	for i := range rows {
		if rows[i].TotalTrials > 0 {
			rows[i].ConversionRate = float64(rows[i].TotalConversions) / float64(rows[i].TotalTrials)
		} else {
			rows[i].ConversionRate = 0
		}
	}
	if rows == nil {
		rows = []domain.MonthlyConversion{}
	}
	return rows, nil
}
