package postgres

import (
	"context"
	"fmt"
	"time"

	"quixellMarket/domain"

	"gorm.io/gorm"
)

// EventRepository owns the append-only interaction logs: raw events,
// impressions and clicks.
type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{
		DB: db,
	}
}

func (r *EventRepository) FindAll(ctx context.Context) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.Event
	if err := r.DB.WithContext(ctx).Order("id").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}

	return events, nil
}

func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.Event) error {
	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) InsertImpression(ctx context.Context, imp *domain.Impression) error {
	if err := r.DB.WithContext(ctx).Create(imp).Error; err != nil {
		return fmt.Errorf("failed to insert impression: %w", err)
	}
	return nil
}

func (r *EventRepository) InsertClick(ctx context.Context, click *domain.Click) error {
	if err := r.DB.WithContext(ctx).Create(click).Error; err != nil {
		return fmt.Errorf("failed to insert click: %w", err)
	}
	return nil
}

func (r *EventRepository) CountImpressions(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&domain.Impression{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count impressions: %w", err)
	}
	return n, nil
}

func (r *EventRepository) CountClicks(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&domain.Click{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return n, nil
}

func (r *EventRepository) MonthlyConversions(ctx context.Context, year int) ([]domain.MonthlyConversion, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var rows []domain.MonthlyConversion
	err := r.DB.WithContext(ctx).
		Model(&domain.Event{}).
		Select(`EXTRACT(MONTH FROM created_at)::int AS month,
			COUNT(*) FILTER (WHERE event_type = 'trial') AS total_trials,
			COUNT(*) FILTER (WHERE event_type = 'conversion') AS total_conversions`).
		Where("event_type IN ? AND created_at >= ? AND created_at < ?", []string{"trial", "conversion"}, from, to).
		Group("month").
		Order("month").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate conversions: %w", err)
	}

	return rows, nil
}
