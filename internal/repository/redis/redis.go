package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

type ForecastData struct {
	Sales    float64   `json:"sales"`
	CachedAt time.Time `json:"cached_at"`
}

// ForecastCache keeps forecast answers keyed by the request fingerprint.
type ForecastCache struct {
	client *redis.Client
}

func NewForecastCache(client *redis.Client) *ForecastCache {
	return &ForecastCache{
		client: client,
	}
}

// GetForecast reports a miss as (0, false, nil).
func (r *ForecastCache) GetForecast(ctx context.Context, key string) (float64, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get forecast from Redis: %w", err)
	}

	var data ForecastData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return 0, false, fmt.Errorf("failed to unmarshal forecast data: %w", err)
	}

	return data.Sales, true, nil
}

func (r *ForecastCache) SetForecast(ctx context.Context, key string, sales float64, ttl time.Duration) error {
	jsonData, err := json.Marshal(ForecastData{Sales: sales, CachedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal forecast data: %w", err)
	}

	if err := r.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store forecast in Redis: %w", err)
	}

	return nil
}

// InvalidateForecasts removes every cached forecast and returns how many
// keys were deleted.
func (r *ForecastCache) InvalidateForecasts(ctx context.Context) (int64, error) {
	var deleted int64

	iter := r.client.Scan(ctx, 0, "sales_forecast:*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete forecast key: %w", err)
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan forecast keys: %w", err)
	}

	return deleted, nil
}
