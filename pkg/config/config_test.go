package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("HYBRID_MODEL_PATH", "models/hybrid.json")
	t.Setenv("FORECAST_URL", "http://forecast.local/predict")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 20, cfg.Recommendation.WarmTopN)
	assert.Equal(t, 50, cfg.Recommendation.ColdTopM)
	assert.Equal(t, 10, cfg.Recommendation.DefaultCount)
	assert.Equal(t, time.Duration(0), cfg.Recommendation.SnapshotMaxAge)
	assert.Equal(t, 5*time.Second, cfg.Forecast.Timeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 3, cfg.Tracking.WriteRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.Tracking.WriteBackoff)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RECO_WARM_TOP_N", "30")
	t.Setenv("RECO_SNAPSHOT_MAX_AGE", "2m")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("FORECAST_BREAKER_FAILURE_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Recommendation.WarmTopN)
	assert.Equal(t, 2*time.Minute, cfg.Recommendation.SnapshotMaxAge)
	assert.True(t, cfg.Redis.Enabled)
	assert.InDelta(t, 0.25, cfg.Forecast.BreakerFailRatio, 1e-9)
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		want  string
	}{
		{"jwt", "JWT_SECRET", "missing jwt secret"},
		{"db password", "DB_PASSWORD", "missing database password"},
		{"model", "HYBRID_MODEL_PATH", "missing hybrid model path"},
		{"forecast", "FORECAST_URL", "missing forecast url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestLoadInvalidRedisDB(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	assert.EqualError(t, err, "invalid redis database")
}
