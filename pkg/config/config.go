package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	Server         ServerConfig
	Database       DatabaseConfig
	JWT            JWTConfig
	Mailjet        MailjetConfig
	Redis          RedisConfig
	Models         ModelConfig
	Recommendation RecommendationConfig
	Forecast       ForecastConfig
	Tracking       TrackingConfig
}

type MailjetConfig struct {
	MailjetBaseUrl           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
	AlertRecipientEmail      string
	AlertRecipientName       string
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	AllowOrigins   []string
}

type DatabaseConfig struct {
	Host             string
	Port             string
	User             string
	Password         string
	Name             string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	StatementTimeout time.Duration
	AutoMigrate      bool
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	PoolSize      int
}

type ModelConfig struct {
	HybridModelPath    string
	PriceModelPath     string
	PromotionModelPath string
}

type RecommendationConfig struct {
	WarmTopN            int
	ColdTopM            int
	DefaultCount        int
	SnapshotMaxAge      time.Duration
	SnapshotRefreshSpec string
}

type ForecastConfig struct {
	URL              string
	APIUser          string
	APIKey           string
	Timeout          time.Duration
	MaxRetries       int
	BreakerTimeout   time.Duration
	BreakerMinCalls  uint32
	BreakerFailRatio float64
	CacheTTL         time.Duration
}

type TrackingConfig struct {
	MaxConcurrentWrites int
	WriteTimeout        time.Duration
	WriteRetries        int
	WriteBackoff        time.Duration
	RateLimitPerSecond  float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Quixell Market Analytics API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
			AllowOrigins:   []string{getEnv("CORS_ORIGIN", "http://localhost:3000"), "http://localhost:8080"},
		},
		Database: DatabaseConfig{
			Host:             getEnv("DB_HOST", "localhost"),
			Port:             getEnv("DB_PORT", "5432"),
			User:             getEnv("DB_USER", "postgres"),
			Password:         getEnv("DB_PASSWORD", ""),
			Name:             getEnv("DB_NAME", "quixellai_db"),
			SSLMode:          getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:     getInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     getInt("DB_MAX_IDLE_CONNS", 5),
			StatementTimeout: getDuration("DB_STATEMENT_TIMEOUT", 15*time.Second),
			AutoMigrate:      getBool("DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Mailjet: MailjetConfig{
			MailjetBaseUrl:           getEnv("MAILJET_BASE_URL", ""),
			MailjetBasicAuthUsername: getEnv("MAILJET_BASIC_AUTH_USERNAME", ""),
			MailjetBasicAuthPassword: getEnv("MAILJET_BASIC_AUTH_PASSWORD", ""),
			MailjetSenderEmail:       getEnv("MAILJET_SENDER_EMAIL", ""),
			MailjetSenderName:        getEnv("MAILJET_SENDER_NAME", ""),
			AlertRecipientEmail:      getEnv("ALERT_RECIPIENT_EMAIL", ""),
			AlertRecipientName:       getEnv("ALERT_RECIPIENT_NAME", "Operations"),
		},
		Redis: RedisConfig{
			Enabled:       getBool("REDIS_ENABLED", false),
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			PoolSize:      getInt("REDIS_POOL_SIZE", 10),
		},
		Models: ModelConfig{
			HybridModelPath:    getEnv("HYBRID_MODEL_PATH", ""),
			PriceModelPath:     getEnv("PRICE_MODEL_PATH", "models/price_optimization.json"),
			PromotionModelPath: getEnv("PROMOTION_MODEL_PATH", "models/promotion.json"),
		},
		Recommendation: RecommendationConfig{
			WarmTopN:            getInt("RECO_WARM_TOP_N", 20),
			ColdTopM:            getInt("RECO_COLD_TOP_M", 50),
			DefaultCount:        getInt("RECO_DEFAULT_COUNT", 10),
			SnapshotMaxAge:      getDuration("RECO_SNAPSHOT_MAX_AGE", 0),
			SnapshotRefreshSpec: getEnv("RECO_SNAPSHOT_REFRESH_CRON", ""),
		},
		Forecast: ForecastConfig{
			URL:              getEnv("FORECAST_URL", ""),
			APIUser:          getEnv("FORECAST_API_USER", ""),
			APIKey:           getEnv("FORECAST_API_KEY", ""),
			Timeout:          getDuration("FORECAST_TIMEOUT", 5*time.Second),
			MaxRetries:       getInt("FORECAST_MAX_RETRIES", 2),
			BreakerTimeout:   getDuration("FORECAST_BREAKER_TIMEOUT", 30*time.Second),
			BreakerMinCalls:  uint32(getInt("FORECAST_BREAKER_MIN_CALLS", 5)),
			BreakerFailRatio: getFloat("FORECAST_BREAKER_FAILURE_RATIO", 0.5),
			CacheTTL:         getDuration("FORECAST_CACHE_TTL", 10*time.Minute),
		},
		Tracking: TrackingConfig{
			MaxConcurrentWrites: getInt("TRACKING_MAX_CONCURRENT_WRITES", 8),
			WriteTimeout:        getDuration("TRACKING_WRITE_TIMEOUT", 5*time.Second),
			WriteRetries:        getInt("TRACKING_WRITE_RETRIES", 3),
			WriteBackoff:        getDuration("TRACKING_WRITE_BACKOFF", 100*time.Millisecond),
			RateLimitPerSecond:  getFloat("TRACKING_RATE_LIMIT", 50),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Models.HybridModelPath == "" {
		return nil, errors.New("missing hybrid model path")
	}

	if cfg.Forecast.URL == "" {
		return nil, errors.New("missing forecast url")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultVal
}
