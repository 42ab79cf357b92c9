package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Sla          SlaConfig
	AutoClose    AutoCloseConfig
	Analytics    AnalyticsConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// SlaConfig holds per-priority SLA thresholds in hours. Values must shrink
// strictly as priority rises; this is validated when the policy is built.
type SlaConfig struct {
	CriticalResponseHours   int
	CriticalResolutionHours int
	HighResponseHours       int
	HighResolutionHours     int
	MediumResponseHours     int
	MediumResolutionHours   int
	LowResponseHours        int
	LowResolutionHours      int
}

// AutoCloseConfig controls the resolved-ticket reconciliation job.
type AutoCloseConfig struct {
	Enabled         bool
	IntervalMinutes int
	RetentionDays   int
	RecencyHours    int
	BatchLimit      int
}

// AnalyticsConfig controls the Redis-backed overview cache.
type AnalyticsConfig struct {
	CacheTTLSeconds int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Sla: SlaConfig{
			CriticalResponseHours:   getEnvAsInt("SLA_CRITICAL_RESPONSE_HOURS", 1),
			CriticalResolutionHours: getEnvAsInt("SLA_CRITICAL_RESOLUTION_HOURS", 4),
			HighResponseHours:       getEnvAsInt("SLA_HIGH_RESPONSE_HOURS", 2),
			HighResolutionHours:     getEnvAsInt("SLA_HIGH_RESOLUTION_HOURS", 8),
			MediumResponseHours:     getEnvAsInt("SLA_MEDIUM_RESPONSE_HOURS", 4),
			MediumResolutionHours:   getEnvAsInt("SLA_MEDIUM_RESOLUTION_HOURS", 24),
			LowResponseHours:        getEnvAsInt("SLA_LOW_RESPONSE_HOURS", 8),
			LowResolutionHours:      getEnvAsInt("SLA_LOW_RESOLUTION_HOURS", 48),
		},
		AutoClose: AutoCloseConfig{
			Enabled:         getEnvAsBool("AUTOCLOSE_ENABLED", true),
			IntervalMinutes: getEnvAsInt("AUTOCLOSE_INTERVAL_MINUTES", 1440),
			RetentionDays:   getEnvAsInt("AUTOCLOSE_RETENTION_DAYS", 7),
			RecencyHours:    getEnvAsInt("AUTOCLOSE_RECENCY_HOURS", 48),
			BatchLimit:      getEnvAsInt("AUTOCLOSE_BATCH_LIMIT", 500),
		},
		Analytics: AnalyticsConfig{
			CacheTTLSeconds: getEnvAsInt("ANALYTICS_CACHE_TTL_SECONDS", 300),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "support@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Interval returns how often the auto-close job runs.
func (c AutoCloseConfig) Interval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Retention returns the window a resolved ticket must exceed before auto-close.
func (c AutoCloseConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Recency returns the follow-up window that keeps a resolved ticket open.
func (c AutoCloseConfig) Recency() time.Duration {
	return time.Duration(c.RecencyHours) * time.Hour
}

// CacheTTL returns the analytics cache expiry.
func (c AnalyticsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
