package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Storage       StorageConfig
	Calendar      CalendarConfig
	Notify        NotifyConfig
	Scheduler     SchedulerConfig
	Report        ReportConfig
	Observability ObservabilityConfig
	LogLevel      string
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
}

type StorageConfig struct {
	Type              string
	LocalPath         string
	S3Bucket          string
	S3Region          string
	S3Prefix          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

type CalendarConfig struct {
	URL               string
	PageSize          int
	RequestsPerSecond int
	CacheTTL          time.Duration
	Timeout           time.Duration
}

type NotifyConfig struct {
	ResendAPIKey      string
	From              string
	SystemRecipients  []string
	ServiceRecipients []string
}

type SchedulerConfig struct {
	Enabled         bool
	IngestSpec      string
	HolidaySpec     string
	Timezone        string
	IngestTimeout   time.Duration
	IngestWorkers   int
	RefreshNextYear bool
}

type ReportConfig struct {
	FileType string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 50),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 100),
			AllowedOrigins:     getEnvAsList("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "afa-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("POSTGRES_MAX_CONNS", 10),
		},
		Storage: StorageConfig{
			Type:              getEnv("STORAGE_TYPE", "local"),
			LocalPath:         getEnv("STORAGE_LOCAL_PATH", "./data/bulletins"),
			S3Bucket:          getEnv("STORAGE_S3_BUCKET", ""),
			S3Region:          getEnv("STORAGE_S3_REGION", "ap-northeast-1"),
			S3Prefix:          getEnv("STORAGE_S3_PREFIX", "bulletins"),
			S3Endpoint:        getEnv("STORAGE_S3_ENDPOINT", ""),
			S3AccessKeyID:     getEnv("STORAGE_S3_ACCESS_KEY_ID", ""),
			S3SecretAccessKey: getEnv("STORAGE_S3_SECRET_ACCESS_KEY", ""),
		},
		Calendar: CalendarConfig{
			URL:               getEnv("CALENDAR_URL", "https://data.ntpc.gov.tw/api/datasets/308DCD75-6434-45BC-A95F-584DA4FED251/json"),
			PageSize:          getEnvAsInt("CALENDAR_PAGE_SIZE", 1000),
			RequestsPerSecond: getEnvAsInt("CALENDAR_REQUESTS_PER_SECOND", 2),
			CacheTTL:          getEnvAsDuration("CALENDAR_CACHE_TTL", 24*time.Hour),
			Timeout:           getEnvAsDuration("CALENDAR_TIMEOUT", 15*time.Second),
		},
		Notify: NotifyConfig{
			ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
			From:              getEnv("NOTIFY_FROM", "AFA Reports <reports@localhost>"),
			SystemRecipients:  getEnvAsList("SYSTEM_RECIPIENTS", nil),
			ServiceRecipients: getEnvAsList("SERVICE_RECIPIENTS", nil),
		},
		Scheduler: SchedulerConfig{
			Enabled:         getEnvAsBool("SCHEDULER_ENABLED", true),
			IngestSpec:      getEnv("SCHEDULER_INGEST_SPEC", "0 10 * * *"),
			HolidaySpec:     getEnv("SCHEDULER_HOLIDAY_SPEC", "0 3 1 * *"),
			Timezone:        getEnv("SCHEDULER_TIMEZONE", "Asia/Taipei"),
			IngestTimeout:   getEnvAsDuration("SCHEDULER_INGEST_TIMEOUT", 10*time.Minute),
			IngestWorkers:   getEnvAsInt("SCHEDULER_INGEST_WORKERS", 4),
			RefreshNextYear: getEnvAsBool("SCHEDULER_REFRESH_NEXT_YEAR", true),
		},
		Report: ReportConfig{
			FileType: getEnv("REPORT_FILE_TYPE", "pdf"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if cfg.Storage.Type == "s3" && cfg.Storage.S3Bucket == "" {
		return nil, errors.New("STORAGE_S3_BUCKET is required when STORAGE_TYPE is s3")
	}

	if _, err := time.LoadLocation(cfg.Scheduler.Timezone); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE %q: %w", cfg.Scheduler.Timezone, err)
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
