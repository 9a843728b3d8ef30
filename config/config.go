package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values.
// Secrets never have defaults inside code and must come from the environment or a .env file.
type AppConfig struct {
	AppPort string
	GinMode string

	// Database. DatabaseURI overrides the discrete fields when set.
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	// Object storage (S3 compatible)
	BucketName     string
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3UseSSL       bool
	S3PublicBase   string
	S3UserSegment  string
	AllowedOrigins []string

	RateLimitPerMinute int

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Metrics export
	OTLPEndpoint          string
	ServiceName           string
	MetricsExportInterval int
}

// Load builds the configuration from defaults, an optional .env file and the process environment.
// It should be called once during boot and the result passed down explicitly.
func Load() (AppConfig, error) {
	// a missing .env is normal in containers
	_ = godotenv.Load()

	var cfg AppConfig
	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return AppConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate reports configuration that would make the service unusable.
func (c AppConfig) Validate() error {
	var errs []error
	if c.BucketName == "" {
		errs = append(errs, errors.New("S3_BUCKET_NAME must be set"))
	}
	if c.DatabaseURI == "" && c.DBHost == "" {
		errs = append(errs, errors.New("DB_HOST or DATABASE_URL must be set"))
	}
	if c.DatabaseURI == "" && c.DBName == "" {
		errs = append(errs, errors.New("DB_NAME must be set"))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}
	if c.MetricsExportInterval <= 0 {
		errs = append(errs, errors.New("METRICS_EXPORT_INTERVAL_SEC must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "cloudApplication"
	}
	if c.S3Endpoint == "" {
		c.S3Endpoint = "s3.amazonaws.com"
	}
	if c.S3UserSegment == "" {
		c.S3UserSegment = "default"
	}
	c.S3UseSSL = true
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.ServiceName == "" {
		c.ServiceName = "webapp"
	}
	if c.MetricsExportInterval == 0 {
		c.MetricsExportInterval = 60
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	var errs []error
	setInt := func(key string, dst *int) {
		v := getEnv(key, "")
		if v == "" {
			return
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid integer value %s=%q: %w", key, v, err))
			return
		}
		*dst = i
	}
	setBool := func(key string, dst *bool) {
		v := getEnv(key, "")
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid boolean value %s=%q: %w", key, v, err))
			return
		}
		*dst = b
	}

	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("DATABASE_URL", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}

	if v := getEnv("S3_BUCKET_NAME", ""); v != "" {
		c.BucketName = v
	}
	if v := getEnv("S3_ENDPOINT", ""); v != "" {
		c.S3Endpoint = v
	}
	if v := getEnv("S3_REGION", ""); v != "" {
		c.S3Region = v
	}
	if v := getEnv("S3_ACCESS_KEY", ""); v != "" {
		c.S3AccessKey = v
	}
	if v := getEnv("S3_SECRET_KEY", ""); v != "" {
		c.S3SecretKey = v
	}
	setBool("S3_USE_SSL", &c.S3UseSSL)
	if v := getEnv("S3_PUBLIC_BASE_URL", ""); v != "" {
		c.S3PublicBase = v
	}
	if v := getEnv("S3_USER_SEGMENT", ""); v != "" {
		c.S3UserSegment = v
	}

	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}

	// Logging env overrides
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	setBool("LOG_COMPRESS", &c.LogCompress)

	if v := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""); v != "" {
		c.OTLPEndpoint = v
	}
	if v := getEnv("OTEL_SERVICE_NAME", ""); v != "" {
		c.ServiceName = v
	}
	setInt("METRICS_EXPORT_INTERVAL_SEC", &c.MetricsExportInterval)

	return errors.Join(errs...)
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
