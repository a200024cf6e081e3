package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"statflow/internal"
	"statflow/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Compute  ComputeConfig
	Export   ExportConfig
	Upload   UploadConfig
	Metrics  MetricsConfig
	LogLevel internal.LogLevel
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds database connection settings. An empty URL keeps
// run history in memory.
type DatabaseConfig struct {
	URL            string
	MaxOpenConns   int
	MemoryRunLimit int
}

// Enabled reports whether run history goes to PostgreSQL
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ComputeConfig points at the statistics service
type ComputeConfig struct {
	URL     string
	Timeout time.Duration
}

// ExportConfig holds the document service and capture settings
type ExportConfig struct {
	ServiceURL     string
	Timeout        time.Duration
	CaptureEnabled bool
	CaptureTimeout time.Duration
	ChromePath     string
	Parallel       int
}

// UploadConfig limits uploaded tables
type UploadConfig struct {
	MaxBytes int64
	MaxRows  int
}

// MetricsConfig holds the ops server settings
type MetricsConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	computeConfig, err := loadComputeConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load compute configuration")
	}
	config.Compute = *computeConfig

	exportConfig, err := loadExportConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load export configuration")
	}
	config.Export = *exportConfig

	config.Server = *loadServerConfig()
	config.Database = *loadDatabaseConfig()
	config.Upload = *loadUploadConfig()
	config.Metrics = *loadMetricsConfig()

	level, ok := internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	if !ok {
		return nil, errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG, TRACE")
	}
	config.LogLevel = level

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadComputeConfig() (*ComputeConfig, error) {
	raw := strings.TrimSpace(os.Getenv("COMPUTE_SERVICE_URL"))
	if raw == "" {
		return nil, errors.ConfigInvalid("COMPUTE_SERVICE_URL is required")
	}
	if err := checkURL(raw); err != nil {
		return nil, errors.ConfigInvalid("COMPUTE_SERVICE_URL " + err.Error())
	}
	return &ComputeConfig{
		URL:     raw,
		Timeout: getEnvDurationOrDefault("COMPUTE_TIMEOUT", 60*time.Second),
	}, nil
}

func loadExportConfig() (*ExportConfig, error) {
	raw := strings.TrimSpace(os.Getenv("EXPORT_SERVICE_URL"))
	if raw != "" {
		if err := checkURL(raw); err != nil {
			return nil, errors.ConfigInvalid("EXPORT_SERVICE_URL " + err.Error())
		}
	}
	return &ExportConfig{
		ServiceURL:     raw,
		Timeout:        getEnvDurationOrDefault("EXPORT_TIMEOUT", 120*time.Second),
		CaptureEnabled: getEnvBoolOrDefault("CAPTURE_ENABLED", false),
		CaptureTimeout: getEnvDurationOrDefault("CAPTURE_TIMEOUT", 30*time.Second),
		ChromePath:     getEnvOrDefault("CHROME_PATH", ""),
		Parallel:       getEnvIntOrDefault("EXPORT_PARALLEL", 4),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:            getEnvOrDefault("DATABASE_URL", ""),
		MaxOpenConns:   getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		MemoryRunLimit: getEnvIntOrDefault("MEMORY_RUN_LIMIT", 1000),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxBytes: int64(getEnvIntOrDefault("UPLOAD_MAX_MB", 32)) << 20,
		MaxRows:  getEnvIntOrDefault("UPLOAD_MAX_ROWS", 100000),
	}
}

func loadMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Port:    getEnvOrDefault("METRICS_PORT", "9090"),
		Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true),
	}
}

func validateConfig(config *Config) error {
	if config.Compute.Timeout <= 0 {
		return errors.ConfigInvalid("COMPUTE_TIMEOUT must be positive")
	}
	if config.Export.Parallel <= 0 {
		return errors.ConfigInvalid("EXPORT_PARALLEL must be positive")
	}
	if config.Metrics.Enabled && config.Metrics.Port == config.Server.Port {
		return errors.ConfigInvalid("METRICS_PORT must differ from PORT")
	}
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("UPLOAD_MAX_MB must be positive")
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.InvalidInput("is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.InvalidInput("must use http or https")
	}
	if u.Host == "" {
		return errors.InvalidInput("must include a host")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("90s") or whole seconds
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
