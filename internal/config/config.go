package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"sheetview/internal"
	"sheetview/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Session   SessionConfig
	View      ViewConfig
	Profiling ProfilingConfig
	LogLevel  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// UploadConfig bounds what a client may send
type UploadConfig struct {
	MaxBytes     int64
	RatePerMin   int
	Burst        int
	AllowedTypes []string
}

// SessionConfig sizes the in-memory session store
type SessionConfig struct {
	MaxSessions int
	TTL         time.Duration
}

// ViewConfig holds preview, chart and pacing settings
type ViewConfig struct {
	PreviewRows int
	ChartWidth  int
	ChartHeight int
	LoadDelay   time.Duration
	PlotDelay   time.Duration
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	if err := checkEnvSyntax(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	config := &Config{
		Server:    *loadServerConfig(),
		Upload:    *loadUploadConfig(),
		Session:   *loadSessionConfig(),
		View:      *loadViewConfig(),
		Profiling: *loadProfilingConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxBytes:     int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)) << 20,
		RatePerMin:   getEnvIntOrDefault("UPLOAD_RATE_PER_MIN", 30),
		Burst:        getEnvIntOrDefault("UPLOAD_BURST", 5),
		AllowedTypes: []string{".xlsx"},
	}
}

func loadSessionConfig() *SessionConfig {
	return &SessionConfig{
		MaxSessions: getEnvIntOrDefault("MAX_SESSIONS", 64),
		TTL:         getEnvDurationOrDefault("SESSION_TTL", 30*time.Minute),
	}
}

func loadViewConfig() *ViewConfig {
	return &ViewConfig{
		PreviewRows: getEnvIntOrDefault("PREVIEW_ROWS", 5),
		ChartWidth:  getEnvIntOrDefault("CHART_WIDTH", 960),
		ChartHeight: getEnvIntOrDefault("CHART_HEIGHT", 480),
		LoadDelay:   getEnvDurationOrDefault("LOAD_DELAY", 0),
		PlotDelay:   getEnvDurationOrDefault("PLOT_DELAY", 0),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

var (
	intKeys      = []string{"MAX_UPLOAD_MB", "UPLOAD_RATE_PER_MIN", "UPLOAD_BURST", "MAX_SESSIONS", "PREVIEW_ROWS", "CHART_WIDTH", "CHART_HEIGHT"}
	durationKeys = []string{"SESSION_TTL", "LOAD_DELAY", "PLOT_DELAY"}
	boolKeys     = []string{"PPROF_ENABLED"}
)

// checkEnvSyntax rejects set variables that do not parse; the getEnv helpers
// would otherwise fall back to their defaults
func checkEnvSyntax() error {
	for _, key := range intKeys {
		if value := os.Getenv(key); value != "" {
			if _, err := strconv.Atoi(value); err != nil {
				return errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
			}
		}
	}
	for _, key := range durationKeys {
		if value := os.Getenv(key); value != "" {
			if _, err := time.ParseDuration(value); err != nil {
				return errors.ConfigInvalid(fmt.Sprintf("%s must be a duration such as 30m, got %q", key, value))
			}
		}
	}
	for _, key := range boolKeys {
		if value := os.Getenv(key); value != "" {
			if _, err := strconv.ParseBool(value); err != nil {
				return errors.ConfigInvalid(fmt.Sprintf("%s must be true or false, got %q", key, value))
			}
		}
	}
	return nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Upload.RatePerMin <= 0 || config.Upload.Burst <= 0 {
		return errors.ConfigInvalid("UPLOAD_RATE_PER_MIN and UPLOAD_BURST must be positive")
	}
	if config.Session.MaxSessions <= 0 {
		return errors.ConfigInvalid("MAX_SESSIONS must be positive")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	if config.View.PreviewRows <= 0 {
		return errors.ConfigInvalid("PREVIEW_ROWS must be positive")
	}
	if config.View.ChartWidth < 100 || config.View.ChartHeight < 100 {
		return errors.ConfigInvalid("CHART_WIDTH and CHART_HEIGHT must be at least 100")
	}
	if config.View.LoadDelay < 0 || config.View.PlotDelay < 0 {
		return errors.ConfigInvalid("LOAD_DELAY and PLOT_DELAY cannot be negative")
	}
	if _, ok := internal.ParseLogLevel(config.LogLevel); !ok {
		return errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG, TRACE")
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
