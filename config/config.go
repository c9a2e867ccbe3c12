package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"poporingbot/database"
)

// Preference backends
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string

	// Preference store configuration
	PreferenceBackend string // "redis" or "postgres"
	RedisURL          string
	DatabaseURL       string
	DatabaseName      string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables publishing

	// Poporing API configuration
	SEAAPIURL    string
	GlobalAPIURL string
	HTTPTimeout  time.Duration

	// Message handling
	MessageTimeout     time.Duration
	ReplyRatePerSecond float64
	ReplyBurst         int

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),

		PreferenceBackend: strings.ToLower(getEnvWithDefault("PREFERENCE_BACKEND", BackendRedis)),
		RedisURL:          getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DatabaseName:      os.Getenv("DATABASE_NAME"),

		NATSServers: os.Getenv("NATS_SERVERS"),

		SEAAPIURL:    getEnvWithDefault("POPORING_SEA_API_URL", "https://api.poporing.life"),
		GlobalAPIURL: getEnvWithDefault("POPORING_GLOBAL_API_URL", "https://api-global.poporing.life"),

		OTelEnabled:      getEnvWithDefault("OTEL_ENABLED", "false") == "true",
		OTelExporterType: getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint: getEnvWithDefault("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
		OTelServiceName:  getEnvWithDefault("OTEL_SERVICE_NAME", "poporingbot"),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	var err error
	if config.HTTPTimeout, err = getDurationWithDefault("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.MessageTimeout, err = getDurationWithDefault("MESSAGE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	config.ReplyRatePerSecond = 1
	if v := os.Getenv("REPLY_RATE_PER_SECOND"); v != "" {
		if config.ReplyRatePerSecond, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid REPLY_RATE_PER_SECOND: %w", err)
		}
	}
	config.ReplyBurst = 5
	if v := os.Getenv("REPLY_BURST"); v != "" {
		if config.ReplyBurst, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid REPLY_BURST: %w", err)
		}
	}
	config.OTelExportIntervalMillis = 60000
	if v := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); v != "" {
		if config.OTelExportIntervalMillis, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid OTEL_EXPORT_INTERVAL_MILLIS: %w", err)
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.PreferenceBackend {
	case BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("PREFERENCE_BACKEND must be %q or %q, got %q", BackendRedis, BackendPostgres, c.PreferenceBackend)
	}
	if c.ReplyRatePerSecond <= 0 || c.ReplyBurst <= 0 {
		return fmt.Errorf("REPLY_RATE_PER_SECOND and REPLY_BURST must be positive")
	}

	if c.Environment == "test" {
		return nil
	}
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.PreferenceBackend == BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres preference backend")
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:             "test-token",
		PreferenceBackend:        BackendRedis,
		SEAAPIURL:                "https://api.poporing.life",
		GlobalAPIURL:             "https://api-global.poporing.life",
		HTTPTimeout:              10 * time.Second,
		MessageTimeout:           30 * time.Second,
		ReplyRatePerSecond:       1,
		ReplyBurst:               5,
		OTelExporterType:         "none",
		OTelServiceName:          "poporingbot-test",
		OTelExportIntervalMillis: 60000,
		LogLevel:                 "info",
		LogFormat:                "text",
		Environment:              "test",
	}
}
