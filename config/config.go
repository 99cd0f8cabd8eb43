package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"animalitos/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL            string
	DatabaseName           string
	DatabaseConnectTimeout time.Duration

	// Local fallback store
	LocalStorePath       string
	LocalFallbackEnabled bool
	SyncInterval         time.Duration

	// Ledger configuration
	PotsFile string // TOML pot configuration used to seed an empty registry
	PrizePot string // Pot that settlements pay out of

	// HTTP admin API
	HTTPPort string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables forwarding

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int
	OTelServiceName          string

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
		instance, err = load()
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

// Init loads the configuration into the global instance, returning load
// errors instead of panicking
func Init() (*Config, error) {
	loaded, err := load()
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	instance = loaded
	return instance, nil
}

// Load reads the configuration from the environment without touching the global instance
func Load() (*Config, error) {
	return load()
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		DatabaseName:           os.Getenv("DATABASE_NAME"),
		DatabaseConnectTimeout: 5 * time.Second,

		// Local store
		LocalStorePath:       getEnvWithDefault("LOCAL_STORE_PATH", "data/animalitos-local.db"),
		LocalFallbackEnabled: getEnvWithDefault("LOCAL_FALLBACK_ENABLED", "true") == "true",
		SyncInterval:         30 * time.Second,

		// Ledger
		PotsFile: getEnvWithDefault("POTS_FILE", "pots.toml"),
		PrizePot: getEnvWithDefault("PRIZE_POT", "Prize"),

		// HTTP
		HTTPPort: getEnvWithDefault("HTTP_PORT", "8080"),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "localhost:4317"),
		OTelExportIntervalMillis: 60000,
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "animalitos-ledger"),

		// Logging
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		// Environment
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MS"); interval != "" {
		parsed, err := strconv.Atoi(interval)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("OTEL_EXPORT_INTERVAL_MS must be a positive integer, got %q", interval)
		}
		config.OTelExportIntervalMillis = parsed
	}
	if interval := os.Getenv("SYNC_INTERVAL"); interval != "" {
		parsed, err := time.ParseDuration(interval)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("SYNC_INTERVAL must be a positive duration, got %q", interval)
		}
		config.SyncInterval = parsed
	}
	if timeout := os.Getenv("DATABASE_CONNECT_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("DATABASE_CONNECT_TIMEOUT must be a positive duration, got %q", timeout)
		}
		config.DatabaseConnectTimeout = parsed
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.Environment != "test" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.PrizePot) == "" {
		return fmt.Errorf("PRIZE_POT cannot be empty")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	switch c.OTelExporterType {
	case "console", "otlp", "none":
	default:
		return fmt.Errorf("OTEL_EXPORTER_TYPE must be console, otlp or none, got %q", c.OTelExporterType)
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
		LocalFallbackEnabled:     true,
		SyncInterval:             time.Second,
		PrizePot:                 "Prize",
		HTTPPort:                 "0",
		OTelExporterType:         "none",
		OTelExportIntervalMillis: 1000,
		OTelServiceName:          "animalitos-test",
		LogLevel:                 "debug",
		LogFormat:                "text",
		Environment:              "test",
	}
}
