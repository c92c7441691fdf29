package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"medals/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string
	DBMaxConns   int32

	// HTTP API
	ListenAddress string

	// NATS forwarding, disabled when NATSURL is empty
	NATSURL    string
	NATSStream string

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// OCR review
	OCRConfidenceThreshold float64

	// OpenTelemetry metrics
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.RWMutex
)

// Get returns the global configuration instance
func Get() *Config {
	mu.RLock()
	if instance != nil {
		defer mu.RUnlock()
		return instance
	}
	mu.RUnlock()

	once.Do(func() {
		cfg, err := load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
		mu.Lock()
		instance = cfg
		mu.Unlock()
	})

	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// SetTestConfig replaces the global configuration. Tests only.
func SetTestConfig(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// ResetConfig clears the global configuration so the next Get reloads it
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig returns a configuration suitable for tests
func NewTestConfig() *Config {
	return &Config{
		ListenAddress:            ":0",
		NATSStream:               "medal_events",
		LogLevel:                 "debug",
		LogFormat:                "text",
		OCRConfidenceThreshold:   0.80,
		OTelExporterType:         "none",
		OTelServiceName:          "medals-test",
		OTelExportIntervalMillis: 1000,
		Environment:              "test",
	}
}

// DatabaseConnectionURL combines DATABASE_URL and DATABASE_NAME
func (c *Config) DatabaseConnectionURL() (string, error) {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "")
	v.SetDefault("database_name", "")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("listen_address", ":8080")
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_stream", "medal_events")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("ocr_confidence_threshold", 0.80)
	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_exporter_type", "console")
	v.SetDefault("otel_otlp_endpoint", "localhost:4317")
	v.SetDefault("otel_service_name", "medals")
	v.SetDefault("otel_export_interval_millis", 30000)
	v.SetDefault("environment", "development")
}

// load reads an optional .env file, then the process environment
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("No .env file loaded")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	for _, key := range []string{
		"database_url", "database_name", "db_max_conns", "listen_address", "nats_url", "nats_stream",
		"log_level", "log_format", "ocr_confidence_threshold", "otel_enabled", "otel_exporter_type",
		"otel_otlp_endpoint", "otel_service_name", "otel_export_interval_millis", "environment",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:              v.GetString("database_url"),
		DatabaseName:             v.GetString("database_name"),
		DBMaxConns:               v.GetInt32("db_max_conns"),
		ListenAddress:            v.GetString("listen_address"),
		NATSURL:                  v.GetString("nats_url"),
		NATSStream:               v.GetString("nats_stream"),
		LogLevel:                 v.GetString("log_level"),
		LogFormat:                v.GetString("log_format"),
		OCRConfidenceThreshold:   v.GetFloat64("ocr_confidence_threshold"),
		OTelEnabled:              v.GetBool("otel_enabled"),
		OTelExporterType:         v.GetString("otel_exporter_type"),
		OTelOTLPEndpoint:         v.GetString("otel_otlp_endpoint"),
		OTelServiceName:          v.GetString("otel_service_name"),
		OTelExportIntervalMillis: v.GetInt("otel_export_interval_millis"),
		Environment:              v.GetString("environment"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.OCRConfidenceThreshold < 0 || c.OCRConfidenceThreshold > 1 {
		return fmt.Errorf("OCR_CONFIDENCE_THRESHOLD must be between 0 and 1, got %v", c.OCRConfidenceThreshold)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.Environment != "test" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}
