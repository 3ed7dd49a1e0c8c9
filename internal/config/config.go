// Package config reads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/analysis"
	"github.com/arealens/arealens/internal/climate/meteostat"
	"github.com/arealens/arealens/internal/weather/openweathermap"
)

// Config holds configuration shared by the API server and the worker.
type Config struct {
	Port        string
	Environment string
	LogLevel    zerolog.Level
	RequireTLS  bool

	OTelEnabled     bool
	OTLPEndpoint    string
	OTelSampleRatio float64

	ProviderTimeout       time.Duration
	LargeAreaThresholdKm2 float64
	ClimateReferenceYear  int

	OpenWeatherMapAPIKey string
	MeteostatAPIKey      string

	PubSubProjectID    string
	PubSubSubscription string
	PubSubResultTopic  string
}

// FromEnv creates a Config from environment variables. Unparseable values
// fall back to their defaults.
func FromEnv() Config {
	level, err := zerolog.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	timeout, err := time.ParseDuration(getEnvOrDefault("PROVIDER_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}
	threshold, err := strconv.ParseFloat(getEnvOrDefault("LARGE_AREA_THRESHOLD_KM2", "100"), 64)
	if err != nil || threshold <= 0 {
		threshold = analysis.DefaultLargeAreaThresholdKm2
	}
	ratio, err := strconv.ParseFloat(getEnvOrDefault("OTEL_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		ratio = 1
	}
	year, err := strconv.Atoi(getEnvOrDefault("CLIMATE_REFERENCE_YEAR", "2023"))
	if err != nil {
		year = 2023
	}

	return Config{
		Port:                  getEnvOrDefault("APP_PORT", "8080"),
		Environment:           getEnvOrDefault("APP_ENV", "development"),
		LogLevel:              level,
		RequireTLS:            os.Getenv("REQUIRE_TLS") == "true",
		OTelEnabled:           os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:          getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio:       ratio,
		ProviderTimeout:       timeout,
		LargeAreaThresholdKm2: threshold,
		ClimateReferenceYear:  year,
		OpenWeatherMapAPIKey:  os.Getenv("OPENWEATHERMAP_API_KEY"),
		MeteostatAPIKey:       os.Getenv("METEOSTAT_API_KEY"),
		PubSubProjectID:       os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubSubscription:    getEnvOrDefault("PUBSUB_SUBSCRIPTION", "area-analysis-jobs"),
		PubSubResultTopic:     getEnvOrDefault("PUBSUB_RESULT_TOPIC", "area-analysis-results"),
	}
}

// Credentials returns the provider credentials configured for the service.
// Providers without a key are omitted.
func (c Config) Credentials() analysis.Credentials {
	creds := analysis.Credentials{}
	if c.OpenWeatherMapAPIKey != "" {
		creds[openweathermap.ProviderName] = c.OpenWeatherMapAPIKey
	}
	if c.MeteostatAPIKey != "" {
		creds[meteostat.ProviderName] = c.MeteostatAPIKey
	}
	return creds
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
