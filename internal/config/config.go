// Package config loads application configuration from the environment,
// with .env file support for local development.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Tickers overrides the extractor's built-in allow-list. Nil keeps
	// the default dictionary.
	Tickers []string

	// MaxNewTickers caps discovery promotions per run.
	MaxNewTickers int

	// Paths
	DataDir      string // working state: registry, videos, channel config
	OutputDir    string // website data directory the feed publishes into
	ChannelsFile string

	// YouTube
	YouTubeAPIKey string

	// Market data
	AlphaVantageAPIKey string
	FMPAPIKey          string

	// LLM configuration
	LLM LLMConfig

	// Optional backing stores
	DatabaseURL   string // PostgreSQL registry mirror
	ClickHouseDSN string // price history cache

	// Redis configuration (analysis cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// MetricsAddr serves /metrics when set (e.g. ":9100").
	MetricsAddr string
}

// LLMConfig holds the OpenRouter client configuration.
type LLMConfig struct {
	Endpoint string
	APIKey   string
	Model    string
}

// LoadFromEnv loads configuration from environment variables.
// Returns an error when the LLM API key is missing: the analysis
// pipeline cannot run without it.
func LoadFromEnv() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set; get a key at https://openrouter.ai/keys")
	}

	model := os.Getenv("CREW_MODEL")
	if model == "" {
		model = os.Getenv("OPENROUTER_MODEL")
	}

	dataDir := getEnvOrDefault("DATA_DIR", "data")

	return &Config{
		Tickers:       tickersFromEnv(),
		MaxNewTickers: getEnvInt("MAX_NEW_TICKERS", 5),

		DataDir:      dataDir,
		OutputDir:    getEnvOrDefault("OUTPUT_DIR", "output"),
		ChannelsFile: getEnvOrDefault("CHANNELS_FILE", dataDir+"/channels.json"),

		YouTubeAPIKey: os.Getenv("YOUTUBE_API_KEY"),

		AlphaVantageAPIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		FMPAPIKey:          os.Getenv("FINANCIAL_MODELING_PREP_API_KEY"),

		LLM: LLMConfig{
			Endpoint: getEnvOrDefault("OPENROUTER_ENDPOINT", ""),
			APIKey:   apiKey,
			Model:    model,
		},

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		ClickHouseDSN: os.Getenv("CLICKHOUSE_DSN"),

		RedisHost:     getEnvOrDefault("REDIS_HOST", ""),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}, nil
}

// tickersFromEnv parses CREW_TICKERS (or TICKERS) into an uppercase
// list. Nil when unset.
func tickersFromEnv() []string {
	raw := os.Getenv("CREW_TICKERS")
	if raw == "" {
		raw = os.Getenv("TICKERS")
	}
	if raw == "" {
		return nil
	}

	var tickers []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}

// getEnvOrDefault returns the env value or a default when unset.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the env value as an int or a default when unset or
// unparseable.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
