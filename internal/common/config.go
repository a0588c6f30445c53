package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Providers ProvidersConfig
	Raster    RasterConfig
	History   HistoryConfig
}

// ProvidersConfig holds per-backend credentials and model selection.
// An empty APIKey means the backend is present but not configured.
type ProvidersConfig struct {
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
	GeminiKey      string
	GeminiModel    string
	Timeout        time.Duration
}

// RasterConfig holds page-rendering configuration.
type RasterConfig struct {
	Pdftoppm    string // binary name or absolute path; if empty -> "pdftoppm"
	DPI         int    // render DPI for PDF pages, default 150
	JPEGQuality int    // re-encode quality for raster images, default 85
	MaxPages    int    // 0 = no limit
}

// HistoryConfig holds extraction-history configuration.
type HistoryConfig struct {
	DBPath string // empty -> in-memory only
	Limit  int    // bounded history size, default 10
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Providers: ProvidersConfig{
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			GeminiKey:      getEnv("GEMINI_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
			Timeout:        getEnvAsDuration("PROVIDER_TIMEOUT", 60*time.Second),
		},
		Raster: RasterConfig{
			Pdftoppm:    getEnv("PDFTOPPM", "pdftoppm"),
			DPI:         getEnvAsInt("RASTER_DPI", 150),
			JPEGQuality: getEnvAsInt("RASTER_JPEG_QUALITY", 85),
			MaxPages:    getEnvAsInt("RASTER_MAX_PAGES", 0),
		},
		History: HistoryConfig{
			DBPath: getEnv("HISTORY_DB_PATH", ""),
			Limit:  getEnvAsInt("HISTORY_LIMIT", 10),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
