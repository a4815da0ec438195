package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Host string
	Port int

	// Storage configuration
	StorageDir string

	// LLM configuration
	LLMEndpoint string
	LLMModel    string
	LLMTimeout  time.Duration
	LLMEnabled  bool

	// Metrics configuration
	MetricsEnabled bool
	MetricsHost    string
	MetricsPort    int

	// Logging configuration
	LogLevel string
}

// Load reads configuration from environment variables. Every value has
// a default; the service runs out of the box against a local Ollama.
func Load() (*Config, error) {
	cfg := &Config{
		Host:       getEnv("HOST", "localhost"),
		Port:       getEnvInt("PORT", 4200),
		StorageDir: getEnv("STORAGE_DIR", "./data/storage"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		LLMEndpoint: getEnv("LLM_ENDPOINT", "http://localhost:11434"),
		LLMModel:    getEnv("LLM_MODEL", "llama3:8b-instruct-q4_1"),
		LLMEnabled:  getEnvBool("LLM_ENABLED", true),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsHost:    getEnv("METRICS_HOST", "localhost"),
		MetricsPort:    getEnvInt("METRICS_PORT", 4201),
	}

	timeoutSecs := getEnvInt("LLM_TIMEOUT_SECONDS", 30)
	if timeoutSecs < 1 {
		return nil, fmt.Errorf("LLM_TIMEOUT_SECONDS must be at least 1, got %d", timeoutSecs)
	}
	cfg.LLMTimeout = time.Duration(timeoutSecs) * time.Second

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
