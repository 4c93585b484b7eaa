package config

import (
	"fmt"
	"os"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	FrontendURL     string
	MemoryFile      string
	PromptsFile     string
	OpenAIKey       string
	AIProvider      string
	AIModel         string
	AIBaseURL       string
	RateLimit       string
	EnableHSTS      bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		MemoryFile:      getEnv("MEMORY_FILE", "data/user_memories.json"),
		PromptsFile:     getEnv("PROMPTS_FILE", ""),
		OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
		AIProvider:      getEnv("AI_PROVIDER", "openai"),
		AIModel:         getEnv("AI_MODEL", ""),
		AIBaseURL:       getEnv("AI_BASE_URL", ""),
		RateLimit:       getEnv("RATE_LIMIT", "60-M"),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.MemoryFile == "" {
		return nil, fmt.Errorf("MEMORY_FILE must not be empty")
	}

	// OPENAI_API_KEY is optional: without it the agents fall back to
	// canned responses, which keeps local development workable offline.

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
