package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// Completion provider (dialogue turns)
	TogetherAPIKey  string
	ModelName       string
	ProviderTimeout time.Duration

	// Chat-completion provider (roster generation)
	OpenAIAPIKey string
	RosterModel  string

	// Memory store
	ChromaURL    string
	ChromaTenant string
	ChromaDB     string
	ChromaAPIKey string

	// Storage
	RedisURL string
	DataDir  string

	// Startup defaults; blank means no persona is active until one is
	// loaded over the API.
	DefaultCharacterFile   string
	DefaultEnvironmentFile string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		TogetherAPIKey:  os.Getenv("TOGETHER_API_KEY"),
		ModelName:       getEnv("MODEL_NAME", "ServiceNow-AI/Apriel-1.6-15b-Thinker"),
		ProviderTimeout: parseDuration(getEnv("PROVIDER_TIMEOUT", "60s"), 60*time.Second),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		RosterModel:  getEnv("ROSTER_MODEL", "gpt-4o-mini"),

		ChromaURL:    getEnv("CHROMA_URL", "http://localhost:8000"),
		ChromaTenant: getEnv("CHROMA_TENANT", "default_tenant"),
		ChromaDB:     getEnv("CHROMA_DATABASE", "default_database"),
		ChromaAPIKey: os.Getenv("CHROMA_API_KEY"),

		RedisURL: getEnv("REDIS_URL", "localhost:6379"),
		DataDir:  getEnv("DATA_DIR", "./JSONData"),

		DefaultCharacterFile:   getEnv("DEFAULT_CHARACTER_FILE", "KaiyaStarling.json"),
		DefaultEnvironmentFile: getEnv("DEFAULT_ENVIRONMENT_FILE", "environment.json"),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	// Tolerate bare seconds, e.g. PROVIDER_TIMEOUT=60.
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
