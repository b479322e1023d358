package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort string

	// DBDriver selects the history store backend: "postgres" or "sqlite3".
	DBDriver    string
	DatabaseURL string // postgres connection string
	SQLitePath  string // sqlite database file

	// Provider selects the completion gateway; the matching API key is a
	// fatal startup condition when absent.
	Provider       string
	GeminiAPIKey   string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	Model          string
	GatewayTimeout time.Duration

	// HistoryWindow limits how many stored messages are forwarded per
	// completion call. Zero forwards the full history.
	HistoryWindow int
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.")
		// Don't fail if .env is not present, might be in production
	}

	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite3"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "carechat.db"),
		Provider:      getEnv("LLM_PROVIDER", ProviderGemini),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		Model:         getEnv("LLM_MODEL", ""),
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			log.Fatal("FATAL: DATABASE_URL must be set when DB_DRIVER=postgres.")
		}
	case "sqlite", "sqlite3":
		cfg.DBDriver = "sqlite3"
	default:
		log.Fatalf("FATAL: Unsupported DB_DRIVER %q (expected postgres or sqlite3).", cfg.DBDriver)
	}

	// Refuse to start serving chat traffic without the provider credential.
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			log.Fatal("FATAL: GEMINI_API_KEY environment variable is not set.")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			log.Fatal("FATAL: OPENAI_API_KEY environment variable is not set.")
		}
	default:
		log.Fatalf("FATAL: Unsupported LLM_PROVIDER %q (expected gemini or openai).", cfg.Provider)
	}

	timeoutSeconds := getEnvInt("GATEWAY_TIMEOUT_SECONDS", 60)
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	cfg.GatewayTimeout = time.Duration(timeoutSeconds) * time.Second

	cfg.HistoryWindow = getEnvInt("HISTORY_WINDOW", 0)
	if cfg.HistoryWindow < 0 {
		cfg.HistoryWindow = 0
	}

	log.Printf("Loaded config: Port=%s, DBDriver=%s, Provider=%s, GatewayTimeout=%s, HistoryWindow=%d",
		cfg.HTTPPort, cfg.DBDriver, cfg.Provider, cfg.GatewayTimeout, cfg.HistoryWindow)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s', using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return v
}
