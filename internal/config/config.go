package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	JwtSecret          string
	NatsURL            string
	RedisURL           string
	ExportDir          string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	// Empty disables the prompt archive
	Connection string
}

type AIConfig struct {
	LLMProvider   string // "openai", "proxyapi", "huggingface" or "ollama"
	LLMModel      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaBaseURL string
	MaxTokens     int
	Temperature   float64
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
}

type SessionConfig struct {
	Timeout         time.Duration
	CleanupInterval time.Duration
}

// BaseURL is the endpoint of the selected provider
func (c AIConfig) BaseURL() string {
	if c.LLMProvider == "ollama" {
		return c.OllamaBaseURL
	}
	return c.OpenAIBaseURL
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}
	return FromEnv()
}

var ErrMissingJwtSecret = errors.New("JWT_SECRET is required")

// Validate reports settings the HTTP server cannot run without
func (c *Config) Validate() error {
	if c.App.JwtSecret == "" {
		return ErrMissingJwtSecret
	}
	return nil
}

// FromEnv reads the configuration from the process environment only
func FromEnv() *Config {
	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			ExportDir:          getEnv("EXPORT_DIR", "exports"),
			OtelEnabled:        getEnv("OTEL_ENABLED", "") == "true",
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
			LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.proxyapi.ru/openai/v1"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 4000),
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			Timeout:       getEnvAsSeconds("LLM_TIMEOUT", 30*time.Second),
			MaxRetries:    getEnvAsInt("MAX_RETRIES", 3),
			RetryDelay:    getEnvAsSeconds("RETRY_DELAY", time.Second),
		},
		Session: SessionConfig{
			Timeout:         getEnvAsSeconds("SESSION_TIMEOUT", time.Hour),
			CleanupInterval: getEnvAsSeconds("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsSeconds reads a number of seconds ("30", "1.5") or a Go duration ("30s")
func getEnvAsSeconds(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if seconds, err := strconv.ParseFloat(strValue, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	return fallback
}
