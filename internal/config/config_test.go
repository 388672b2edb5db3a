package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"LLM_PROVIDER", "LLM_MODEL", "OPENAI_BASE_URL", "LLM_MAX_TOKENS", "LLM_TEMPERATURE",
		"LLM_TIMEOUT", "MAX_RETRIES", "RETRY_DELAY", "SESSION_TIMEOUT", "EXPORT_DIR", "DB_CONNECTION_STRING"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "openai", cfg.Ai.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.Ai.LLMModel)
	assert.Equal(t, "https://api.proxyapi.ru/openai/v1", cfg.Ai.BaseURL())
	assert.Equal(t, "exports", cfg.App.ExportDir)
	assert.Empty(t, cfg.Database.Connection)
	assert.Equal(t, 4000, cfg.Ai.MaxTokens)
	assert.Equal(t, 0.7, cfg.Ai.Temperature)
	assert.Equal(t, 30*time.Second, cfg.Ai.Timeout)
	assert.Equal(t, 3, cfg.Ai.MaxRetries)
	assert.Equal(t, time.Second, cfg.Ai.RetryDelay)
	assert.Equal(t, time.Hour, cfg.Session.Timeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")
	t.Setenv("LLM_MAX_TOKENS", "1024")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("RETRY_DELAY", "1.5")
	t.Setenv("SESSION_TIMEOUT", "15m")
	t.Setenv("MAX_RETRIES", "not a number")

	cfg := FromEnv()

	assert.Equal(t, "http://ollama:11434", cfg.Ai.BaseURL())
	assert.Equal(t, 1024, cfg.Ai.MaxTokens)
	assert.Equal(t, 0.2, cfg.Ai.Temperature)
	assert.Equal(t, 1500*time.Millisecond, cfg.Ai.RetryDelay)
	assert.Equal(t, 15*time.Minute, cfg.Session.Timeout)
	assert.Equal(t, 3, cfg.Ai.MaxRetries)
}

func TestValidate_RequiresJwtSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	assert.ErrorIs(t, FromEnv().Validate(), ErrMissingJwtSecret)

	t.Setenv("JWT_SECRET", "s3cret")
	assert.NoError(t, FromEnv().Validate())
}
