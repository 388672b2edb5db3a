package factory

import (
	"fmt"
	"prompt-builder-bot/pkg/llm"
	"prompt-builder-bot/pkg/llm/ollama"
	"prompt-builder-bot/pkg/llm/openai"
	"time"
)

// Config selects and parameterizes a completion backend
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "openai", "proxyapi":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openai.DefaultBaseURL
		}
		return openai.NewOpenAIProvider(cfg.APIKey, baseURL, cfg.Model, cfg.Timeout), nil
	case "huggingface":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openai.HuggingFaceBaseURL
		}
		return openai.NewOpenAIProvider(cfg.APIKey, baseURL, cfg.Model, cfg.Timeout), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
