package factory

import (
	"prompt-builder-bot/pkg/llm/ollama"
	"prompt-builder-bot/pkg/llm/openai"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantType any
	}{
		{"openai", &openai.OpenAIProvider{}},
		{"proxyapi", &openai.OpenAIProvider{}},
		{"huggingface", &openai.OpenAIProvider{}},
		{"ollama", &ollama.OllamaProvider{}},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewLLMProvider(Config{Provider: tt.provider, Model: "m"})
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, p)
		})
	}
}

func TestNewLLMProvider_OllamaDefaultURL(t *testing.T) {
	p, err := NewLLMProvider(Config{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", p.(*ollama.OllamaProvider).BaseURL)
}

func TestNewLLMProvider_Unsupported(t *testing.T) {
	_, err := NewLLMProvider(Config{Provider: "gemini"})
	assert.EqualError(t, err, "unsupported LLM provider: gemini")
}
