package bootstrap

import (
	"context"
	"testing"

	"prompt-builder-bot/internal/config"
	"prompt-builder-bot/internal/dto"
	"prompt-builder-bot/internal/pkg/logger"
	"prompt-builder-bot/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(provider string) *config.Config {
	cfg := &config.Config{}
	cfg.Ai.LLMProvider = provider
	cfg.Ai.LLMModel = "llama3"
	cfg.Ai.OllamaBaseURL = "http://127.0.0.1:1"
	cfg.App.ExportDir = "exports"
	return cfg
}

func TestNewDialogue_UnsupportedProvider(t *testing.T) {
	_, err := NewDialogue(nil, testConfig("gemini"), logger.NewNopLogger(), nil)
	assert.ErrorContains(t, err, "unsupported LLM provider")
}

func TestNewDialogue_WithoutDatabase(t *testing.T) {
	dialogue, err := NewDialogue(nil, testConfig("ollama"), logger.NewNopLogger(), service.NewNoopPublisherService())
	require.NoError(t, err)

	_, err = dialogue.Archive(context.Background(), "42")
	assert.ErrorIs(t, err, service.ErrArchiveDisabled)

	reply := dialogue.HandleMessage(context.Background(), "42", "short")
	assert.Equal(t, dto.ReplyValidationError, reply.Kind)
	assert.Equal(t, "AWAITING_TASK_DESCRIPTION", reply.State)
}
