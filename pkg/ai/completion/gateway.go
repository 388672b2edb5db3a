// Package completion adapts an llm.LLMProvider to the three generation phases
// of the prompt builder: clarifying questions, recommendations and the final
// prompt document.
package completion

import (
	"context"
	"errors"
	"fmt"
	"prompt-builder-bot/internal/constant"
	"prompt-builder-bot/internal/pkg/logger"
	"prompt-builder-bot/pkg/llm"
	"prompt-builder-bot/pkg/recommendation"
	"prompt-builder-bot/pkg/store"
	"regexp"
	"strings"
	"time"
)

const moduleName = "CompletionGateway"

// ErrGenerationFailed is returned by the Generate* methods when the model
// could not produce a usable response. The underlying cause is wrapped.
var ErrGenerationFailed = errors.New("generation failed")

// questionMarker matches list numbering ("1.", "2)") and bullets at line start
var questionMarker = regexp.MustCompile(`^\s*(?:\d+\s*[.)]|[-*•])\s*`)

type Config struct {
	MaxRetries  int
	RetryDelay  time.Duration
	MaxTokens   int
	Temperature float64
}

// MaxCallDuration is the longest one Generate call can take when every
// attempt runs into attemptTimeout: all attempts plus the doubling waits.
func (c Config) MaxCallDuration(attemptTimeout time.Duration) time.Duration {
	attempts := c.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	total := time.Duration(attempts) * attemptTimeout
	wait := c.RetryDelay
	for i := 1; i < attempts; i++ {
		total += wait
		wait *= 2
	}
	return total
}

type Gateway struct {
	provider   llm.LLMProvider
	normalizer recommendation.Normalizer
	cfg        Config
	logger     logger.ILogger
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewGateway(provider llm.LLMProvider, normalizer recommendation.Normalizer, cfg Config, logger logger.ILogger) *Gateway {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &Gateway{
		provider:   provider,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// sleepContext waits for d without holding up anything but the caller
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CallWithRetry sends one system+user exchange, repeating it up to maxAttempts
// times while the provider reports transient failures. The wait between
// attempts starts at the configured delay and doubles each time.
func (g *Gateway) CallWithRetry(ctx context.Context, systemPrompt, userMessage string, maxAttempts int) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	history := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: userMessage},
	}
	delay := g.cfg.RetryDelay

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		g.logger.Debug(moduleName, "Completion request", map[string]interface{}{
			"attempt":      attempt,
			"max_attempts": maxAttempts,
		})

		resp, err := g.provider.Chat(ctx, history,
			llm.WithMaxTokens(g.cfg.MaxTokens),
			llm.WithTemperature(g.cfg.Temperature),
		)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !llm.IsTransient(err) {
			g.logger.Error(moduleName, "Completion failed", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			return "", err
		}

		if attempt == maxAttempts {
			break
		}

		g.logger.Warn(moduleName, "Transient completion error, retrying", map[string]interface{}{
			"attempt": attempt,
			"delay":   delay.String(),
			"error":   err.Error(),
		})
		if err := g.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("retry wait interrupted: %w", err)
		}
		delay *= 2
	}

	g.logger.Error(moduleName, "All completion attempts failed", map[string]interface{}{
		"attempts": maxAttempts,
		"error":    lastErr.Error(),
	})
	return "", fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func (g *Gateway) generate(ctx context.Context, phase, systemPrompt, userMessage string) (string, error) {
	resp, err := g.CallWithRetry(ctx, systemPrompt, userMessage, g.cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrGenerationFailed, phase, err)
	}
	if strings.TrimSpace(resp) == "" {
		return "", fmt.Errorf("%w: %s: empty response", ErrGenerationFailed, phase)
	}
	return resp, nil
}

// GenerateClarificationQuestions asks the model for questions about task
func (g *Gateway) GenerateClarificationQuestions(ctx context.Context, task string) ([]string, error) {
	resp, err := g.generate(ctx, "questions", constant.ClarificationSystemPrompt,
		fmt.Sprintf(constant.ClarificationUserMessageTemplate, task))
	if err != nil {
		return nil, err
	}

	questions := ExtractQuestions(resp)
	g.logger.Info(moduleName, "Clarification questions generated", map[string]interface{}{
		"count": len(questions),
	})
	return questions, nil
}

// GenerateRecommendations asks the model for a recommendation based on task
// and the collected answers, in answer order.
func (g *Gateway) GenerateRecommendations(ctx context.Context, task string, answers []store.Answer) (store.Recommendation, error) {
	resp, err := g.generate(ctx, "recommendations", constant.RecommendationSystemPrompt,
		fmt.Sprintf(constant.RecommendationUserMessageTemplate, task, FormatAnswers(answers)))
	if err != nil {
		return store.Recommendation{}, err
	}
	return g.normalizer.Normalize(resp), nil
}

// GenerateFinalDocument asks the model for the prompt document
func (g *Gateway) GenerateFinalDocument(ctx context.Context, task string, rec store.Recommendation) (string, error) {
	resp, err := g.generate(ctx, "final document", constant.FinalDocumentSystemPrompt,
		fmt.Sprintf(constant.FinalDocumentUserMessageTemplate, task, FormatRecommendationBlock(rec)))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

// ExtractQuestions keeps the numbered or bulleted lines of raw that end with a
// question mark. When none qualify the whole trimmed response is one question.
func ExtractQuestions(raw string) []string {
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !isListItem(line) {
			continue
		}
		q := strings.TrimSpace(strings.TrimLeft(questionMarker.ReplaceAllString(line, ""), "- "))
		if q != "" && strings.HasSuffix(q, "?") {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return []string{strings.TrimSpace(raw)}
	}
	return questions
}

func isListItem(line string) bool {
	if line == "" {
		return false
	}
	if line[0] >= '0' && line[0] <= '9' {
		return true
	}
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•")
}

// FormatAnswers renders answers as "Question: q\nAnswer: a\n" blocks
func FormatAnswers(answers []store.Answer) string {
	blocks := make([]string, len(answers))
	for i, a := range answers {
		blocks[i] = fmt.Sprintf(constant.AnswerTemplate, a.Question, a.Answer)
	}
	return strings.Join(blocks, "\n")
}

// FormatRecommendationBlock renders rec for the final-document request
func FormatRecommendationBlock(rec store.Recommendation) string {
	return fmt.Sprintf(constant.RecommendationBlockTemplate,
		orNotSpecified(rec.TechStack),
		orNotSpecified(rec.Architecture),
		orNotSpecified(strings.Join(rec.KeyFeatures, ", ")),
		orNotSpecified(rec.Scalability),
		orNotSpecified(rec.Compliance),
		orNotSpecified(strings.Join(rec.Risks, ", ")),
		orNotSpecified(rec.Summary),
	)
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return constant.NotSpecified
	}
	return s
}
