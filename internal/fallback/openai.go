// Package fallback is the probabilistic-model boundary. The engine only
// reaches it when no deterministic resolver matches; its failures are
// converted to guess answers upstream, never request failures.
package fallback

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/rbrowning13/IMC-CMS-sub001/internal/domain"
)

// citationRe matches bracketed source ids in model output, e.g. [report:12].
var citationRe = regexp.MustCompile(`\[([a-z]+:\d+)\]`)

// OpenAIAnswerer answers free-form questions from claim-scoped evidence
// using a chat-completion model, behind a circuit breaker so a degraded
// upstream fails fast instead of stalling every request.
type OpenAIAnswerer struct {
	client    *openai.Client
	model     string
	maxTokens int
	breaker   *gobreaker.CircuitBreaker
	log       *logrus.Logger
}

// NewOpenAIAnswerer builds the fallback client from configuration.
func NewOpenAIAnswerer(cfg domain.FallbackConfig, logger *logrus.Logger) (*OpenAIAnswerer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("fallback API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 500
	}
	if cfg.BreakerMax == 0 {
		cfg.BreakerMax = 3
	}
	if cfg.BreakerTrip == 0 {
		cfg.BreakerTrip = 5
	}

	settings := gobreaker.Settings{
		Name:        "FallbackAnswerer",
		MaxRequests: cfg.BreakerMax,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerTrip
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from_state":      from.String(),
				"to_state":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &OpenAIAnswerer{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     model,
		maxTokens: maxTokens,
		breaker:   gobreaker.NewCircuitBreaker(settings),
		log:       logger,
	}, nil
}

// Answer asks the model the question against the supplied evidence set.
// The returned cited ids are parsed from the model output and restricted
// to ids that appear in the evidence.
func (a *OpenAIAnswerer) Answer(ctx context.Context, question string, sources []domain.Source) (*domain.FallbackResult, error) {
	prompt := buildPrompt(question, sources)

	result, err := a.breaker.Execute(func() (interface{}, error) {
		return a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleSystem,
					Content: "You answer questions about a single insurance claim using only the " +
						"evidence snippets provided. Cite evidence ids in square brackets, " +
						"e.g. [report:12]. If the evidence does not cover the question, say so.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   a.maxTokens,
			Temperature: 0.2,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("fallback completion: %w", err)
	}

	resp := result.(openai.ChatCompletionResponse)
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("fallback completion: empty response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)

	a.log.WithFields(logrus.Fields{
		"model":   resp.Model,
		"sources": len(sources),
		"tokens":  resp.Usage.TotalTokens,
	}).Info("Fallback answer generated")

	return &domain.FallbackResult{
		Text:     text,
		CitedIDs: extractCitedIDs(text, sources),
		Model:    resp.Model,
	}, nil
}

func buildPrompt(question string, sources []domain.Source) string {
	var b strings.Builder
	b.WriteString("Evidence:\n")
	if len(sources) == 0 {
		b.WriteString("(none)\n")
	}
	for _, s := range sources {
		fmt.Fprintf(&b, "[%s] %s: %s\n", s.ID, s.Label, s.Text)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", question)
	b.WriteString("\nAnswer in 1-3 sentences, citing only the evidence ids above.")
	return b.String()
}

// extractCitedIDs returns the evidence ids the model actually cited, in
// order of first appearance, restricted to the supplied evidence set.
func extractCitedIDs(text string, sources []domain.Source) []string {
	allowed := make(map[string]bool, len(sources))
	for _, s := range sources {
		allowed[s.ID] = true
	}

	var cited []string
	seen := make(map[string]bool)
	for _, m := range citationRe.FindAllStringSubmatch(text, -1) {
		id := m[1]
		if allowed[id] && !seen[id] {
			cited = append(cited, id)
			seen[id] = true
		}
	}
	return cited
}
