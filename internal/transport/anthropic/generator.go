// Package anthropic implements text generation on the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/domain"
	"github.com/kailas-cloud/recommender/internal/logger"
	"github.com/kailas-cloud/recommender/internal/metrics"
)

const (
	providerName     = "anthropic"
	defaultMaxTokens = 1000
)

// Compile-time check: Generator implements domain.Generator.
var _ domain.Generator = (*Generator)(nil)

// Config holds Anthropic settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Logger    *zap.Logger
}

// Generator produces text with a single-turn Messages request.
type Generator struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewGenerator creates an Anthropic generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("anthropic api key is required")
	}

	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}

	return &Generator{
		client:    anthropic.NewClient(cfg.APIKey, opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    l,
	}, nil
}

// Generate sends the prompt as one user message and concatenates the text blocks of the reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(g.model),
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(prompt)},
			},
		},
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		metrics.ObserveGeneration(providerName, g.model, start, err)
		g.logger.Warn("Anthropic create messages failed",
			append(logger.CommonFields(providerName, g.model), zap.Error(err))...)
		return "", fmt.Errorf("create messages: %w: %w", domain.ErrGenerationFailed, classify(err))
	}
	metrics.ObserveGeneration(providerName, g.model, start, nil)

	var parts []string
	for _, c := range resp.Content {
		if c.Text != nil && strings.TrimSpace(*c.Text) != "" {
			parts = append(parts, strings.TrimSpace(*c.Text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no response content: %w", domain.ErrGenerationFailed)
	}
	return strings.Join(parts, "\n"), nil
}

func classify(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) && apiErr.IsRateLimitErr() {
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return err
}
