// Package llm selects the text generation provider used for keyword extraction.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/config"
	"github.com/kailas-cloud/recommender/internal/domain"
	"github.com/kailas-cloud/recommender/internal/transport/anthropic"
	"github.com/kailas-cloud/recommender/internal/transport/gemini"
	"github.com/kailas-cloud/recommender/internal/transport/openai"
)

// NewGenerator builds the configured generator. Provider "none" returns a nil
// generator: extraction then always takes the fallback path.
func NewGenerator(ctx context.Context, cfg config.GenerationConfig, log *zap.Logger) (domain.Generator, error) {
	var (
		gen domain.Generator
		err error
	)

	switch provider := strings.ToLower(cfg.Provider); provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderGemini:
		gen, err = gemini.NewGenerator(ctx, gemini.Config{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Logger:    log,
		})
	case config.ProviderOpenAI:
		gen = openai.NewGenerator(&openai.GeneratorConfig{
			Config: openai.Config{
				APIKey:   cfg.APIKey,
				BaseURL:  cfg.BaseURL,
				Model:    cfg.Model,
				Provider: provider,
				Logger:   log,
			},
			MaxTokens: cfg.MaxTokens,
		})
	case config.ProviderAnthropic:
		gen, err = anthropic.NewGenerator(anthropic.Config{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Logger:    log,
		})
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s generator: %w", cfg.Provider, err)
	}

	if cfg.TimeoutSec > 0 {
		gen = WithTimeout(gen, time.Duration(cfg.TimeoutSec)*time.Second)
	}
	return gen, nil
}

// timeoutGenerator bounds every Generate call with a deadline.
type timeoutGenerator struct {
	inner   domain.Generator
	timeout time.Duration
}

// WithTimeout wraps g so that a hung provider call cannot block a request indefinitely.
func WithTimeout(g domain.Generator, timeout time.Duration) domain.Generator {
	return &timeoutGenerator{inner: g, timeout: timeout}
}

func (g *timeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.inner.Generate(ctx, prompt)
}

// HealthCheck passes through when the wrapped provider supports it.
func (g *timeoutGenerator) HealthCheck(ctx context.Context) error {
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
