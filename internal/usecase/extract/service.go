// Package extract turns a job description into a technical/behavioral query pair.
package extract

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/domain"
	"github.com/kailas-cloud/recommender/internal/domain/query"
	"github.com/kailas-cloud/recommender/internal/logger"
	"github.com/kailas-cloud/recommender/internal/metrics"
)

// MaxInputRunes is how much of the job description reaches the prompt.
const MaxInputRunes = 2000

const (
	technicalMarker  = "TECHNICAL:"
	behavioralMarker = "BEHAVIORAL:"
	placeholder      = "{{JOB_DESCRIPTION}}"
)

// Extraction outcomes reported to metrics.
const (
	OutcomeParsed   = "parsed"
	OutcomePartial  = "partial"
	OutcomeFallback = "fallback"
)

//go:embed prompt.md
var promptTemplate string

// Service extracts search keywords with a text generator. A nil generator is allowed.
type Service struct {
	gen    domain.Generator
	logger *zap.Logger
}

// New creates an extraction service.
func New(gen domain.Generator, logger *zap.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

// Extract never fails: any generator problem degrades to the fallback pair.
func (s *Service) Extract(ctx context.Context, jobDescription string) query.Pair {
	text := Truncate(jobDescription, MaxInputRunes)
	fallback := query.Fallback(text)

	if s.gen == nil {
		metrics.ExtractionTotal.WithLabelValues(OutcomeFallback).Inc()
		return fallback
	}

	prompt := BuildPrompt(text)
	s.logger.Debug("Extracting keywords",
		zap.String("prompt_preview", logger.TruncateForLog(prompt, logger.DefaultPreviewLen)))

	resp, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Keyword extraction failed, using fallback queries", zap.Error(err))
		metrics.ExtractionTotal.WithLabelValues(OutcomeFallback).Inc()
		return fallback
	}

	s.logger.Debug("Keyword extraction response",
		zap.String("response_preview", logger.TruncateForLog(resp, logger.DefaultPreviewLen)))

	technical, behavioral := Parse(resp)

	pair := fallback
	found := 0
	if technical != "" {
		pair.Technical = technical
		found++
	}
	if behavioral != "" {
		pair.Behavioral = behavioral
		found++
	}

	switch found {
	case 2:
		metrics.ExtractionTotal.WithLabelValues(OutcomeParsed).Inc()
	case 1:
		metrics.ExtractionTotal.WithLabelValues(OutcomePartial).Inc()
	default:
		s.logger.Warn("Keyword extraction response had no markers, using fallback queries")
		metrics.ExtractionTotal.WithLabelValues(OutcomeFallback).Inc()
	}
	return pair
}

// generate turns a generator panic into an error.
func (s *Service) generate(ctx context.Context, prompt string) (resp string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	return s.gen.Generate(ctx, prompt)
}

// Parse reads the TECHNICAL:/BEHAVIORAL: lines of a model response. A missing marker or
// empty payload yields "". On a line with both markers the earlier one wins.
func Parse(resp string) (technical, behavioral string) {
	for _, line := range strings.Split(resp, "\n") {
		ti := strings.Index(line, technicalMarker)
		bi := strings.Index(line, behavioralMarker)

		switch {
		case ti >= 0 && (bi < 0 || ti < bi):
			if v := strings.TrimSpace(line[ti+len(technicalMarker):]); v != "" {
				technical = v
			}
		case bi >= 0:
			if v := strings.TrimSpace(line[bi+len(behavioralMarker):]); v != "" {
				behavioral = v
			}
		}
	}
	return technical, behavioral
}

// BuildPrompt places the (already truncated) job description into the template.
func BuildPrompt(text string) string {
	return strings.Replace(promptTemplate, placeholder, text, 1)
}

// Truncate keeps at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
