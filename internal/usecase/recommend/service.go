// Package recommend orchestrates keyword extraction, the two catalog searches and the
// balanced merge of their results.
package recommend

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/recommender/internal/domain"
	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
	"github.com/kailas-cloud/recommender/internal/domain/query"
	"github.com/kailas-cloud/recommender/internal/logger"
	"github.com/kailas-cloud/recommender/internal/metrics"
)

const defaultSearchDepth = 20

// Recommendation is the outcome of one request.
type Recommendation struct {
	Queries query.Pair
	Items   []domassess.Record
}

// searcherHolder lets atomic.Pointer carry an interface value.
type searcherHolder struct {
	Searcher
}

// Service serves recommendations once a searcher has been attached.
type Service struct {
	extract     Extractor
	searcher    atomic.Pointer[searcherHolder]
	searchDepth int
}

// New creates a recommender that is not ready until Attach is called.
func New(extract Extractor) *Service {
	return &Service{extract: extract, searchDepth: defaultSearchDepth}
}

// WithSearchDepth sets how many candidates each keyword search returns.
func (s *Service) WithSearchDepth(k int) *Service {
	if k > 0 {
		s.searchDepth = k
	}
	return s
}

// Attach installs the searcher over the loaded catalog and marks the service ready.
func (s *Service) Attach(searcher Searcher) {
	s.searcher.Store(&searcherHolder{Searcher: searcher})
}

// Ready reports whether the catalog has been loaded.
func (s *Service) Ready() bool {
	return s.searcher.Load() != nil
}

// Recommend returns at most ClampLimit(limit) assessments for the job description.
func (s *Service) Recommend(ctx context.Context, jobDescription string, limit int) (Recommendation, error) {
	holder := s.searcher.Load()
	if holder == nil {
		metrics.RecommendationsTotal.WithLabelValues("not_ready").Inc()
		return Recommendation{}, domain.ErrNotReady
	}
	limit = ClampLimit(limit)

	pair := s.extract.Extract(ctx, jobDescription)
	logger.FromContext(ctx).Debug("Search queries",
		zap.String("technical", logger.TruncateForLog(pair.Technical, logger.DefaultPreviewLen)),
		zap.String("behavioral", logger.TruncateForLog(pair.Behavioral, logger.DefaultPreviewLen)),
	)

	var technical, behavioral []domassess.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		technical, err = holder.Search(gctx, pair.Technical, s.searchDepth)
		if err != nil {
			return fmt.Errorf("technical search: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		behavioral, err = holder.Search(gctx, pair.Behavioral, s.searchDepth)
		if err != nil {
			return fmt.Errorf("behavioral search: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return Recommendation{Queries: pair}, err
	}

	items := Balance(technical, behavioral, limit)
	metrics.RecommendationsTotal.WithLabelValues("success").Inc()
	metrics.RecommendationSize.Observe(float64(len(items)))

	return Recommendation{Queries: pair, Items: items}, nil
}
