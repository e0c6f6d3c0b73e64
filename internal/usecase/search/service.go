// Package search answers a free-text query with the nearest catalog assessments.
package search

import (
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/recommender/internal/domain"
	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
)

// overFetch is the candidate multiplier applied before url deduplication.
const overFetch = 2

// Service embeds a query and runs KNN over the catalog index.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a search service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Search returns at most k records, unique by url, best (lowest distance) first.
func (s *Service) Search(ctx context.Context, query string, k int) ([]domassess.Record, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidLimit)
	}

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := s.repo.SearchKNN(ctx, embResult.Embedding, k*overFetch)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	slices.SortStableFunc(candidates, func(a, b domassess.Record) int {
		switch {
		case a.Score() < b.Score():
			return -1
		case a.Score() > b.Score():
			return 1
		default:
			return 0
		}
	})

	return Dedupe(candidates, k), nil
}

// Dedupe keeps the first record per url, stopping after k records.
func Dedupe(records []domassess.Record, k int) []domassess.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]domassess.Record, 0, min(k, len(records)))
	for _, r := range records {
		if len(out) >= k {
			break
		}
		if _, dup := seen[r.URL()]; dup {
			continue
		}
		seen[r.URL()] = struct{}{}
		out = append(out, r)
	}
	return out
}
