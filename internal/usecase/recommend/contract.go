package recommend

import (
	"context"

	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
	"github.com/kailas-cloud/recommender/internal/domain/query"
)

// Extractor turns a job description into search queries. It never fails.
type Extractor interface {
	Extract(ctx context.Context, jobDescription string) query.Pair
}

// Searcher returns up to k catalog records for a query, unique by url, best first.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]domassess.Record, error)
}
