package ingest

import (
	"context"

	"github.com/kailas-cloud/recommender/internal/domain"
	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
)

// IndexWriter owns the catalog vector index.
type IndexWriter interface {
	EnsureIndex(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Upsert(ctx context.Context, records []domassess.Record, vectors [][]float32) error
	Fingerprint(ctx context.Context) (string, error)
	SetFingerprint(ctx context.Context, fp string) error
	Reset(ctx context.Context) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
