package search

import (
	"context"

	"github.com/kailas-cloud/recommender/internal/domain"
	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
)

// Repository defines the storage contract for catalog search.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, k int) ([]domassess.Record, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
