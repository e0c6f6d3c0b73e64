package domain

import "errors"

var (
	// ErrNotReady signals that the catalog index has not been loaded yet.
	ErrNotReady = errors.New("recommender is not ready")
	// ErrCatalogNotFound signals a missing catalog location.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrInvalidCatalog signals a catalog that cannot be decoded.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrInvalidRecord signals an assessment record that fails validation.
	ErrInvalidRecord = errors.New("invalid assessment record")
	// ErrInvalidLimit signals a non-positive result size.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a text generation provider failure.
	ErrGenerationFailed = errors.New("text generation failed")
	// ErrSearchFailed signals a vector index failure.
	ErrSearchFailed = errors.New("search failed")
)
