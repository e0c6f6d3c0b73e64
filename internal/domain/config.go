package domain

// KeyPrefix is the default namespace for every key the service writes.
const KeyPrefix = "recommender:"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
	Algorithm      string
	// SearchDepth is how many candidates each keyword query pulls from the index.
	SearchDepth int
}

// DefaultVectorConfig returns defaults tuned for text-embedding-3-small.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "text-embedding-3-small",
		Dimensions:     1536,
		DistanceMetric: "cosine",
		Algorithm:      "hnsw",
		SearchDepth:    20,
	}
}
