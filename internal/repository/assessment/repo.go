// Package assessment persists catalog entries and their embeddings in the vector index.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/recommender/internal/db"
	"github.com/kailas-cloud/recommender/internal/domain"
	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
)

// store is the consumer interface for catalog persistence (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig holds HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores assessments as hashes under <prefix><index>:<uuid> and searches them via KNN.
type Repo struct {
	store     store
	prefix    string
	index     string
	vectorDim int
	hnsw      HNSWConfig
}

// New creates an assessment repository. keyPrefix defaults to domain.KeyPrefix.
func New(s store, keyPrefix, index string, vectorDim int) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: keyPrefix, index: index, vectorDim: vectorDim}
}

// WithHNSW sets custom HNSW parameters for index creation.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// IndexName returns the FT index name, e.g. "recommender:assessments:idx".
func (r *Repo) IndexName() string {
	return r.docPrefix() + "idx"
}

// EnsureIndex creates the HNSW/COSINE index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := db.NewIndex(r.IndexName()).
		Prefix(r.docPrefix()).
		Tag(fieldURL, "").
		Tag(fieldAdaptive, "").
		Tag(fieldRemote, "").
		Tag(fieldTestType, testTypeSeparator).
		Numeric(fieldDuration).
		VectorHNSW(fieldVector, r.vectorDim, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		As("vector").
		Build()
	if err != nil {
		return fmt.Errorf("build index %s: %w", r.index, err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.index, err)
	}
	return nil
}

// Upsert writes records with their vectors in one pipelined batch.
// Keys are derived from the url, so re-ingesting a record overwrites it.
func (r *Repo) Upsert(ctx context.Context, records []domassess.Record, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("records/vectors length mismatch: %d != %d", len(records), len(vectors))
	}
	if len(records) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(records))
	for i, rec := range records {
		if len(vectors[i]) != r.vectorDim {
			return fmt.Errorf("record %s: vector dimension %d, expected %d",
				rec.URL(), len(vectors[i]), r.vectorDim)
		}
		for _, t := range rec.TestTypes() {
			if strings.Contains(t, testTypeSeparator) {
				return fmt.Errorf("record %s: test type %q contains %q: %w",
					rec.URL(), t, testTypeSeparator, domain.ErrInvalidRecord)
			}
		}
		items[i] = db.HashSetItem{Key: r.DocKey(rec.URL()), Fields: buildHashFields(rec, vectors[i])}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d assessments: %w", len(items), err)
	}
	return nil
}

// Count returns the number of indexed assessments.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.IndexName(), "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("count %s: %w", r.index, err)
	}
	return n, nil
}

// SearchKNN returns up to k nearest assessments with raw cosine distances as scores.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]domassess.Record, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.IndexName(),
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("search %s: %w", r.index, domain.ErrNotReady)
		}
		return nil, fmt.Errorf("search %s: %w: %w", r.index, domain.ErrSearchFailed, err)
	}
	if sr == nil {
		return nil, nil
	}

	records := make([]domassess.Record, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		rec := parseHashFields(e.Fields).WithScore(e.Score)
		if rec.URL() == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Fingerprint returns the stored catalog fingerprint, or "" if none.
func (r *Repo) Fingerprint(ctx context.Context) (string, error) {
	data, err := r.store.Get(ctx, r.fingerprintKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get fingerprint: %w", err)
	}
	return string(data), nil
}

// SetFingerprint stores the fingerprint of the ingested catalog.
func (r *Repo) SetFingerprint(ctx context.Context, fp string) error {
	if err := r.store.Set(ctx, r.fingerprintKey(), []byte(fp)); err != nil {
		return fmt.Errorf("set fingerprint: %w", err)
	}
	return nil
}

// Reset drops the index, deletes every stored assessment and forgets the fingerprint.
func (r *Repo) Reset(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.IndexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", r.index, err)
	}

	keys, err := r.store.Scan(ctx, r.docPrefix()+"*")
	if err != nil {
		return fmt.Errorf("scan %s: %w", r.index, err)
	}
	keys = append(keys, r.fingerprintKey())

	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("delete %s: %w", r.index, err)
	}
	return nil
}

// DocKey returns the hash key of the assessment with the given url.
func (r *Repo) DocKey(url string) string {
	return r.docPrefix() + uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()
}

func (r *Repo) docPrefix() string {
	return r.prefix + r.index + ":"
}

func (r *Repo) fingerprintKey() string {
	return r.prefix + "meta:" + r.index + ":fingerprint"
}
