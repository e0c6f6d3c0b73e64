// Package ingest writes the assessment catalog into the vector index.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/recommender/internal/domain"
	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
	"github.com/kailas-cloud/recommender/internal/metrics"
)

const (
	defaultBatchSize = 32
	defaultWorkers   = 4
)

// Result summarizes one ingest run.
type Result struct {
	Total    int
	Embedded int
	Skipped  bool
}

// Service embeds catalog records and stores them in the index.
type Service struct {
	index     IndexWriter
	embed     Embedder
	logger    *zap.Logger
	batchSize int
	workers   int
	reindex   bool
	salt      string
}

// New creates an ingest service.
func New(index IndexWriter, embed Embedder, logger *zap.Logger) *Service {
	return &Service{
		index:     index,
		embed:     embed,
		logger:    logger,
		batchSize: defaultBatchSize,
		workers:   defaultWorkers,
	}
}

// WithBatchSize sets how many records are embedded per provider call.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithWorkers bounds the number of batches in flight.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithReindex forces a full rebuild even when the catalog is unchanged.
func (s *Service) WithReindex(reindex bool) *Service {
	s.reindex = reindex
	return s
}

// WithFingerprintSalt mixes extra state (e.g. the embedding model) into the fingerprint,
// so switching models re-embeds the catalog.
func (s *Service) WithFingerprintSalt(salt string) *Service {
	s.salt = salt
	return s
}

// Run makes the index hold exactly records. An unchanged catalog over a populated
// index is skipped.
func (s *Service) Run(ctx context.Context, records []domassess.Record) (Result, error) {
	res := Result{Total: len(records)}
	fp := Fingerprint(s.salt, records)

	stored, err := s.index.Fingerprint(ctx)
	if err != nil {
		return res, fmt.Errorf("read fingerprint: %w", err)
	}

	if err := s.index.EnsureIndex(ctx); err != nil {
		return res, fmt.Errorf("ensure index: %w", err)
	}
	indexed, err := s.index.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count index: %w", err)
	}

	if !s.reindex && stored == fp && indexed > 0 {
		s.logger.Info("Catalog unchanged, skipping ingest",
			zap.Int("records", len(records)), zap.Int("indexed", indexed))
		res.Skipped = true
		return res, nil
	}

	// Documents without a matching fingerprint are cleared, even when none was stored.
	if s.reindex || stored != "" || indexed > 0 {
		s.logger.Info("Resetting catalog index",
			zap.Bool("reindex", s.reindex), zap.Bool("fingerprint_changed", stored != fp),
			zap.Int("indexed", indexed))
		if err := s.index.Reset(ctx); err != nil {
			return res, fmt.Errorf("reset index: %w", err)
		}
		if err := s.index.EnsureIndex(ctx); err != nil {
			return res, fmt.Errorf("ensure index: %w", err)
		}
	}

	embedded, err := s.write(ctx, records)
	res.Embedded = embedded
	if err != nil {
		return res, err
	}

	if err := s.index.SetFingerprint(ctx, fp); err != nil {
		return res, fmt.Errorf("store fingerprint: %w", err)
	}

	s.logger.Info("Catalog ingested",
		zap.Int("records", len(records)), zap.Int("batch_size", s.batchSize), zap.Int("workers", s.workers))
	return res, nil
}

func (s *Service) write(ctx context.Context, records []domassess.Record) (int, error) {
	var embedded atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for start := 0; start < len(records); start += s.batchSize {
		batch := records[start:min(start+s.batchSize, len(records))]
		g.Go(func() error {
			if err := s.writeBatch(gctx, batch); err != nil {
				metrics.IngestedRecordsTotal.WithLabelValues("error").Add(float64(len(batch)))
				return err
			}
			metrics.IngestedRecordsTotal.WithLabelValues("ok").Add(float64(len(batch)))
			embedded.Add(int64(len(batch)))
			return nil
		})
	}

	err := g.Wait()
	return int(embedded.Load()), err
}

func (s *Service) writeBatch(ctx context.Context, batch []domassess.Record) error {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = rec.EmbeddingText()
	}

	res, err := domain.BatchEmbed(ctx, s.embed, texts)
	if err != nil {
		return fmt.Errorf("embed batch starting at %s: %w", batch[0].URL(), err)
	}
	if len(res.Embeddings) != len(batch) {
		return fmt.Errorf("embed batch: got %d vectors for %d records: %w",
			len(res.Embeddings), len(batch), domain.ErrEmbeddingProviderError)
	}

	if err := s.index.Upsert(ctx, batch, res.Embeddings); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

// Fingerprint hashes the normalized catalog content together with salt.
func Fingerprint(salt string, records []domassess.Record) string {
	h := sha256.New()
	h.Write([]byte(salt))
	for _, rec := range records {
		h.Write([]byte{0})
		h.Write([]byte(strings.Join([]string{
			rec.URL(),
			rec.Name(),
			rec.Description(),
			strconv.Itoa(rec.Duration()),
			strings.Join(rec.TestTypes(), "|"),
			string(rec.AdaptiveSupport()),
			string(rec.RemoteSupport()),
		}, "\x1f")))
	}
	return hex.EncodeToString(h.Sum(nil))
}
