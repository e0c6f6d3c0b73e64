package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recommender/internal/domain"
	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
)

// --- Mocks ---

type mockIndex struct {
	mu          sync.Mutex
	fingerprint string
	count       int
	upserted    map[string]int
	upsertCalls int
	resets      int
	ensures     int
	upsertErr   error
}

func newMockIndex() *mockIndex {
	return &mockIndex{upserted: make(map[string]int)}
}

func (m *mockIndex) EnsureIndex(_ context.Context) error {
	m.ensures++
	return nil
}

func (m *mockIndex) Count(_ context.Context) (int, error) { return m.count, nil }

func (m *mockIndex) Upsert(_ context.Context, records []domassess.Record, vectors [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if len(records) != len(vectors) {
		return errors.New("length mismatch")
	}
	for _, r := range records {
		m.upserted[r.URL()]++
	}
	m.count += len(records)
	return nil
}

func (m *mockIndex) Fingerprint(_ context.Context) (string, error) { return m.fingerprint, nil }

func (m *mockIndex) SetFingerprint(_ context.Context, fp string) error {
	m.fingerprint = fp
	return nil
}

func (m *mockIndex) Reset(_ context.Context) error {
	m.resets++
	m.count = 0
	m.fingerprint = ""
	return nil
}

type mockEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

// batchEmbedder additionally supports the native batch endpoint.
type batchEmbedder struct {
	mockEmbedder
	batchCalls int
}

func (b *batchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	b.mu.Lock()
	b.batchCalls++
	b.mu.Unlock()
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{float32(i), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}

func makeRecords(t *testing.T, n int) []domassess.Record {
	t.Helper()
	out := make([]domassess.Record, n)
	for i := range out {
		rec, err := domassess.New(fmt.Sprintf("https://example.com/%d", i), fmt.Sprintf("Test %d", i),
			"desc", 10, []string{"Knowledge & Skills"}, domassess.SupportNo, domassess.SupportYes)
		require.NoError(t, err)
		out[i] = rec
	}
	return out
}

// --- Tests ---

func TestRun_FreshIndex(t *testing.T) {
	idx := newMockIndex()
	emb := &batchEmbedder{}
	svc := New(idx, emb, zap.NewNop()).WithBatchSize(4).WithWorkers(2)

	records := makeRecords(t, 10)
	res, err := svc.Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, Result{Total: 10, Embedded: 10}, res)
	assert.Equal(t, 3, emb.batchCalls, "10 records in batches of 4")
	assert.Equal(t, 0, emb.calls)
	assert.Len(t, idx.upserted, 10)
	assert.Equal(t, 0, idx.resets)
	assert.Equal(t, Fingerprint("", records), idx.fingerprint)
}

func TestRun_FallsBackToSingleEmbed(t *testing.T) {
	idx := newMockIndex()
	emb := &mockEmbedder{}

	_, err := New(idx, emb, zap.NewNop()).WithBatchSize(2).Run(context.Background(), makeRecords(t, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, emb.calls)
	assert.Equal(t, 2, idx.upsertCalls)
}

func TestRun_SkipsUnchangedCatalog(t *testing.T) {
	records := makeRecords(t, 3)
	idx := newMockIndex()
	idx.fingerprint = Fingerprint("m", records)
	idx.count = 3
	emb := &mockEmbedder{}

	res, err := New(idx, emb, zap.NewNop()).WithFingerprintSalt("m").Run(context.Background(), records)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, 0, emb.calls)
	assert.Equal(t, 0, idx.upsertCalls)
}

func TestRun_MatchingFingerprintButEmptyIndex(t *testing.T) {
	records := makeRecords(t, 2)
	idx := newMockIndex()
	idx.fingerprint = Fingerprint("", records)

	res, err := New(idx, &mockEmbedder{}, zap.NewNop()).Run(context.Background(), records)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 2, res.Embedded)
}

func TestRun_ChangedCatalogResets(t *testing.T) {
	idx := newMockIndex()
	idx.fingerprint = "stale"
	idx.count = 7

	_, err := New(idx, &mockEmbedder{}, zap.NewNop()).Run(context.Background(), makeRecords(t, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, idx.resets)
	assert.Equal(t, 2, idx.count)
}

func TestRun_PartialIndexWithoutFingerprintResets(t *testing.T) {
	idx := newMockIndex()
	idx.count = 3

	res, err := New(idx, &mockEmbedder{}, zap.NewNop()).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 1, idx.resets)
	assert.Equal(t, 0, idx.count, "records missing from the catalog must not stay indexed")
	assert.Equal(t, Fingerprint("", nil), idx.fingerprint)
}

func TestRun_PartialIndexIsRebuilt(t *testing.T) {
	idx := newMockIndex()
	idx.count = 5

	res, err := New(idx, &mockEmbedder{}, zap.NewNop()).Run(context.Background(), makeRecords(t, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, idx.resets)
	assert.Equal(t, 2, res.Embedded)
	assert.Equal(t, 2, idx.count)
}

func TestRun_ReindexForcesRebuild(t *testing.T) {
	records := makeRecords(t, 2)
	idx := newMockIndex()
	idx.fingerprint = Fingerprint("", records)
	idx.count = 2

	res, err := New(idx, &mockEmbedder{}, zap.NewNop()).WithReindex(true).Run(context.Background(), records)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 1, idx.resets)
	assert.Equal(t, 2, res.Embedded)
}

func TestRun_EmbeddingError(t *testing.T) {
	idx := newMockIndex()
	emb := &mockEmbedder{err: fmt.Errorf("boom: %w", domain.ErrEmbeddingProviderError)}

	_, err := New(idx, emb, zap.NewNop()).Run(context.Background(), makeRecords(t, 3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingProviderError))
	assert.Empty(t, idx.fingerprint, "fingerprint must not be stored after a failed run")
}

func TestRun_UpsertError(t *testing.T) {
	idx := newMockIndex()
	idx.upsertErr = errors.New("store down")

	_, err := New(idx, &mockEmbedder{}, zap.NewNop()).Run(context.Background(), makeRecords(t, 1))
	assert.Error(t, err)
	assert.Empty(t, idx.fingerprint)
}

func TestFingerprint(t *testing.T) {
	a := makeRecords(t, 3)
	b := makeRecords(t, 3)

	assert.Equal(t, Fingerprint("x", a), Fingerprint("x", b))
	assert.NotEqual(t, Fingerprint("x", a), Fingerprint("y", a))
	assert.NotEqual(t, Fingerprint("x", a), Fingerprint("x", a[:2]))
}
