package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/recommender/internal/domain"
	domassess "github.com/kailas-cloud/recommender/internal/domain/assessment"
	"github.com/kailas-cloud/recommender/internal/domain/query"
)

// --- Mocks ---

type mockExtractor struct {
	pair query.Pair
}

func (m *mockExtractor) Extract(_ context.Context, _ string) query.Pair { return m.pair }

type mockSearcher struct {
	mu      sync.Mutex
	byQuery map[string][]domassess.Record
	errFor  string
	gotK    []int
}

func (m *mockSearcher) Search(_ context.Context, q string, k int) ([]domassess.Record, error) {
	m.mu.Lock()
	m.gotK = append(m.gotK, k)
	m.mu.Unlock()
	if q == m.errFor {
		return nil, domain.ErrEmbeddingProviderError
	}
	return m.byQuery[q], nil
}

func newSearcher() *mockSearcher {
	return &mockSearcher{byQuery: map[string][]domassess.Record{
		"java":     recs("A", "B", "C"),
		"teamwork": recs("D", "E", "F"),
	}}
}

// --- Tests ---

func TestRecommend_NotReady(t *testing.T) {
	svc := New(&mockExtractor{})
	assert.False(t, svc.Ready())

	_, err := svc.Recommend(context.Background(), "q", 5)
	assert.True(t, errors.Is(err, domain.ErrNotReady))
}

func TestRecommend_Balanced(t *testing.T) {
	searcher := newSearcher()
	svc := New(&mockExtractor{pair: query.Pair{Technical: "java", Behavioral: "teamwork"}}).WithSearchDepth(7)
	svc.Attach(searcher)
	require.True(t, svc.Ready())

	got, err := svc.Recommend(context.Background(), "Java developer", 4)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "D", "B", "E"}, urlsOf(got.Items))
	assert.Equal(t, "java", got.Queries.Technical)
	assert.ElementsMatch(t, []int{7, 7}, searcher.gotK)
}

func TestRecommend_ClampsLimit(t *testing.T) {
	svc := New(&mockExtractor{pair: query.Pair{Technical: "java", Behavioral: "teamwork"}})
	svc.Attach(newSearcher())

	tests := []struct {
		limit int
		want  int
	}{
		{0, 1},
		{-1, 1},
		{3, 3},
		{50, 6},
	}
	for _, tt := range tests {
		got, err := svc.Recommend(context.Background(), "q", tt.limit)
		require.NoError(t, err)
		assert.Len(t, got.Items, tt.want, "limit %d", tt.limit)
	}
}

func TestRecommend_SearchError(t *testing.T) {
	searcher := newSearcher()
	searcher.errFor = "teamwork"
	svc := New(&mockExtractor{pair: query.Pair{Technical: "java", Behavioral: "teamwork"}})
	svc.Attach(searcher)

	got, err := svc.Recommend(context.Background(), "q", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingProviderError))
	assert.Equal(t, "teamwork", got.Queries.Behavioral)
	assert.Empty(t, got.Items)
}
