package index

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/biocache-indexer/internal/common"
	"github.com/ternarybob/biocache-indexer/internal/docbuilder"
)

func newTestAdapter(t *testing.T, batchSize, hardCommitSize int) (*Adapter, *embeddedTransport) {
	t.Helper()
	transport, err := newEmbeddedTransport(t.TempDir(), common.GetLogger())
	require.NoError(t, err)
	a := NewAdapter(transport, batchSize, hardCommitSize, 1000, 5000, 0, common.GetLogger())
	return a, transport
}

func docWithID(id string) Document {
	return Document{ID: id, Fields: map[string][]string{"scientific_name": {"x"}}}
}

func TestAdapter_FlushAndMaybeCommitShipsBufferedBatch(t *testing.T) {
	a, transport := newTestAdapter(t, 2, 1000)
	ctx := context.Background()

	require.NoError(t, a.transport.AddBatch(ctx, nil)) // sanity: transport usable directly

	a.mu.Lock()
	a.batch = append(a.batch, docWithID("1"), docWithID("2"))
	a.mu.Unlock()

	require.NoError(t, a.FlushAndMaybeCommit(ctx, false))

	transport.mu.RLock()
	defer transport.mu.RUnlock()
	assert.Len(t, transport.docs, 2)
}

func TestAdapter_AddNeverObservesBatchPastBatchSize(t *testing.T) {
	const batchSize = 5
	a, _ := newTestAdapter(t, batchSize, 1_000_000)
	schema := docbuilder.NewSchema(docbuilder.DefaultSchema())
	pool := docbuilder.NewPool(64)

	var maxObserved int64
	probe := func() {
		a.mu.Lock()
		n := int64(len(a.batch))
		a.mu.Unlock()
		for {
			old := atomic.LoadInt64(&maxObserved)
			if n <= old || atomic.CompareAndSwapInt64(&maxObserved, old, n) {
				break
			}
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		builder := docbuilder.NewBuilder(schema, a, pool, common.GetLogger())
		wg.Add(1)
		go func(builder *docbuilder.Builder) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				builder.NewDoc("row")
				builder.AddField("scientific_name", "x")
				require.NoError(t, builder.Index())
				probe()
			}
		}(builder)
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt64(&maxObserved), int64(batchSize))
}

func TestAdapter_HardCommitsAtThreshold(t *testing.T) {
	a, _ := newTestAdapter(t, 1, 2)
	ctx := context.Background()

	a.mu.Lock()
	a.batch = append(a.batch, docWithID("1"))
	a.mu.Unlock()
	require.NoError(t, a.FlushAndMaybeCommit(ctx, false))
	assert.Equal(t, 1, a.currentCommitSize)

	a.mu.Lock()
	a.batch = append(a.batch, docWithID("2"))
	a.mu.Unlock()
	require.NoError(t, a.FlushAndMaybeCommit(ctx, false))
	assert.Equal(t, 0, a.currentCommitSize)
}

func TestAdapter_EmptyIndexDeletesEverything(t *testing.T) {
	a, transport := newTestAdapter(t, 10, 1000)
	ctx := context.Background()

	require.NoError(t, transport.AddBatch(ctx, []Document{docWithID("1"), docWithID("2")}))
	require.NoError(t, a.EmptyIndex(ctx))

	transport.mu.RLock()
	defer transport.mu.RUnlock()
	assert.Empty(t, transport.docs)
}

func TestAdapter_FinaliseFlushesAndHardCommits(t *testing.T) {
	a, transport := newTestAdapter(t, 100, 100)
	ctx := context.Background()

	a.mu.Lock()
	a.batch = append(a.batch, docWithID("1"))
	a.mu.Unlock()

	require.NoError(t, a.Finalise(ctx, false, false))

	transport.mu.RLock()
	defer transport.mu.RUnlock()
	assert.Len(t, transport.docs, 1)
	assert.Equal(t, 0, a.currentCommitSize)
}

func TestAdapter_PageOverFacet(t *testing.T) {
	a, transport := newTestAdapter(t, 10, 1000)
	ctx := context.Background()

	require.NoError(t, transport.AddBatch(ctx, []Document{
		{ID: "1", Fields: map[string][]string{"species_group": {"Birds"}}},
		{ID: "2", Fields: map[string][]string{"species_group": {"Birds"}}},
		{ID: "3", Fields: map[string][]string{"species_group": {"Mammals"}}},
	}))

	var buckets []FacetBucket
	err := a.PageOverFacet(ctx, func(value string, count int) error {
		buckets = append(buckets, FacetBucket{Value: value, Count: count})
		return nil
	}, "species_group", "*:*", nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []FacetBucket{{Value: "Birds", Count: 2}, {Value: "Mammals", Count: 1}}, buckets)
}

func TestAdapter_StreamIndexReportsTotalBeforeFirstRow(t *testing.T) {
	a, transport := newTestAdapter(t, 10, 1000)
	ctx := context.Background()
	require.NoError(t, transport.AddBatch(ctx, []Document{docWithID("1"), docWithID("2")}))

	var total int
	var seen int
	err := a.StreamIndex(ctx, func(ResultRow) (bool, error) {
		seen++
		return true, nil
	}, []string{"scientific_name"}, "*:*", nil, "", nil, func(t int) { total = t }, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, seen)
}

func TestAdapter_StreamIndexStopsEarly(t *testing.T) {
	a, transport := newTestAdapter(t, 10, 1000)
	ctx := context.Background()
	require.NoError(t, transport.AddBatch(ctx, []Document{docWithID("1"), docWithID("2"), docWithID("3")}))

	var seen int
	err := a.StreamIndex(ctx, func(ResultRow) (bool, error) {
		seen++
		return seen < 1, nil
	}, []string{"scientific_name"}, "*:*", nil, "", nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}
