package fixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/biocache-indexer/internal/common"
	"github.com/ternarybob/biocache-indexer/internal/rowstore/badgerstore"
)

func TestLoad_GeneratesDistinctRowKeysAndRoundTrips(t *testing.T) {
	store, err := badgerstore.Open(common.GetLogger(), t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	records := []Record{
		{Columns: MinimalOccurrence("Vulpes vulpes"), ModifiedAt: time.Now(), UserIDs: []string{"u1"}},
		{Columns: MinimalOccurrence("Canis lupus"), ModifiedAt: time.Now()},
	}

	keys, err := Load(store, records)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])

	row, ok, err := store.Get(nil, keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Vulpes vulpes", row["scientificName"])
}

func TestNewRowKey_HasStablePrefix(t *testing.T) {
	k := NewRowKey()
	assert.Contains(t, k, "row_")
}
