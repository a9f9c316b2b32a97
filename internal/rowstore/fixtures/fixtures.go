// Package fixtures generates synthetic occurrence rows for the
// badgerstore dev-mode row store and for integration tests, so the
// indexing engine can be exercised end-to-end without a live production
// row store. This package only ever writes through the
// rowstore.RowStore interface.
package fixtures

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/biocache-indexer/internal/rowstore"
)

// Record is one synthetic occurrence to load, expressed as a plain
// column map plus the audit metadata the badgerstore indexes on.
type Record struct {
	Columns    rowstore.Row
	ModifiedAt time.Time
	UserIDs    []string
}

// Loader is the narrow slice of badgerstore.Store a fixture loader needs:
// an Upsert-style Put keyed by a generated row key.
type Loader interface {
	Put(rowKey string, columns rowstore.Row, modifiedAt time.Time, userIDs []string) error
}

// NewRowKey generates a stable-format synthetic row key, matching the
// "batch_<uuid>" shape common.NewBatchID uses for batch IDs so log output
// can visually distinguish the two without parsing.
func NewRowKey() string {
	return "row_" + uuid.New().String()
}

// Load writes each Record into store under a freshly generated row key,
// returning the generated keys in load order.
func Load(store Loader, records []Record) ([]string, error) {
	keys := make([]string, 0, len(records))
	for i, rec := range records {
		key := NewRowKey()
		if err := store.Put(key, rec.Columns, rec.ModifiedAt, rec.UserIDs); err != nil {
			return keys, fmt.Errorf("fixtures: loading record %d: %w", i, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// MinimalOccurrence builds the smallest column set that passes the
// engine's eligibility check (a non-empty deleted column excludes a
// record, and a map with only one entry is never eligible), useful as a
// base a test can layer additional columns onto.
func MinimalOccurrence(scientificName string) rowstore.Row {
	return rowstore.Row{
		"scientificName": scientificName,
		"basisOfRecord":  "HumanObservation",
	}
}
