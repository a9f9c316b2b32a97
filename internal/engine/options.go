package engine

import "time"

// MiscFieldConfig describes how the `miscProperties` column's entries
// are promoted to index fields, with configurable column projection.
type MiscFieldConfig struct {
	// IndexProperties are keys that get a default "_s" suffix unless
	// they already carry a typed suffix (_i/_d/_dt).
	IndexProperties []string

	// UserProvidedTypeProperties are keys whose own suffix (typed or
	// not) is kept verbatim.
	UserProvidedTypeProperties []string

	// AdditionalFields are keys indexed verbatim under their own name,
	// bypassing the typed-suffix logic entirely.
	AdditionalFields []string
}

// Options configures one IndexFromMap call. Most fields are per-run
// configuration rather than per-record state; callers typically build one
// Options and reuse it across a batch.
type Options struct {
	// StartDate, when non-nil, makes the record eligible only if its
	// alaModified.p column (or alaModified, when alaModified.p is empty)
	// is at or after this time (incremental reindexing).
	StartDate *time.Time

	Misc MiscFieldConfig

	// GridRefIndexingEnabled turns on grid-reference expansion.
	GridRefIndexingEnabled bool

	// BatchID, when non-empty, is stamped onto every document as
	// batch_id_s.
	BatchID string
}
