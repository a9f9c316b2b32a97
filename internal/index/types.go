// Package index implements the uniform façade over the three index
// backend deployment modes (embedded, remote, cluster) and the
// batching/commit protocol the indexing engine drives.
package index

import "context"

// Document is a finished document's field set, ready for the wire: field
// name to its (possibly multi-valued) values, in the order the builder
// emitted them.
type Document struct {
	ID     string
	Fields map[string][]string
	Order  []string
}

// FacetBucket is one (value, count) pair returned while paging a facet.
type FacetBucket struct {
	Value string
	Count int
}

// ResultRow is one hit materialized while paging the index, with
// declared multi-valued fields kept as []string and everything else as a
// single string.
type ResultRow map[string]any

// Transport is the backend-specific wire layer each deployment mode
// implements; Adapter holds the mode-independent batch/commit protocol
// and delegates the actual network/storage operation to a Transport.
type Transport interface {
	AddBatch(ctx context.Context, docs []Document) error
	Commit(ctx context.Context, hard bool) error
	DeleteByQuery(ctx context.Context, query string) error
	DeleteByField(ctx context.Context, field, value string) error
	Optimize(ctx context.Context) error
	Reload(ctx context.Context) error
	Shutdown() error

	// PageFacet returns one page of facet buckets for facetField,
	// starting at offset. An empty slice means the scan is complete.
	PageFacet(ctx context.Context, facetField, query string, filters []string, offset, limit int) ([]FacetBucket, error)

	// PageResults returns one page of hits plus the total match count
	// (reported on every call; cheap for the transports in this
	// package since they hold everything in memory or the backend
	// reports it for free).
	PageResults(ctx context.Context, fields []string, query string, filters []string, sort, dir string, multiValued map[string]bool, offset, limit int) ([]ResultRow, int, error)
}
