// Package rowstore defines the row store the indexing pipeline reads from
// and, in its badgerstore subpackage, a badgerhold-backed implementation
// used by tests and by the CLI subcommands.
package rowstore

import (
	"context"
	"time"
)

// Row is one occurrence record's sparse column set, keyed by column name.
// JSON-bearing columns (miscProperties, qualityAssertions, ...) are stored
// as their raw, still-encoded text; callers run them through the
// character-level scanners rather than a generic decode.
type Row map[string]string

// RowPage is one (rowKey, Row) pair yielded while paging by time range.
type RowPage struct {
	RowKey string
	Row    Row
}

// RowStore is the row store interface the engine depends on: a
// single-row lookup, a streaming page-by-modification-time scan for
// incremental reindexing, and a lookup of the user IDs behind a row's
// user-supplied quality assertions.
type RowStore interface {
	// Get returns one row's full column set, or ok=false if rowKey does
	// not exist.
	Get(ctx context.Context, rowKey string) (Row, bool, error)

	// PageByTimeRange streams every row whose modification time is at
	// or after since, in ascending modification-time order. The returned
	// channel is closed when the scan completes or ctx is cancelled; a
	// send error on ctx cancellation is reported via the returned error
	// channel instead of panicking the scan goroutine.
	PageByTimeRange(ctx context.Context, since time.Time) (<-chan RowPage, <-chan error)

	// GetUserIDsForAssertions returns the distinct user IDs that have
	// filed a userQualityAssertion against rowKey.
	GetUserIDsForAssertions(ctx context.Context, rowKey string) ([]string, error)

	Close() error
}
