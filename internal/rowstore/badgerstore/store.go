// Package badgerstore is a badgerhold-backed rowstore.RowStore used by
// tests and as the row store cmd/biocache-index opens for every
// subcommand.
package badgerstore

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/biocache-indexer/internal/common"
	"github.com/ternarybob/biocache-indexer/internal/rowstore"
	"github.com/timshannon/badgerhold/v4"
)

// storedRow is the badgerhold record shape. Columns is kept as a flat map
// rather than a struct: occurrence columns are sparse and vary by record,
// the same reason the row store interface itself works in terms of maps.
type storedRow struct {
	RowKey     string `badgerholdKey:"RowKey"`
	Columns    map[string]string
	ModifiedAt time.Time `badgerhold:"index"`
	UserIDs    []string
}

// Store is a badgerhold-backed RowStore.
type Store struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

var _ rowstore.RowStore = (*Store)(nil)

// Open opens (creating if necessary) a badgerhold database at dir.
func Open(logger arbor.ILogger, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("rowstore: creating %q: %w", dir, err)
	}

	opts := badgerhold.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir
	opts.Logger = nil

	store, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("rowstore: opening badger store at %q: %w", dir, err)
	}

	logger.Debug().Str("path", dir).Msg("rowstore: badger store opened")
	return &Store{store: store, logger: logger}, nil
}

// Put upserts a row, for use by fixture loaders and tests.
func (s *Store) Put(rowKey string, columns rowstore.Row, modifiedAt time.Time, userIDs []string) error {
	if rowKey == "" {
		return fmt.Errorf("rowstore: empty row key")
	}
	rec := storedRow{
		RowKey:     rowKey,
		Columns:    map[string]string(columns),
		ModifiedAt: modifiedAt,
		UserIDs:    userIDs,
	}
	if err := s.store.Upsert(rowKey, &rec); err != nil {
		return fmt.Errorf("rowstore: upserting %q: %w", rowKey, err)
	}
	return nil
}

// Get implements rowstore.RowStore.
func (s *Store) Get(_ context.Context, rowKey string) (rowstore.Row, bool, error) {
	var rec storedRow
	if err := s.store.Get(rowKey, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("rowstore: getting %q: %w", rowKey, err)
	}
	return rowstore.Row(rec.Columns), true, nil
}

// PageByTimeRange implements rowstore.RowStore. The scan runs in a
// panic-protected goroutine (common.SafeGo) and reports a cancellation or
// query error on the error channel instead of closing the page channel
// mid-send. Rows are selected and ordered by the modifiedAt time given to
// Put; the alaModified.p column is not read.
func (s *Store) PageByTimeRange(ctx context.Context, since time.Time) (<-chan rowstore.RowPage, <-chan error) {
	pages := make(chan rowstore.RowPage)
	errs := make(chan error, 1)

	common.SafeGo(s.logger, "rowstore.PageByTimeRange", func() {
		defer close(pages)
		defer close(errs)

		var rows []storedRow
		query := badgerhold.Where("ModifiedAt").Ge(since).SortBy("ModifiedAt")
		if err := s.store.Find(&rows, query); err != nil {
			errs <- fmt.Errorf("rowstore: paging by time range: %w", err)
			return
		}

		for _, r := range rows {
			select {
			case pages <- rowstore.RowPage{RowKey: r.RowKey, Row: rowstore.Row(r.Columns)}:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	})

	return pages, errs
}

// GetUserIDsForAssertions implements rowstore.RowStore.
func (s *Store) GetUserIDsForAssertions(_ context.Context, rowKey string) ([]string, error) {
	var rec storedRow
	if err := s.store.Get(rowKey, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("rowstore: getting user ids for %q: %w", rowKey, err)
	}
	return rec.UserIDs, nil
}

// Close implements rowstore.RowStore.
func (s *Store) Close() error {
	return s.store.Close()
}
