package index

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// PageOverFacet pages facetField by FacetPageSize until an empty page,
// invoking fn per bucket.
func (a *Adapter) PageOverFacet(ctx context.Context, fn func(value string, count int) error, facetField, query string, filters []string) error {
	offset := 0
	for {
		buckets, err := a.transport.PageFacet(ctx, facetField, query, filters, offset, a.facetPageSize)
		if err != nil {
			return fmt.Errorf("index: paging facet %q: %w", facetField, err)
		}
		if len(buckets) == 0 {
			return nil
		}
		for _, b := range buckets {
			if err := fn(b.Value, b.Count); err != nil {
				return err
			}
		}
		offset += len(buckets)
	}
}

// PageOverIndex pages by ReadPageSize, materializing each hit as a map.
func (a *Adapter) PageOverIndex(ctx context.Context, fn func(ResultRow) error, fields []string, query string, filters []string, sortField, dir string, multiValued map[string]bool) error {
	offset := 0
	for {
		rows, total, err := a.transport.PageResults(ctx, fields, query, filters, sortField, dir, multiValued, offset, a.readPageSize)
		if err != nil {
			return fmt.Errorf("index: paging index: %w", err)
		}
		for _, r := range rows {
			if err := fn(r); err != nil {
				return err
			}
		}
		offset += len(rows)
		if len(rows) == 0 || offset >= total {
			return nil
		}
	}
}

// StreamIndex requests the full result set via the backend's paging
// interface (there is no separate server-side cursor in any of the three
// transports here), logging progress every progressEvery rows (10,000
// when progressEvery is not positive) and reporting a total
// count before the first row so callers can report progress. fn returns
// false to stop the stream early.
func (a *Adapter) StreamIndex(ctx context.Context, fn func(ResultRow) (bool, error), fields []string, query string, filters []string, sortField string, multiValued map[string]bool, onTotal func(total int), progressEvery int) error {
	if progressEvery <= 0 {
		progressEvery = 10000
	}

	offset := 0
	seenTotal := false
	processed := 0
	for {
		rows, total, err := a.transport.PageResults(ctx, fields, query, filters, sortField, "asc", multiValued, offset, a.readPageSize)
		if err != nil {
			return fmt.Errorf("index: streaming index: %w", err)
		}
		if !seenTotal {
			seenTotal = true
			if onTotal != nil {
				onTotal(total)
			}
		}
		for _, r := range rows {
			cont, err := fn(r)
			if err != nil {
				return fmt.Errorf("index: stream callback: %w", err)
			}
			processed++
			if processed%progressEvery == 0 {
				a.logger.Info().Int("processed", processed).Int("total", total).Msg("index: stream progress")
			}
			if !cont {
				return nil
			}
		}
		offset += len(rows)
		if len(rows) == 0 || offset >= total {
			return nil
		}
	}
}

// WriteFieldToStream emits one value per line for field, paging by 100.
func (a *Adapter) WriteFieldToStream(ctx context.Context, field, query string, out io.Writer) error {
	w := bufio.NewWriter(out)
	defer w.Flush()

	offset := 0
	const pageSize = 100
	for {
		rows, total, err := a.transport.PageResults(ctx, []string{field}, query, nil, "", "", nil, offset, pageSize)
		if err != nil {
			return fmt.Errorf("index: writing field %q to stream: %w", field, err)
		}
		for _, r := range rows {
			v, _ := r[field].(string)
			if _, err := fmt.Fprintln(w, v); err != nil {
				return err
			}
		}
		offset += len(rows)
		if len(rows) == 0 || offset >= total {
			return nil
		}
	}
}
