package index

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
)

// embeddedTransport is the in-process, single-node deployment mode: a
// core container loaded directly into the pipeline's own process, backed
// by a plain in-memory document table guarded by a mutex. There is no
// external index service to crash-recover from, so durability here is
// best-effort for the lifetime of the process.
type embeddedTransport struct {
	path   string
	logger arbor.ILogger

	mu   sync.RWMutex
	docs map[string]Document
}

func newEmbeddedTransport(path string, logger arbor.ILogger) (*embeddedTransport, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("index: creating embedded core directory %q: %w", path, err)
	}
	return &embeddedTransport{path: path, logger: logger, docs: make(map[string]Document)}, nil
}

func (t *embeddedTransport) AddBatch(_ context.Context, docs []Document) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, d := range docs {
		t.docs[d.ID] = d
	}
	return nil
}

func (t *embeddedTransport) Commit(_ context.Context, hard bool) error {
	// Every write is already visible to readers of t.docs under the
	// mutex; there is no separate searcher generation to open.
	return nil
}

// matchesQuery supports the two query shapes the engine and its callers
// actually issue: "*:*" (match all) and "field:value" (exact match), where
// value may be a Go-quoted string such as field:"a b".
func matchesQuery(d Document, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" || query == "*:*" {
		return true
	}
	field, value, ok := strings.Cut(query, ":")
	if !ok {
		return false
	}
	if unquoted, err := strconv.Unquote(value); err == nil {
		value = unquoted
	}
	for _, v := range d.Fields[field] {
		if v == value {
			return true
		}
	}
	return false
}

func matchesFilters(d Document, filters []string) bool {
	for _, f := range filters {
		if !matchesQuery(d, f) {
			return false
		}
	}
	return true
}

func (t *embeddedTransport) DeleteByQuery(_ context.Context, query string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, d := range t.docs {
		if matchesQuery(d, query) {
			delete(t.docs, id)
		}
	}
	return nil
}

func (t *embeddedTransport) DeleteByField(ctx context.Context, field, value string) error {
	return t.DeleteByQuery(ctx, field+":"+value)
}

func (t *embeddedTransport) Optimize(_ context.Context) error { return nil }
func (t *embeddedTransport) Reload(_ context.Context) error   { return nil }
func (t *embeddedTransport) Shutdown() error                  { return nil }

func (t *embeddedTransport) matching(query string, filters []string) []Document {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Document, 0, len(t.docs))
	for _, d := range t.docs {
		if matchesQuery(d, query) && matchesFilters(d, filters) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *embeddedTransport) PageFacet(_ context.Context, facetField, query string, filters []string, offset, limit int) ([]FacetBucket, error) {
	matched := t.matching(query, filters)
	counts := make(map[string]int)
	for _, d := range matched {
		for _, v := range d.Fields[facetField] {
			counts[v]++
		}
	}
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	if offset >= len(values) {
		return nil, nil
	}
	end := offset + limit
	if end > len(values) {
		end = len(values)
	}
	page := values[offset:end]

	out := make([]FacetBucket, 0, len(page))
	for _, v := range page {
		out = append(out, FacetBucket{Value: v, Count: counts[v]})
	}
	return out, nil
}

func (t *embeddedTransport) PageResults(_ context.Context, fields []string, query string, filters []string, sortField, dir string, multiValued map[string]bool, offset, limit int) ([]ResultRow, int, error) {
	matched := t.matching(query, filters)

	if sortField != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			iv := firstValue(matched[i], sortField)
			jv := firstValue(matched[j], sortField)
			if dir == "desc" {
				return iv > jv
			}
			return iv < jv
		})
	}

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	out := make([]ResultRow, 0, end-offset)
	for _, d := range matched[offset:end] {
		row := make(ResultRow, len(fields))
		for _, f := range fields {
			vals := d.Fields[f]
			if multiValued[f] {
				row[f] = vals
			} else if len(vals) > 0 {
				row[f] = vals[0]
			}
		}
		out = append(out, row)
	}
	return out, total, nil
}

func firstValue(d Document, field string) string {
	if vals := d.Fields[field]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}
