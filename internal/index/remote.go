package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

// remoteTransport is a single-endpoint deployment mode: a concurrent
// update client against a Solr 4/5-era HTTP wire protocol. threads
// configures a client-side rate limiter so a bulk load cannot overrun
// the remote collection's indexing capacity.
type remoteTransport struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

func newRemoteTransport(baseURL string, threads int, timeout time.Duration, logger arbor.ILogger) *remoteTransport {
	if threads < 1 {
		threads = 1
	}
	return &remoteTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(threads*10), threads*10),
		logger:  logger,
	}
}

// solrUpdateDoc is the per-document wire shape the update endpoint
// expects: a flat field-name to value(s) map, plus "id".
type solrUpdateDoc map[string]any

func toUpdateDoc(d Document) solrUpdateDoc {
	out := make(solrUpdateDoc, len(d.Fields)+1)
	out["id"] = d.ID
	for field, vals := range d.Fields {
		if len(vals) == 1 {
			out[field] = vals[0]
		} else {
			out[field] = vals
		}
	}
	return out
}

func (t *remoteTransport) post(ctx context.Context, path string, body any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("index: rate limiter: %w", err)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("index: encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("index: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("index: request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("index: %s returned status %d", path, resp.StatusCode)
	}
	return nil
}

func (t *remoteTransport) AddBatch(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	wire := make([]solrUpdateDoc, 0, len(docs))
	for _, d := range docs {
		wire = append(wire, toUpdateDoc(d))
	}
	return t.post(ctx, "/update", wire)
}

func (t *remoteTransport) Commit(ctx context.Context, hard bool) error {
	body := map[string]any{"commit": map[string]any{"waitSearcher": hard}}
	return t.post(ctx, "/update", body)
}

func (t *remoteTransport) DeleteByQuery(ctx context.Context, query string) error {
	body := map[string]any{"delete": map[string]string{"query": query}}
	return t.post(ctx, "/update", body)
}

func (t *remoteTransport) DeleteByField(ctx context.Context, field, value string) error {
	return t.DeleteByQuery(ctx, field+":"+value)
}

func (t *remoteTransport) Optimize(ctx context.Context) error {
	body := map[string]any{"optimize": map[string]any{}}
	return t.post(ctx, "/update", body)
}

func (t *remoteTransport) Reload(ctx context.Context) error {
	return t.post(ctx, "/admin/cores?action=RELOAD", nil)
}

func (t *remoteTransport) Shutdown() error {
	t.client.CloseIdleConnections()
	return nil
}

// solrSelectResponse is the subset of a Solr /select response this
// package parses.
type solrSelectResponse struct {
	Response struct {
		NumFound int              `json:"numFound"`
		Docs     []map[string]any `json:"docs"`
	} `json:"response"`
	FacetCounts struct {
		FacetFields map[string][]any `json:"facet_fields"`
	} `json:"facet_counts"`
}

func (t *remoteTransport) get(ctx context.Context, query url.Values) (*solrSelectResponse, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("index: rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/select?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("index: building select request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("index: select request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("index: select returned status %d", resp.StatusCode)
	}

	var out solrSelectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("index: decoding select response: %w", err)
	}
	return &out, nil
}

func buildFilterQuery(query string, filters []string) url.Values {
	q := url.Values{}
	if query == "" {
		query = "*:*"
	}
	q.Set("q", query)
	for _, f := range filters {
		q.Add("fq", f)
	}
	q.Set("wt", "json")
	return q
}

func (t *remoteTransport) PageFacet(ctx context.Context, facetField, query string, filters []string, offset, limit int) ([]FacetBucket, error) {
	q := buildFilterQuery(query, filters)
	q.Set("facet", "true")
	q.Set("facet.field", facetField)
	q.Set("facet.offset", strconv.Itoa(offset))
	q.Set("facet.limit", strconv.Itoa(limit))
	q.Set("rows", "0")

	resp, err := t.get(ctx, q)
	if err != nil {
		return nil, err
	}

	raw := resp.FacetCounts.FacetFields[facetField]
	out := make([]FacetBucket, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		value, _ := raw[i].(string)
		count, _ := raw[i+1].(float64)
		out = append(out, FacetBucket{Value: value, Count: int(count)})
	}
	return out, nil
}

func (t *remoteTransport) PageResults(ctx context.Context, fields []string, query string, filters []string, sortField, dir string, multiValued map[string]bool, offset, limit int) ([]ResultRow, int, error) {
	q := buildFilterQuery(query, filters)
	q.Set("fl", strings.Join(fields, ","))
	q.Set("start", strconv.Itoa(offset))
	q.Set("rows", strconv.Itoa(limit))
	if sortField != "" {
		if dir == "" {
			dir = "asc"
		}
		q.Set("sort", sortField+" "+dir)
	}

	resp, err := t.get(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]ResultRow, 0, len(resp.Response.Docs))
	for _, d := range resp.Response.Docs {
		row := make(ResultRow, len(fields))
		for _, f := range fields {
			v, ok := d[f]
			if !ok {
				continue
			}
			if multiValued[f] {
				row[f] = toStringSlice(v)
			} else {
				row[f] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, resp.Response.NumFound, nil
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []any:
		out := make([]string, 0, len(vv))
		for _, x := range vv {
			out = append(out, fmt.Sprintf("%v", x))
		}
		return out
	case []string:
		return vv
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}
