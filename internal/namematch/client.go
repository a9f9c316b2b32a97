// Package namematch implements the HTTP client for the name-matching
// index the indexing engine and the species-group cache consult: a
// lookup from scientific name + rank to a taxon's left/right
// tree-traversal interval. The index itself is out of scope; this
// package only speaks its query API.
package namematch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/biocache-indexer/internal/vocab"
)

// searchResponse is the subset of the name-matching service's response
// this client parses. The service may return more than one candidate
// when a name is a homonym across kingdoms; the first candidate is used
// and the rest are logged, not surfaced as an error.
type searchResponse struct {
	Results []struct {
		LSID         string `json:"lsid"`
		AcceptedLSID string `json:"acceptedLsid"`
		Left         int    `json:"left"`
		Right        int    `json:"right"`
		IsSynonym    bool   `json:"isSynonym"`
	} `json:"results"`
}

// Client is an HTTP-backed vocab.NameLookup.
type Client struct {
	baseURL string
	http    *http.Client
	logger  arbor.ILogger
}

var _ vocab.NameLookup = (*Client)(nil)

// New constructs a Client against baseURL with the given request timeout.
func New(baseURL string, timeout time.Duration, logger arbor.ILogger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SearchForRecord implements vocab.NameLookup.
func (c *Client) SearchForRecord(name, rank string) (vocab.NameMatch, error) {
	q := url.Values{}
	q.Set("q", name)
	if rank != "" {
		q.Set("rank", rank)
	}
	return c.search(q, name)
}

// SearchByLSID implements vocab.NameLookup: it resolves a synonym's
// acceptedLsid pointer to the accepted taxon's own record, querying by
// identifier rather than by name text.
func (c *Client) SearchByLSID(lsid string) (vocab.NameMatch, error) {
	q := url.Values{}
	q.Set("lsid", lsid)
	return c.search(q, lsid)
}

func (c *Client) search(q url.Values, label string) (vocab.NameMatch, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.http.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return vocab.NameMatch{}, fmt.Errorf("namematch: building request for %q: %w", label, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return vocab.NameMatch{}, fmt.Errorf("namematch: request for %q: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return vocab.NameMatch{}, vocab.ErrTaxonNotFound
	}
	if resp.StatusCode >= 300 {
		return vocab.NameMatch{}, fmt.Errorf("namematch: search for %q returned status %d", label, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return vocab.NameMatch{}, fmt.Errorf("namematch: decoding response for %q: %w", label, err)
	}
	if len(parsed.Results) == 0 {
		return vocab.NameMatch{}, vocab.ErrTaxonNotFound
	}
	if len(parsed.Results) > 1 {
		c.logger.Debug().Str("query", label).Int("candidate_count", len(parsed.Results)).
			Msg("namematch: homonym match, using first candidate")
	}

	r := parsed.Results[0]
	return vocab.NameMatch{
		LSID:         r.LSID,
		AcceptedLSID: r.AcceptedLSID,
		Left:         r.Left,
		Right:        r.Right,
		IsSynonym:    r.IsSynonym,
	}, nil
}
