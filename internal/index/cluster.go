package index

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/biocache-indexer/internal/common"
)

// clusterTransport is the clustered deployment mode: a set of endpoints
// reached via host:port pairs, with writes and commits fanned out to
// every member (so every shard stays consistent) and reads round-robined
// across them.
type clusterTransport struct {
	members    []*remoteTransport
	next       uint64
	collection string
}

func newClusterTransport(value string, collection string, threads int, timeout time.Duration, logger arbor.ILogger) (*clusterTransport, error) {
	endpoints := common.ClusterEndpoints(value)
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("index: no cluster endpoints in %q", value)
	}
	if collection == "" {
		collection = "biocache1"
	}

	members := make([]*remoteTransport, 0, len(endpoints))
	for _, ep := range endpoints {
		members = append(members, newRemoteTransport("http://"+ep+"/solr/"+collection, threads, timeout, logger))
	}
	return &clusterTransport{members: members, collection: collection}, nil
}

func (t *clusterTransport) pickForRead() *remoteTransport {
	i := atomic.AddUint64(&t.next, 1)
	return t.members[i%uint64(len(t.members))]
}

func (t *clusterTransport) AddBatch(ctx context.Context, docs []Document) error {
	var firstErr error
	for _, m := range t.members {
		if err := m.AddBatch(ctx, docs); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *clusterTransport) Commit(ctx context.Context, hard bool) error {
	var firstErr error
	for _, m := range t.members {
		if err := m.Commit(ctx, hard); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *clusterTransport) DeleteByQuery(ctx context.Context, query string) error {
	var firstErr error
	for _, m := range t.members {
		if err := m.DeleteByQuery(ctx, query); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *clusterTransport) DeleteByField(ctx context.Context, field, value string) error {
	return t.DeleteByQuery(ctx, field+":"+value)
}

func (t *clusterTransport) Optimize(ctx context.Context) error {
	var firstErr error
	for _, m := range t.members {
		if err := m.Optimize(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *clusterTransport) Reload(ctx context.Context) error {
	var firstErr error
	for _, m := range t.members {
		if err := m.Reload(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *clusterTransport) Shutdown() error {
	var firstErr error
	for _, m := range t.members {
		if err := m.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *clusterTransport) PageFacet(ctx context.Context, facetField, query string, filters []string, offset, limit int) ([]FacetBucket, error) {
	return t.pickForRead().PageFacet(ctx, facetField, query, filters, offset, limit)
}

func (t *clusterTransport) PageResults(ctx context.Context, fields []string, query string, filters []string, sort, dir string, multiValued map[string]bool, offset, limit int) ([]ResultRow, int, error) {
	return t.pickForRead().PageResults(ctx, fields, query, filters, sort, dir, multiValued, offset, limit)
}
