package vocab

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SpeciesListSource fetches the list UIDs a taxon concept belongs to from
// the upstream species-list service. The client itself is out of scope
// beyond this interface.
type SpeciesListSource interface {
	ListUIDsForTaxon(ctx context.Context, taxonConceptID string) ([]string, error)
}

type cachedEntry struct {
	uids      []string
	expiresAt time.Time
}

// TaxonSpeciesListDAO caches taxonConceptID -> species-list-UID lookups
// with a TTL. Unlike SpeciesGroups/ChecklistCache this cache never fully
// warms up front: new taxa are looked up and cached on demand, since the
// full taxon/list cross-product is too large to preload.
type TaxonSpeciesListDAO struct {
	source SpeciesListSource
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[string]cachedEntry
}

// NewTaxonSpeciesListDAO constructs a DAO that caches each lookup for ttl.
func NewTaxonSpeciesListDAO(source SpeciesListSource, ttl time.Duration) *TaxonSpeciesListDAO {
	return &TaxonSpeciesListDAO{
		source: source,
		ttl:    ttl,
		cache:  make(map[string]cachedEntry),
	}
}

// ListUIDsForTaxon returns the species-list UIDs taxonConceptID belongs
// to, serving from cache when the entry has not expired.
func (d *TaxonSpeciesListDAO) ListUIDsForTaxon(ctx context.Context, taxonConceptID string) ([]string, error) {
	if taxonConceptID == "" {
		return nil, nil
	}

	d.mu.RLock()
	entry, ok := d.cache[taxonConceptID]
	d.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.uids, nil
	}

	uids, err := d.source.ListUIDsForTaxon(ctx, taxonConceptID)
	if err != nil {
		return nil, fmt.Errorf("species list dao: fetching lists for %q: %w", taxonConceptID, err)
	}

	d.mu.Lock()
	d.cache[taxonConceptID] = cachedEntry{uids: uids, expiresAt: time.Now().Add(d.ttl)}
	d.mu.Unlock()

	return uids, nil
}

// Invalidate drops a cached entry, forcing the next lookup to hit source.
func (d *TaxonSpeciesListDAO) Invalidate(taxonConceptID string) {
	d.mu.Lock()
	delete(d.cache, taxonConceptID)
	d.mu.Unlock()
}
