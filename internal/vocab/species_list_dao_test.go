package vocab

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSpeciesListSource struct {
	calls int
	uids  []string
}

func (f *fakeSpeciesListSource) ListUIDsForTaxon(ctx context.Context, taxonConceptID string) ([]string, error) {
	f.calls++
	return f.uids, nil
}

func TestTaxonSpeciesListDAO_CachesWithinTTL(t *testing.T) {
	source := &fakeSpeciesListSource{uids: []string{"dr1", "dr2"}}
	dao := NewTaxonSpeciesListDAO(source, time.Hour)

	uids, err := dao.ListUIDsForTaxon(context.Background(), "urn:lsid:1")
	require.NoError(t, err)
	assert.Equal(t, []string{"dr1", "dr2"}, uids)

	_, err = dao.ListUIDsForTaxon(context.Background(), "urn:lsid:1")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}

func TestTaxonSpeciesListDAO_RefetchesAfterTTL(t *testing.T) {
	source := &fakeSpeciesListSource{uids: []string{"dr1"}}
	dao := NewTaxonSpeciesListDAO(source, -time.Second)

	_, err := dao.ListUIDsForTaxon(context.Background(), "urn:lsid:1")
	require.NoError(t, err)
	_, err = dao.ListUIDsForTaxon(context.Background(), "urn:lsid:1")
	require.NoError(t, err)

	assert.Equal(t, 2, source.calls)
}

func TestTaxonSpeciesListDAO_EmptyTaxonID(t *testing.T) {
	source := &fakeSpeciesListSource{}
	dao := NewTaxonSpeciesListDAO(source, time.Hour)

	uids, err := dao.ListUIDsForTaxon(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, uids)
	assert.Equal(t, 0, source.calls)
}

func TestTaxonSpeciesListDAO_Invalidate(t *testing.T) {
	source := &fakeSpeciesListSource{uids: []string{"dr1"}}
	dao := NewTaxonSpeciesListDAO(source, time.Hour)

	_, err := dao.ListUIDsForTaxon(context.Background(), "urn:lsid:1")
	require.NoError(t, err)
	dao.Invalidate("urn:lsid:1")
	_, err = dao.ListUIDsForTaxon(context.Background(), "urn:lsid:1")
	require.NoError(t, err)

	assert.Equal(t, 2, source.calls)
}
