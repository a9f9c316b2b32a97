package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/biocache-indexer/internal/common"
	"github.com/ternarybob/biocache-indexer/internal/docbuilder"
	"github.com/ternarybob/biocache-indexer/internal/rowstore"
	"github.com/ternarybob/biocache-indexer/internal/vocab"
)

type fakePublisher struct {
	published []*docbuilder.RecycleDoc
}

func (f *fakePublisher) Add(doc *docbuilder.RecycleDoc) error {
	f.published = append(f.published, doc)
	return nil
}

type fakeRowStore struct {
	userIDs map[string][]string
}

func (f *fakeRowStore) Get(ctx context.Context, rowKey string) (rowstore.Row, bool, error) {
	return nil, false, nil
}
func (f *fakeRowStore) PageByTimeRange(ctx context.Context, since time.Time) (<-chan rowstore.RowPage, <-chan error) {
	return nil, nil
}
func (f *fakeRowStore) GetUserIDsForAssertions(ctx context.Context, rowKey string) ([]string, error) {
	return f.userIDs[rowKey], nil
}
func (f *fakeRowStore) Close() error { return nil }

var _ rowstore.RowStore = (*fakeRowStore)(nil)

type fakeNameLookup struct{}

func (fakeNameLookup) SearchForRecord(name, rank string) (vocab.NameMatch, error) {
	return vocab.NameMatch{}, vocab.ErrTaxonNotFound
}

func (fakeNameLookup) SearchByLSID(lsid string) (vocab.NameMatch, error) {
	return vocab.NameMatch{}, vocab.ErrTaxonNotFound
}

func newTestEngine(t *testing.T, rs *fakeRowStore) (*Engine, *fakePublisher) {
	t.Helper()
	backend := &fakePublisher{}
	schema := docbuilder.NewSchema(nil)
	pool := docbuilder.NewPool(2)
	builder := docbuilder.NewBuilder(schema, backend, pool, common.GetLogger())

	groups := vocab.NewSpeciesGroups(fakeNameLookup{}, []vocab.SpeciesGroupDef{
		{Name: "Birds", Rank: "class", IncludedTaxa: nil},
	}, nil, nil)

	var rowStore rowstore.RowStore
	if rs != nil {
		rowStore = rs
	}

	return New(builder, rowStore, vocab.NewAssertionCodes(), groups, nil, common.GetLogger()), backend
}

func TestEngine_IneligibleWhenDeleted(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	_, err := e.IndexFromMap(context.Background(), "row-1", map[string]string{"deleted": "true", "scientificName": "x"}, Options{})
	require.NoError(t, err)
	assert.Empty(t, backend.published)
}

func TestEngine_IneligibleWhenEmpty(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	_, err := e.IndexFromMap(context.Background(), "row-1", map[string]string{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, backend.published)
}

func TestEngine_IneligibleWithOnlyOneColumn(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	_, err := e.IndexFromMap(context.Background(), "row-1", map[string]string{"scientificName": "x"}, Options{})
	require.NoError(t, err)
	assert.Empty(t, backend.published)
}

func TestEngine_IndexesCanonicalColumnsPreferringProcessed(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	row := map[string]string{
		"scientificName":   "raw",
		"scientificName.p": "Vulpes vulpes",
	}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, Options{})
	require.NoError(t, err)
	require.Len(t, backend.published, 1)
	assert.Equal(t, []string{"Vulpes vulpes"}, backend.published[0].Values("scientificName"))
}

func TestEngine_SplitsMultiValuedCanonicalColumn(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	row := map[string]string{"scientificName": "x", "collectors": "Smith|Jones"}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Smith", "Jones"}, backend.published[0].Values("collectors"))
}

func TestEngine_MiscPropertiesIndexedByDeclaredSet(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	row := map[string]string{
		"scientificName": "x",
		"miscProperties": `{"depth_i":"12","weird":"untracked","habitat":"forest"}`,
	}
	opts := Options{Misc: MiscFieldConfig{
		IndexProperties:  []string{"habitat"},
		AdditionalFields: []string{},
	}}
	opts.Misc.UserProvidedTypeProperties = []string{"depth_i"}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, opts)
	require.NoError(t, err)
	doc := backend.published[0]
	assert.Equal(t, []string{"12"}, doc.Values("depth_i"))
	assert.Equal(t, []string{"forest"}, doc.Values("habitat_s"))
	assert.Empty(t, doc.Values("weird"))
}

func TestEngine_MiscPropertyBadIntDropped(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	row := map[string]string{
		"scientificName": "x",
		"miscProperties": `{"depth_i":"not-a-number"}`,
	}
	opts := Options{Misc: MiscFieldConfig{UserProvidedTypeProperties: []string{"depth_i"}}}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, opts)
	require.NoError(t, err)
	assert.Empty(t, backend.published[0].Values("depth_i"))
}

func TestEngine_AssertionsClassifiedAndUncheckedComputed(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	row := map[string]string{
		"scientificName":     "x",
		"qualityAssertions":  `[{"code":10,"name":"MISSING_GEODETIC_DATUM","qaStatus":0},{"code":20,"name":"COORDINATES_OUT_OF_RANGE","qaStatus":1}]`,
	}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, Options{})
	require.NoError(t, err)
	doc := backend.published[0]
	assert.Equal(t, []string{"MISSING_GEODETIC_DATUM"}, doc.Values("assertions_missing"))
	assert.Equal(t, []string{"COORDINATES_OUT_OF_RANGE"}, doc.Values("assertions_passed"))
	assert.Contains(t, doc.Values("assertions_unchecked"), "ZERO_COORDINATES")
	assert.NotContains(t, doc.Values("assertions_unchecked"), "MISSING_GEODETIC_DATUM")
	assert.NotContains(t, doc.Values("assertions_unchecked"), "PROCESSING_ERROR")
	assert.NotContains(t, doc.Values("assertions_unchecked"), "VERIFIED")
}

func TestEngine_QueryAssertionMarksUnsuitableForModelling(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	row := map[string]string{
		"scientificName":  "x",
		"queryAssertion": `{"uuid-1":"invalid"}`,
	}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, Options{})
	require.NoError(t, err)
	doc := backend.published[0]
	assert.Equal(t, []string{"false"}, doc.Values("suitable_modelling"))
	assert.Equal(t, []string{"uuid-1"}, doc.Values("query_assertion_uuid"))
}

func TestEngine_NoQueryAssertionsDefaultsToSuitable(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	row := map[string]string{"scientificName": "x"}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, backend.published[0].Values("suitable_modelling"))
}

func TestEngine_ContextualLayersEmittedVerbatim(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	row := map[string]string{
		"scientificName": "x",
		"el.p":           `{"cl123":"0.5"}`,
		"cl.p":           `{"cl456":"forest"}`,
	}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, Options{})
	require.NoError(t, err)
	doc := backend.published[0]
	assert.Equal(t, []string{"0.5"}, doc.Values("cl123"))
	assert.Equal(t, []string{"forest"}, doc.Values("cl456"))
}

func TestEngine_UserAssertionIDsLookedUpOnlyWhenPresent(t *testing.T) {
	rs := &fakeRowStore{userIDs: map[string][]string{"row-1": {"user-a", "user-b"}}}
	e, backend := newTestEngine(t, rs)
	row := map[string]string{"scientificName": "x", "userQualityAssertion": "true"}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"user-a", "user-b"}, backend.published[0].Values("assertion_user_id"))
}

func TestEngine_BatchIDStamped(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	row := map[string]string{"scientificName": "x"}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, Options{BatchID: "batch-42"})
	require.NoError(t, err)
	assert.Equal(t, []string{"batch-42"}, backend.published[0].Values("batch_id_s"))
}

func TestEngine_GridReferencesDerivedFromCoordinates(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	row := map[string]string{
		"scientificName":                "x",
		"decimalLatitude":               "-33.8",
		"decimalLongitude":              "151.2",
		"coordinateUncertaintyInMeters": "500",
		"bbox":                          "-34,151,-33,152",
	}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, Options{GridRefIndexingEnabled: true})
	require.NoError(t, err)
	doc := backend.published[0]
	assert.NotEmpty(t, doc.Values("grid_ref_10000"))
	assert.NotEmpty(t, doc.Values("grid_ref_1000"))
	assert.Empty(t, doc.Values("grid_ref_100"))
}

func TestEngine_IncrementalStartDateFiltersOldRecords(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	row := map[string]string{
		"scientificName": "x",
		"alaModified.p":  "2025-01-01T00:00:00Z",
	}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, Options{StartDate: &cutoff})
	require.NoError(t, err)
	assert.Empty(t, backend.published)
}

func TestEngine_IncrementalStartDateKeepsNewRecords(t *testing.T) {
	e, backend := newTestEngine(t, nil)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	row := map[string]string{
		"scientificName": "x",
		"alaModified.p":  "2026-06-01T00:00:00Z",
	}
	_, err := e.IndexFromMap(context.Background(), "row-1", row, Options{StartDate: &cutoff})
	require.NoError(t, err)
	assert.Len(t, backend.published, 1)
}
