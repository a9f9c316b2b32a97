package docbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/biocache-indexer/internal/common"
)

type fakePublisher struct {
	published []*RecycleDoc
	failNext  bool
}

func (f *fakePublisher) Add(doc *RecycleDoc) error {
	if f.failNext {
		f.failNext = false
		return assert.AnError
	}
	f.published = append(f.published, doc)
	return nil
}

func testSchema() *Schema {
	return NewSchema([]FieldDef{
		{Name: "scientific_name", CopyFields: []CopyField{{Dest: "text"}, {Dest: "scientific_name_sort", MaxChars: 5}}},
	})
}

func TestBuilder_AddFieldExpandsCopyFieldsWithTruncation(t *testing.T) {
	backend := &fakePublisher{}
	pool := NewPool(2)
	b := NewBuilder(testSchema(), backend, pool, common.GetLogger())

	b.NewDoc("row-1")
	b.AddField("scientific_name", "Vulpes vulpes")
	require.NoError(t, b.Index())

	require.Len(t, backend.published, 1)
	doc := backend.published[0]
	assert.Equal(t, []string{"Vulpes vulpes"}, doc.Values("scientific_name"))
	assert.Equal(t, []string{"Vulpes vulpes"}, doc.Values("text"))
	assert.Equal(t, []string{"Vulpe"}, doc.Values("scientific_name_sort"))
}

func TestBuilder_AddFieldSkipsEmptyValue(t *testing.T) {
	backend := &fakePublisher{}
	pool := NewPool(1)
	b := NewBuilder(testSchema(), backend, pool, common.GetLogger())

	b.NewDoc("row-1")
	b.AddField("scientific_name", "")
	require.NoError(t, b.Index())

	assert.Empty(t, backend.published[0].Fields())
}

func TestBuilder_NewDocDiscardsUnterminatedPriorDocument(t *testing.T) {
	backend := &fakePublisher{}
	pool := NewPool(1)
	b := NewBuilder(testSchema(), backend, pool, common.GetLogger())

	b.NewDoc("row-1")
	b.AddField("scientific_name", "first")
	b.NewDoc("row-2") // discards row-1 without calling Index/Release
	b.AddField("scientific_name", "second")
	require.NoError(t, b.Index())

	require.Len(t, backend.published, 1)
	assert.Equal(t, "row-2", backend.published[0].ID())
}

func TestBuilder_ReleaseDiscardsDocument(t *testing.T) {
	backend := &fakePublisher{}
	pool := NewPool(1)
	b := NewBuilder(testSchema(), backend, pool, common.GetLogger())

	b.NewDoc("row-1")
	b.AddField("scientific_name", "x")
	b.Release()

	assert.Empty(t, backend.published)
}

func TestBuilder_DoubleIndexIsLoggedNotPanicked(t *testing.T) {
	backend := &fakePublisher{}
	pool := NewPool(1)
	b := NewBuilder(testSchema(), backend, pool, common.GetLogger())

	b.NewDoc("row-1")
	require.NoError(t, b.Index())

	err := b.Index()
	assert.Error(t, err)
}

func TestBuilder_IndexFailureReturnsDocToPool(t *testing.T) {
	backend := &fakePublisher{failNext: true}
	pool := NewPool(1)
	b := NewBuilder(testSchema(), backend, pool, common.GetLogger())

	b.NewDoc("row-1")
	err := b.Index()
	assert.Error(t, err)

	// Pool should not be exhausted: the doc must have been returned.
	doc := pool.Get()
	assert.NotNil(t, doc)
}

func TestPool_GetBlocksUntilPut(t *testing.T) {
	pool := NewPool(1)
	doc := pool.Get()

	done := make(chan *RecycleDoc, 1)
	go func() {
		done <- pool.Get()
	}()

	select {
	case <-done:
		t.Fatal("Get should have blocked with an empty pool")
	default:
	}

	pool.Put(doc)
	next := <-done
	assert.NotNil(t, next)
}
