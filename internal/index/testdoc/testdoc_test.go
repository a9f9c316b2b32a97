package testdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_GeneratesDistinctIDs(t *testing.T) {
	a := New(map[string]string{"scientificName": "Vulpes vulpes"})
	b := New(map[string]string{"scientificName": "Vulpes vulpes"})

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, []string{"Vulpes vulpes"}, a.Fields["scientificName"])
}

func TestNewBatch_AllDistinctIDsSameField(t *testing.T) {
	docs := NewBatch(5, "data_resource_uid", "dr1")

	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		seen[d.ID] = struct{}{}
		assert.Equal(t, []string{"dr1"}, d.Fields["data_resource_uid"])
	}
	assert.Len(t, seen, 5)
}
