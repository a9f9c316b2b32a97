package docbuilder

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_LookupKnownField(t *testing.T) {
	s := NewSchema([]FieldDef{
		{Name: "scientific_name", Type: FieldTypeString, CopyFields: []CopyField{{Dest: "text"}}},
	})
	d := s.Lookup("scientific_name")
	assert.Equal(t, "scientific_name", d.Name)
	assert.Len(t, d.CopyFields, 1)
}

func TestSchema_LookupUnknownFieldInfersTypeFromSuffix(t *testing.T) {
	s := NewSchema(nil)
	d := s.Lookup("custom_field_i")
	assert.Equal(t, FieldTypeInt, d.Type)
}

// TestSchema_ConcurrentLookupOfUnknownFieldsIsRaceFree exercises the path
// every reindex worker's Builder shares one Schema instance through: a
// cache miss on an unmemoized dynamic field name, concurrently, from every
// worker goroutine at once.
func TestSchema_ConcurrentLookupOfUnknownFieldsIsRaceFree(t *testing.T) {
	s := NewSchema(nil)

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				field := fmt.Sprintf("dynamic_field_%d_s", i%8)
				d := s.Lookup(field)
				assert.Equal(t, field, d.Name)
			}
		}(w)
	}
	wg.Wait()
}
