package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertionCodes_GetByCode(t *testing.T) {
	codes := NewAssertionCodes()
	c, ok := codes.GetByCode(10)
	require.True(t, ok)
	assert.Equal(t, "MISSING_GEODETIC_DATUM", c.Name)
	assert.Equal(t, CategoryMissing, c.Category)

	_, ok = codes.GetByCode(99999)
	assert.False(t, ok)
}

func TestAssertionCodes_GetByName(t *testing.T) {
	codes := NewAssertionCodes()
	c, ok := codes.GetByName("ZERO_COORDINATES")
	require.True(t, ok)
	assert.Equal(t, 23, c.Code)
}

func TestAssertionCodes_GetMissingByCode_ExcludesProcessingAndVerified(t *testing.T) {
	codes := NewAssertionCodes()
	seen := make([]int, 0, len(codes.All()))
	for _, c := range codes.All() {
		seen = append(seen, c.Code)
	}

	unchecked := codes.GetMissingByCode(seen)
	assert.Empty(t, unchecked)
}

func TestAssertionCodes_GetMissingByCode_ReturnsUnseen(t *testing.T) {
	codes := NewAssertionCodes()
	unchecked := codes.GetMissingByCode(nil)

	assert.NotContains(t, unchecked, ProcessingErrorName)
	assert.NotContains(t, unchecked, VerifiedName)
	assert.Contains(t, unchecked, "MISSING_GEODETIC_DATUM")
	assert.Len(t, unchecked, len(codes.All())-2)
}
