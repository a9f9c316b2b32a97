package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetGridRefAsResolutions_FullPrecision(t *testing.T) {
	ref, ok := GetGridRefAsResolutions(-33.8688, 151.2093, 5)
	require.True(t, ok)
	assert.NotEmpty(t, ref.Ref10000)
	assert.NotEmpty(t, ref.Ref1000)
	assert.NotEmpty(t, ref.Ref100)
	assert.NotEmpty(t, ref.Ref10)
}

func TestGetGridRefAsResolutions_CoarseUncertaintyDropsFineKeys(t *testing.T) {
	ref, ok := GetGridRefAsResolutions(-33.8688, 151.2093, 500)
	require.True(t, ok)
	assert.NotEmpty(t, ref.Ref10000)
	assert.NotEmpty(t, ref.Ref1000)
	assert.Empty(t, ref.Ref100)
	assert.Empty(t, ref.Ref10)
}

func TestGetGridRefAsResolutions_InvalidCoordinates(t *testing.T) {
	_, ok := GetGridRefAsResolutions(95, 0, 10)
	assert.False(t, ok)

	_, ok = GetGridRefAsResolutions(0, -200, 10)
	assert.False(t, ok)
}

func TestGetGridRefAsResolutions_NegativeUncertainty(t *testing.T) {
	_, ok := GetGridRefAsResolutions(0, 0, -1)
	assert.False(t, ok)
}

func TestGetGridRefAsResolutions_UncertaintyBeyondCoarsestResolution(t *testing.T) {
	_, ok := GetGridRefAsResolutions(-33.8688, 151.2093, 50000)
	assert.False(t, ok)
}

func TestGridReference_FieldsOmitsBlankKeys(t *testing.T) {
	ref, ok := GetGridRefAsResolutions(-33.8688, 151.2093, 500)
	require.True(t, ok)
	fields := ref.Fields()
	assert.Contains(t, fields, "grid_ref_10000")
	assert.Contains(t, fields, "grid_ref_1000")
	assert.NotContains(t, fields, "grid_ref_100")
	assert.NotContains(t, fields, "grid_ref_10")
}

func TestParseGridCell_RoundTrip(t *testing.T) {
	ref, ok := GetGridRefAsResolutions(-33.8688, 151.2093, 5)
	require.True(t, ok)

	e, n, res, err := ParseGridCell(ref.Ref10)
	require.NoError(t, err)
	assert.Equal(t, 10, res)
	assert.Equal(t, e%10, 0)
	assert.Equal(t, n%10, 0)
}

func TestParseGridCell_Malformed(t *testing.T) {
	_, _, _, err := ParseGridCell("not-a-cell")
	assert.Error(t, err)
}
