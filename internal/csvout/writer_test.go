package csvout

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_WriteHeaderAndRow(t *testing.T) {
	var out bytes.Buffer
	w := New([]string{"id", "scientificName"}, nil, &out, nil)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteRow(map[string]string{"id": "row-1", "scientificName": "Vulpes vulpes"}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "id\tscientificName\nrow-1\tVulpes vulpes\n", out.String())
}

func TestWriter_RedactsSensitiveColumnsInSecondStream(t *testing.T) {
	var out, redacted bytes.Buffer
	w := New([]string{"id", "recordedBy"}, []string{"recordedBy"}, &out, &redacted)

	require.NoError(t, w.WriteRow(map[string]string{"id": "row-1", "recordedBy": "J. Smith"}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "row-1\tJ. Smith\n", out.String())
	assert.Equal(t, "row-1\t\n", redacted.String())
}

func TestWriter_MissingColumnWritesEmpty(t *testing.T) {
	var out bytes.Buffer
	w := New([]string{"id", "locality"}, nil, &out, nil)

	require.NoError(t, w.WriteRow(map[string]string{"id": "row-1"}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "row-1\t\n", out.String())
}

func TestJoinMultiValue(t *testing.T) {
	assert.Equal(t, "a|b|c", JoinMultiValue([]string{"a", "b", "c"}))
	assert.Equal(t, "", JoinMultiValue(nil))
}
