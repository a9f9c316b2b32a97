package vocab

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDescriptor = `[{"speciesGroup":"Plants","taxa":[{"name":"Orchidaceae","common":"orchids"}]}]`

func TestLoadSubgroupDescriptor_EmptyLocationReturnsNil(t *testing.T) {
	defs, err := LoadSubgroupDescriptor("")
	require.NoError(t, err)
	assert.Nil(t, defs)
}

func TestLoadSubgroupDescriptor_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subgroups.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDescriptor), 0644))

	defs, err := LoadSubgroupDescriptor(path)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Plants", defs[0].SpeciesGroup)
	assert.Equal(t, "Orchidaceae", defs[0].Taxa[0].Name)
}

func TestLoadSubgroupDescriptor_FromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleDescriptor))
	}))
	defer srv.Close()

	defs, err := LoadSubgroupDescriptor(srv.URL)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Plants", defs[0].SpeciesGroup)
}

func TestLoadSubgroupDescriptor_MissingFile(t *testing.T) {
	_, err := LoadSubgroupDescriptor("/nonexistent/path/subgroups.json")
	assert.Error(t, err)
}

func TestLoadSubgroupDescriptor_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := LoadSubgroupDescriptor(srv.URL)
	assert.Error(t, err)
}
