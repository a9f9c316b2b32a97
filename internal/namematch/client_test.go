package namematch

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/biocache-indexer/internal/common"
	"github.com/ternarybob/biocache-indexer/internal/vocab"
)

func TestClient_SearchForRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Vulpes vulpes", r.URL.Query().Get("q"))
		w.Write([]byte(`{"results":[{"lsid":"urn:lsid:1","left":10,"right":20}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, common.GetLogger())
	match, err := c.SearchForRecord("Vulpes vulpes", "")
	require.NoError(t, err)
	assert.Equal(t, "urn:lsid:1", match.LSID)
	assert.Equal(t, 10, match.Left)
	assert.Equal(t, 20, match.Right)
}

func TestClient_SearchForRecord_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, common.GetLogger())
	_, err := c.SearchForRecord("Nonexistent", "")
	assert.ErrorIs(t, err, vocab.ErrTaxonNotFound)
}

func TestClient_SearchForRecord_HomonymUsesFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"lsid":"urn:lsid:1","left":1,"right":2},{"lsid":"urn:lsid:2","left":3,"right":4}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, common.GetLogger())
	match, err := c.SearchForRecord("Homonym", "")
	require.NoError(t, err)
	assert.Equal(t, "urn:lsid:1", match.LSID)
}

func TestClient_SearchByLSID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "urn:lsid:accepted:1", r.URL.Query().Get("lsid"))
		assert.Empty(t, r.URL.Query().Get("q"))
		w.Write([]byte(`{"results":[{"lsid":"urn:lsid:accepted:1","left":10,"right":20}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, common.GetLogger())
	match, err := c.SearchByLSID("urn:lsid:accepted:1")
	require.NoError(t, err)
	assert.Equal(t, "urn:lsid:accepted:1", match.LSID)
	assert.Equal(t, 10, match.Left)
	assert.Equal(t, 20, match.Right)
}
