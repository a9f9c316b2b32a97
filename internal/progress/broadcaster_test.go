package progress

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/biocache-indexer/internal/common"
)

func newTestServer(t *testing.T, b *Broadcaster) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(b.HandleWebSocket))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return srv, wsURL
}

func TestBroadcaster_DeliversUpdateToConnectedClient(t *testing.T) {
	b := NewBroadcaster(common.GetLogger())
	srv, wsURL := newTestServer(t, b)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	b.Broadcast(Update{Stage: "reindex", Processed: 42})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stage":"reindex"`)
	assert.Contains(t, string(data), `"processed":42`)
}

func TestBroadcaster_ClientCountDropsOnDisconnect(t *testing.T) {
	b := NewBroadcaster(common.GetLogger())
	srv, wsURL := newTestServer(t, b)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return b.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestBroadcaster_BroadcastWithNoClientsIsNoop(t *testing.T) {
	b := NewBroadcaster(common.GetLogger())
	b.Broadcast(Update{Stage: "resample"})
	assert.Equal(t, 0, b.ClientCount())
}
