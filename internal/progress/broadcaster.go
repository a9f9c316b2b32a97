// Package progress implements a websocket broadcaster for the "every
// 10,000 rows" progress counter of the reindex and resample drivers, so a
// bulk (re)indexing run can be watched live instead of only read back
// from the log file. Batch flushes and commits are not broadcast.
package progress

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Update is one progress event broadcast to attached observers.
type Update struct {
	Stage     string    `json:"stage"` // "reindex", "resample", ...
	Processed int64     `json:"processed"`
	Total     int64     `json:"total,omitempty"`
	Errors    int64     `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}

// message is the wire envelope every broadcast is wrapped in.
type message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Broadcaster fans progress Updates out to every connected websocket
// client. It holds no state about the indexing run itself; callers push
// updates in from the driver loop.
type Broadcaster struct {
	logger arbor.ILogger

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewBroadcaster constructs an empty Broadcaster.
func NewBroadcaster(logger arbor.ILogger) *Broadcaster {
	return &Broadcaster{
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// HandleWebSocket upgrades r into a websocket connection and registers it
// as a progress observer until it disconnects.
func (b *Broadcaster) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Error().Err(err).Msg("progress: failed to upgrade websocket connection")
		return
	}

	b.mu.Lock()
	b.clients[conn] = &sync.Mutex{}
	count := len(b.clients)
	b.mu.Unlock()
	b.logger.Info().Int("clients", count).Msg("progress: observer connected")

	defer func() {
		b.mu.Lock()
		delete(b.clients, conn)
		remaining := len(b.clients)
		b.mu.Unlock()
		conn.Close()
		b.logger.Info().Int("clients", remaining).Msg("progress: observer disconnected")
	}()

	// The connection is write-only from the server's perspective; still
	// drain reads so the client's close frame is observed promptly.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends update to every connected observer. A write failure on
// one client is logged and does not affect the others: it is purely a UI
// concern, never fatal to the indexing run itself.
func (b *Broadcaster) Broadcast(update Update) {
	data, err := json.Marshal(message{Type: "progress", Payload: update})
	if err != nil {
		b.logger.Error().Err(err).Msg("progress: failed to marshal update")
		return
	}

	b.mu.RLock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(b.clients))
	for conn, mu := range b.clients {
		targets[conn] = mu
	}
	b.mu.RUnlock()

	for conn, mu := range targets {
		mu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mu.Unlock()
		if err != nil {
			b.logger.Warn().Err(err).Msg("progress: failed to send update to observer")
		}
	}
}

// ClientCount reports how many observers are currently attached.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
