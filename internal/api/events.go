package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/prelogate-core/internal/infrastructure/logging"
	"github.com/nerrad567/prelogate-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/prelogate-core/internal/runstore"
)

const (
	wsTypeEvent = "event"

	// wsSendBufferSize is the per-client outbound message buffer size.
	wsSendBufferSize = 256

	// Clients only send control frames, so reads stay small.
	wsMaxMessageSize = 512
	wsPingInterval   = 30 * time.Second
	wsPongWait       = 60 * time.Second
	wsWriteWait      = 10 * time.Second
)

// EventSource is the broker run events are relayed from. *mqtt.Client
// satisfies it.
type EventSource interface {
	Subscribe(filter string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(filter string) error
	Topics() mqtt.Topics
}

// EventMessage is one run event pushed to websocket clients. EventType is
// the last topic level, "status" or "solution", and Payload is the message
// as published.
type EventMessage struct {
	Type      string          `json:"type"`
	EventType string          `json:"event_type"`
	RunID     string          `json:"run_id"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Hub fans run events out to connected websocket clients.
type Hub struct {
	logger  *logging.Logger
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	closed  bool
}

// wsClient is one event stream connection. runID is empty when the client
// follows every run.
type wsClient struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	runID string
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Bearer auth already gates the route.
		return true
	},
}

func newHub(logger *logging.Logger) *Hub {
	return &Hub{logger: logger, clients: make(map[*wsClient]struct{})}
}

// register adds a client. It reports false once the hub is closed.
func (h *Hub) register(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.logger.Debug("event stream client connected", "run_id", c.runID, "clients", len(h.clients))
	return true
}

// unregister removes a client. Only the caller that removes it closes its
// send channel.
func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	_, existed := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if existed {
		close(c.send)
	}
}

// Broadcast sends an event to every client following runID.
func (h *Hub) Broadcast(runID, eventType string, payload json.RawMessage) {
	data, err := json.Marshal(EventMessage{
		Type:      wsTypeEvent,
		EventType: eventType,
		RunID:     runID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal run event", "run_id", runID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.clients {
		if c.runID != "" && c.runID != runID {
			continue
		}
		select {
		case c.send <- data:
			sent++
		default:
			h.logger.Warn("event stream client too slow, event dropped", "run_id", runID)
		}
	}
	if sent > 0 {
		h.logger.Debug("run event broadcast", "run_id", runID, "event_type", eventType, "recipients", sent)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAll disconnects every client and refuses new ones.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		c.conn.Close()
		delete(h.clients, c)
	}
}

// startRelay forwards every run topic from the event source into the hub.
func (s *Server) startRelay() error {
	if s.events == nil {
		return nil
	}
	filter := s.events.Topics().AllRuns()
	if err := s.events.Subscribe(filter, 1, s.relayRunEvent); err != nil {
		return fmt.Errorf("subscribing to run events: %w", err)
	}
	s.logger.Info("relaying run events to websocket clients", "topic", filter)
	return nil
}

func (s *Server) stopRelay() {
	if s.events != nil {
		if err := s.events.Unsubscribe(s.events.Topics().AllRuns()); err != nil {
			s.logger.Warn("unsubscribing from run events", "error", err)
		}
	}
	s.hub.closeAll()
}

// relayRunEvent handles one broker message. Topics outside the run tree
// are ignored; payloads must be JSON.
func (s *Server) relayRunEvent(topic string, payload []byte) error {
	runID, ok := s.events.Topics().RunIDFromTopic(topic)
	if !ok {
		return nil
	}
	if !json.Valid(payload) {
		return fmt.Errorf("run event on %s is not JSON", topic)
	}
	s.hub.Broadcast(runID, topic[strings.LastIndex(topic, "/")+1:], payload)
	return nil
}

// handleEvents upgrades to a websocket streaming run events, for one run
// when the route carries an id and for all runs otherwise.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "no event broker configured")
		return
	}

	runID := chi.URLParam(r, "id")
	if runID != "" {
		if _, err := s.runs.GetRun(r.Context(), runID); err != nil {
			if errors.Is(err, runstore.ErrRunNotFound) {
				writeNotFound(w, "run not found")
				return
			}
			s.logger.Error("getting run", "id", runID, "error", err)
			writeInternalError(w, "failed to get run")
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{
		hub:   s.hub,
		conn:  conn,
		send:  make(chan []byte, wsSendBufferSize),
		runID: runID,
	}
	if !s.hub.register(c) {
		//nolint:errcheck // Best-effort close on shutdown
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump drains client frames so pongs and close frames are processed.
// The stream is one-way; any text the client sends is discarded.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(wsMaxMessageSize)
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("event stream read error", "error", err)
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			//nolint:errcheck // Write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
