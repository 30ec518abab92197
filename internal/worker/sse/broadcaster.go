// Package sse streams session activity to dashboards over Server-Sent Events.
package sse

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const (
	// WriteTimeout bounds a single delivery. Slower clients are dropped.
	WriteTimeout = 2 * time.Second

	// HeartbeatInterval is how often idle streams receive a keep-alive comment.
	HeartbeatInterval = 15 * time.Second
)

// Event types published by the worker.
const (
	EventConnected       = "connected"
	EventSessionCreated  = "session_created"
	EventEventsAppended  = "events_appended"
	EventSessionEnded    = "session_ended"
	EventSessionAnalyzed = "session_analyzed"
	EventSessionDeleted  = "session_deleted"
	EventTaxonomyUpdated = "taxonomy_updated"
)

var errNoFlusher = errors.New("response writer does not support streaming")

// Event is one message on the stream. Events with an empty SessionID are
// delivered to every client.
type Event struct {
	Data      any    `json:"data,omitempty"`
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
}

// Client is one open stream. A non-empty SessionID limits the client to
// events for that session.
type Client struct {
	Writer    http.ResponseWriter
	Flusher   http.Flusher
	Done      chan struct{}
	ID        string
	SessionID string
	mu        sync.Mutex
	closeOnce sync.Once
}

// write serializes writes so heartbeats and broadcasts never interleave.
func (c *Client) write(message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.Writer.Write([]byte(message)); err != nil {
		return err
	}
	c.Flusher.Flush()
	return nil
}

func (c *Client) wants(ev Event) bool {
	return c.SessionID == "" || ev.SessionID == "" || c.SessionID == ev.SessionID
}

func (c *Client) close() {
	if c.Done == nil {
		return
	}
	c.closeOnce.Do(func() { close(c.Done) })
}

func (c *Client) closed() bool {
	select {
	case <-c.Done:
		return true
	default:
		return false
	}
}

// Broadcaster fans session events out to the connected streams.
type Broadcaster struct {
	clients map[string]*Client
	mu      sync.RWMutex
	nextID  int
}

// NewBroadcaster returns a broadcaster with no clients.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[string]*Client)}
}

// AddClient registers a stream. sessionID may be empty to subscribe to all
// sessions.
func (b *Broadcaster) AddClient(w http.ResponseWriter, sessionID string) (*Client, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errNoFlusher
	}

	b.mu.Lock()
	b.nextID++
	client := &Client{
		ID:        fmt.Sprintf("stream-%d", b.nextID),
		SessionID: sessionID,
		Writer:    w,
		Flusher:   flusher,
		Done:      make(chan struct{}),
	}
	b.clients[client.ID] = client
	total := len(b.clients)
	b.mu.Unlock()

	log.Debug().
		Str("client", client.ID).
		Str("session", sessionID).
		Int("clients", total).
		Msg("Stream opened")

	return client, nil
}

// RemoveClient unregisters a stream and closes its Done channel.
func (b *Broadcaster) RemoveClient(client *Client) {
	b.drop(client.ID)
	client.close()

	log.Debug().
		Str("client", client.ID).
		Int("clients", b.ClientCount()).
		Msg("Stream closed")
}

func (b *Broadcaster) drop(id string) {
	b.mu.Lock()
	client, ok := b.clients[id]
	delete(b.clients, id)
	b.mu.Unlock()

	if ok {
		client.close()
	}
}

// subscribers returns the open clients interested in ev.
func (b *Broadcaster) subscribers(ev Event) []*Client {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Client, 0, len(b.clients))
	for _, c := range b.clients {
		if c.wants(ev) && !c.closed() {
			out = append(out, c)
		}
	}
	return out
}

// Publish delivers ev to every interested client in parallel. Clients that
// fail or exceed WriteTimeout are dropped.
func (b *Broadcaster) Publish(ev Event) {
	message, err := formatEvent(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("Failed to encode stream event")
		return
	}

	targets := b.subscribers(ev)
	if len(targets) == 0 {
		return
	}

	var (
		wg    sync.WaitGroup
		deadM sync.Mutex
		dead  []string
	)
	for _, c := range targets {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			if !deliver(c, message) {
				deadM.Lock()
				dead = append(dead, c.ID)
				deadM.Unlock()
			}
		}(c)
	}
	wg.Wait()

	for _, id := range dead {
		b.drop(id)
	}
	if len(dead) > 0 {
		log.Debug().Int("dropped", len(dead)).Str("type", ev.Type).Msg("Dropped unresponsive streams")
	}
}

// deliver writes message to c, reporting false when c should be dropped.
func deliver(c *Client, message string) bool {
	result := make(chan error, 1)
	go func() { result <- c.write(message) }()

	select {
	case err := <-result:
		if err != nil {
			log.Debug().Err(err).Str("client", c.ID).Msg("Stream write failed")
			return false
		}
		return true
	case <-time.After(WriteTimeout):
		log.Warn().Str("client", c.ID).Dur("timeout", WriteTimeout).Msg("Stream write timed out")
		return false
	case <-c.Done:
		return true
	}
}

// formatEvent renders ev as a named SSE message.
func formatEvent(ev Event) (string, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, payload), nil
}

// ClientCount returns the number of open streams.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// HandleSSE serves GET /api/events. The optional "session" query parameter
// narrows the stream to one session.
func (b *Broadcaster) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")

	client, err := b.AddClient(w, r.URL.Query().Get("session"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer b.RemoveClient(client)

	hello, _ := formatEvent(Event{
		Type:      EventConnected,
		SessionID: client.SessionID,
		Data:      map[string]string{"clientId": client.ID},
	})
	if err := client.write(hello); err != nil {
		return
	}

	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.Done:
			return
		case <-ticker.C:
			if err := client.write(": ping\n\n"); err != nil {
				return
			}
		}
	}
}
