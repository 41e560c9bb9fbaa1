// Package messaging provides the real-time feed for the admin dashboard.
package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/gorilla/websocket"
)

// AdminClient represents a single connected admin dashboard client.
type AdminClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Event is a single dashboard message: periodic stats snapshots plus
// eviction and warming notifications.
type Event struct {
	Type      string         `json:"type"` // stats, cache-eviction, cache-warming
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// StatsFunc supplies the periodic stats payload. Called on every tick
// while at least one client is connected.
type StatsFunc func() map[string]any

// AdminBroadcaster manages connected admin clients and fans events out
// to them.
type AdminBroadcaster struct {
	clients    map[*AdminClient]bool
	register   chan *AdminClient
	unregister chan *AdminClient
	events     chan Event
	statsFn    StatsFunc
	interval   time.Duration
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

// NewAdminBroadcaster creates a broadcaster that pushes a stats snapshot
// every interval.
func NewAdminBroadcaster(statsFn StatsFunc, interval time.Duration, logger *logging.ChanneledLogger) *AdminBroadcaster {
	if interval <= 0 {
		interval = 20 * time.Second
	}
	return &AdminBroadcaster{
		clients:    make(map[*AdminClient]bool),
		register:   make(chan *AdminClient),
		unregister: make(chan *AdminClient),
		events:     make(chan Event, 64),
		statsFn:    statsFn,
		interval:   interval,
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *AdminBroadcaster) Run() {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			b.logger.System().Debug("Admin dashboard client connected")

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			b.logger.System().Debug("Admin dashboard client disconnected")

		case event := <-b.events:
			b.send(event)

		case <-ticker.C:
			if b.statsFn == nil {
				continue
			}
			b.mu.RLock()
			idle := len(b.clients) == 0
			b.mu.RUnlock()
			if idle {
				continue
			}
			b.send(Event{Type: "stats", Timestamp: time.Now(), Payload: b.statsFn()})
		}
	}
}

// Register queues a client for registration.
func (b *AdminBroadcaster) Register(client *AdminClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *AdminBroadcaster) Unregister(client *AdminClient) {
	b.unregister <- client
}

// Publish queues an event for broadcast. Drops the event when the queue
// is full rather than blocking the caller.
func (b *AdminBroadcaster) Publish(eventType string, payload map[string]any) {
	select {
	case b.events <- Event{Type: eventType, Timestamp: time.Now(), Payload: payload}:
	default:
		b.logger.System().Warn("Admin event queue full, dropping event", "type", eventType)
	}
}

func (b *AdminBroadcaster) send(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		b.logger.System().Error("Failed to marshal admin event", "type", event.Type, "error", err.Error())
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
}
