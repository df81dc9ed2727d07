package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types pushed to dashboards
const (
	EventCreated   = "offer_letter.created"
	EventGenerated = "offer_letter.generated"
	EventSent      = "offer_letter.sent"
	EventDeleted   = "offer_letter.deleted"
)

// Event is a lifecycle change of one offer letter, delivered to its owner
type Event struct {
	Type          string    `json:"type"`
	OfferLetterID int64     `json:"offerLetterId"`
	RefNo         string    `json:"refNo"`
	Status        string    `json:"status,omitempty"`
	PdfURL        string    `json:"pdfUrl,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type envelope struct {
	userID int64
	event  Event
}

// Hub maintains the set of active clients and fans events out to them
type Hub struct {
	// Registered clients organized by owner user ID
	clients map[int64]map[*Client]bool

	publish    chan envelope
	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	logger zerolog.Logger
	now    func() time.Time
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		publish:    make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger,
		now:        time.Now,
	}
}

// Run handles registrations and deliveries until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.publish:
			h.deliver(env)
		}
	}
}

// Publish queues an event for every connection of userID.
// It never blocks; events are dropped when the queue is full.
func (h *Hub) Publish(userID int64, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = h.now().UTC()
	}
	select {
	case h.publish <- envelope{userID: userID, event: event}:
	default:
		h.logger.Warn().
			Int64("userID", userID).
			Str("type", event.Type).
			Msg("Event queue full, dropping event")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

func (h *Hub) deliver(env envelope) {
	data, err := json.Marshal(env.event)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", env.userID).Msg("Failed to marshal event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[env.userID]
	if !ok {
		return
	}

	for client := range conns {
		select {
		case client.send <- data:
		default:
			// Slow consumer
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Int64("userID", env.userID).
		Str("type", env.event.Type).
		Int("clientCount", len(conns)).
		Msg("Event delivered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			h.removeLocked(client)
		}
	}
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of open connections for a user
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
