package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
)

// Event types pushed to gallery and message board pages.
const (
	EventMediaLiked       = "media.liked"
	EventMediaInvalidated = "media.invalidated"
	EventMessagePosted    = "message.posted"
)

type Event struct {
	Type      string          `json:"type"`
	MediaID   string          `json:"mediaId,omitempty"`
	Likes     int             `json:"likes,omitempty"`
	Message   *domain.Message `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher is what the services need from the hub.
type Publisher interface {
	Publish(event Event)
}

// Hub fans events out to every connected websocket client.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        logger.Logger
}

var _ Publisher = (*Hub)(nil)

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.WithComponent("LiveHub"),
	}
}

// Publish never blocks the caller; events are dropped when the hub is saturated.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn("Live hub saturated, dropping event", "type", event.Type)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				h.log.Error("Failed to encode live event", "type", event.Type, "error", err)
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}
