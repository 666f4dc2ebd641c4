package live

import (
	"context"
	"log/slog"
	"sync"
)

// Hub tracks connected clients and fans messages out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
}

type envelope struct {
	msg    Outbound
	except *Client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.closeSend()
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("live client connected", "clients", h.Len())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Debug("live client disconnected", "clients", h.Len())

		case env := <-h.broadcast:
			data := mustMarshal(env.msg)
			changed := env.msg.Type == TypeCollectionsChanged

			h.mu.Lock()
			for client := range h.clients {
				if client == env.except {
					continue
				}
				if !client.trySend(data) {
					h.logger.Warn("dropping slow live client")
					delete(h.clients, client)
					client.closeSend()
					continue
				}
				if changed {
					client.signalChanged()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues msg for every client except the given one, which may be
// nil.
func (h *Hub) Publish(msg Outbound, except *Client) {
	select {
	case h.broadcast <- envelope{msg: msg, except: except}:
	case <-h.done:
	default:
		h.logger.Warn("live broadcast queue full, dropping message", "type", msg.Type)
	}
}

// CollectionsChanged tells every session to reload its collections.
func (h *Hub) CollectionsChanged() {
	h.Publish(Outbound{Type: TypeCollectionsChanged}, nil)
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
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
