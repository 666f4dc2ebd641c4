package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
	inboxBuffer    = 16
)

// Client is one WebSocket connection. Three goroutines serve it: readPump
// decodes client messages, run applies them to the session one at a time,
// and writePump writes queued messages and keepalive pings.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	inbox   chan Inbound
	changed chan struct{}
	logger  *slog.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		inbox:   make(chan Inbound, inboxBuffer),
		changed: make(chan struct{}, 1),
		send:    make(chan []byte, sendBuffer),
		logger:  logger,
	}
}

// enqueue queues msg for the write pump. Messages to a closed or backed-up
// client are dropped.
func (c *Client) enqueue(msg Outbound) {
	if !c.trySend(mustMarshal(msg)) {
		c.logger.Debug("dropping live message", "type", msg.Type)
	}
}

func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// signalChanged asks the session to reload collections. Signals coalesce.
func (c *Client) signalChanged() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

func (c *Client) readPump() {
	defer func() {
		close(c.inbox)
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("live connection error", "error", err)
			}
			return
		}

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("invalid live message", "error", err)
			c.enqueue(Outbound{Type: TypeError, Data: messageData{Message: "invalid message"}})
			continue
		}
		c.inbox <- msg
	}
}

func (c *Client) run(session *Session) {
	defer session.Close()

	session.Start()
	for {
		select {
		case msg, ok := <-c.inbox:
			if !ok {
				return
			}
			if err := session.Handle(msg); err != nil {
				c.logger.Info("live message rejected", "type", msg.Type, "error", err)
			}
		case <-c.changed:
			session.CollectionsChanged()
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Handler upgrades requests to live sessions.
type Handler struct {
	hub      *Hub
	deps     Deps
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, deps Deps) *Handler {
	return &Handler{
		hub:  hub,
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.deps.Logger.Warn("failed to upgrade live connection", "error", err)
		return
	}

	c := newClient(h.hub, conn, h.deps.Logger)
	if !h.hub.add(c) {
		_ = conn.Close()
		return
	}
	session := NewSession(h.deps, c.enqueue, func() {
		h.hub.Publish(Outbound{Type: TypeCollectionsChanged}, c)
	})

	go c.writePump()
	go c.run(session)
	go c.readPump()
}
