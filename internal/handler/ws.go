package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"golfcam/internal/events"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// WSMessage is a message from a client.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Client is one websocket connection. Kind, when set, limits the events
// sent to those of one resource kind.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *WSHub

	mu   sync.RWMutex
	kind string

	sendMu sync.Mutex
	closed bool
}

// trySend queues msg without blocking. It reports false when the buffer is
// full or the client has been closed.
func (c *Client) trySend(msg []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// close closes Send once; later calls are no-ops.
func (c *Client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) wants(kind string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kind == "" || c.kind == kind
}

func (c *Client) setKind(kind string) {
	c.mu.Lock()
	c.kind = kind
	c.mu.Unlock()
}

type broadcastMsg struct {
	kind string
	data []byte
}

// WSHub fans domain events out to websocket clients. With a NATS
// connection it follows the event subjects; without one it is fed through
// Publish.
type WSHub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastMsg
	register   chan *Client
	unregister chan *Client
	natsConn   *nats.Conn
	sub        *nats.Subscription
	done       chan struct{}
	mu         sync.RWMutex
}

func NewWSHub(nc *nats.Conn) *WSHub {
	return &WSHub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastMsg, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		natsConn:   nc,
		done:       make(chan struct{}),
	}
}

// Subscribed reports whether the hub receives events from NATS.
func (h *WSHub) Subscribed() bool {
	return h.natsConn != nil
}

// Publish queues e for the connected clients. It never blocks.
func (h *WSHub) Publish(_ context.Context, e events.Event) error {
	h.enqueue(e)
	return nil
}

func (h *WSHub) enqueue(e events.Event) {
	data, err := json.Marshal(map[string]any{
		"type": "event",
		"data": e,
	})
	if err != nil {
		log.Printf("[WS] Failed to marshal event %s: %v", e.ID, err)
		return
	}
	select {
	case h.broadcast <- broadcastMsg{kind: e.Kind, data: data}:
	default:
		log.Printf("[WS] Broadcast queue full, dropping event %s", e.Subject())
	}
}

// Run starts the hub's event loop. It returns after Stop.
func (h *WSHub) Run() {
	if h.natsConn != nil {
		sub, err := h.natsConn.Subscribe(events.SubjectAll, func(msg *nats.Msg) {
			var e events.Event
			if err := json.Unmarshal(msg.Data, &e); err != nil {
				log.Printf("[WS] Failed to unmarshal event on %s: %v", msg.Subject, err)
				return
			}
			h.enqueue(e)
		})
		if err != nil {
			log.Printf("[WS] Failed to subscribe to NATS: %v", err)
		} else {
			h.sub = sub
			log.Printf("[WS] Hub started, subscribed to %s", events.SubjectAll)
		}
	}

	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client connected: %s, total clients: %d", client.ID, n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client disconnected: %s, total clients: %d", client.ID, n)

		case msg := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				if !client.wants(msg.kind) {
					continue
				}
				if !client.trySend(msg.data) {
					h.drop(client)
				}
			}
		}
	}
}

// drop disconnects a client whose send buffer is full.
func (h *WSHub) drop(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.close()
	}
}

// Stop ends the event loop and closes every connection.
func (h *WSHub) Stop() {
	if h.sub != nil {
		h.sub.Unsubscribe()
	}
	close(h.done)
	h.mu.Lock()
	for client := range h.clients {
		client.close()
		if client.Conn != nil {
			client.Conn.Close()
		}
		delete(h.clients, client)
	}
	h.mu.Unlock()
}

// GetClientCount returns the number of connected clients.
func (h *WSHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ReadPump handles incoming messages from the client.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(64 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Client %s read error: %v", c.ID, err)
			}
			break
		}

		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			continue
		}
		switch wsMsg.Type {
		case "subscribe":
			var data struct {
				Kind string `json:"kind"`
			}
			if err := json.Unmarshal(wsMsg.Data, &data); err == nil {
				c.setKind(data.Kind)
				log.Printf("[WS] Client %s subscribed to %q", c.ID, data.Kind)
			}
		case "ping":
			c.trySend([]byte(`{"type":"pong"}`))
		}
	}
}

// WritePump handles outgoing messages to the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WSHandler handles websocket connections.
type WSHandler struct {
	hub *WSHub
}

func NewWSHandler(hub *WSHub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleEvents upgrades the connection and streams domain events. The
// optional kind query parameter limits the stream to one resource kind.
func (h *WSHandler) HandleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Failed to upgrade connection: %v", err)
		return
	}

	clientID := c.Query("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}
	client := &Client{
		ID:   clientID,
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  h.hub,
		kind: c.Query("kind"),
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	welcome, _ := json.Marshal(map[string]any{
		"type":     "connected",
		"message":  "Connected to golfcam event stream",
		"clientId": clientID,
	})
	client.trySend(welcome)
}

// GetStats returns websocket hub statistics.
func (h *WSHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": h.hub.GetClientCount(),
		"nats":              h.hub.Subscribed(),
	})
}
