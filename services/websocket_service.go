package services

import (
	"encoding/json"
	"sync"
	"time"

	"littertrack/metrics"
	"littertrack/models"

	"github.com/apex/log"
	"github.com/gorilla/websocket"
)

// Hub fans complaint mutation events out to connected dashboard clients, so
// an open dashboard reflects submissions, status changes and deletions
// without polling.
type Hub struct {
	clients       map[*Client]bool
	broadcast     chan models.BroadcastMessage
	register      chan *Client
	unregister    chan *Client
	mutex         sync.RWMutex
	lastBroadcast int
}

// Client is one connected dashboard websocket.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.BroadcastMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Start runs the hub loop. Call in a goroutine.
func (h *Hub) Start() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			metrics.WebsocketClients.Inc()
			log.Info("Dashboard websocket client registered")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.WebsocketClients.Dec()
			}
			h.mutex.Unlock()
			log.Info("Dashboard websocket client unregistered")

		case message := <-h.broadcast:
			data := serialize(message)
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.WebsocketClients.Dec()
				}
			}
			h.mutex.RUnlock()
			h.lastBroadcast++
		}
	}
}

func (h *Hub) Stop() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// RegisterClient attaches an upgraded connection to the hub.
func (h *Hub) RegisterClient(conn *websocket.Conn) {
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// Broadcast publishes a mutation event to every connected client.
func (h *Hub) Broadcast(message models.BroadcastMessage) {
	h.broadcast <- message
}

func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func serialize(message models.BroadcastMessage) []byte {
	data, err := json.Marshal(message)
	if err != nil {
		log.Errorf("Failed to serialize broadcast message: %v", err)
		return []byte("{}")
	}
	return data
}

// readPump drains the connection until the client goes away.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("Websocket read error: %v", err)
			}
			break
		}
	}
}

// writePump pumps hub messages to the connection and keeps it alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
