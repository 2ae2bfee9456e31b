package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub fans pool events out to connected clients. Each client belongs to one
// pool room; events from other pools are never delivered to it.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

type Client struct {
	hub    *Hub
	id     string
	socket *websocket.Conn
	send   chan []byte
	poolID uint
	userID uint
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client registered: %s for pool %d (user %d) - Total clients: %d", client.id, client.poolID, client.userID, h.clientCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			log.Printf("Client unregistered: %s for pool %d (user %d) - Total clients: %d", client.id, client.poolID, client.userID, h.clientCount())
		}
	}
}

// BroadcastToPool sends an event to every client connected to the pool.
func (h *Hub) BroadcastToPool(poolID uint, messageType string, payload interface{}) {
	message := Message{
		Type:    messageType,
		Payload: payload,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		if client.poolID != poolID {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.Unlock()
}

// BroadcastAll sends an event to every connected client regardless of pool.
// Used for game results, which affect the standings of every pool.
func (h *Hub) BroadcastAll(messageType string, payload interface{}) {
	message := Message{
		Type:    messageType,
		Payload: payload,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.Unlock()
}

// RegisterClient attaches a websocket connection to a pool room and starts
// its read/write pumps. Blocks until registration is accepted.
func (h *Hub) RegisterClient(conn *websocket.Conn, poolID, userID uint) {
	client := &Client{
		hub:    h,
		id:     fmt.Sprintf("%d-%d-%d", poolID, userID, time.Now().UnixNano()),
		socket: conn,
		send:   make(chan []byte, 16),
		poolID: poolID,
		userID: userID,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (h *Hub) clientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("Write error for client %s: %v", c.id, err)
			return
		}
	}
}

// readPump discards inbound frames; the event stream is one-way. It exists
// to detect disconnects and unregister the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}
