package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/fingerboard/internal/app"
)

const (
	statusSendBuffer = 8
	writeTimeout     = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StatusHub is an app.Sink that broadcasts the session status of every
// tick to WebSocket clients. Slow clients miss updates rather than stall
// the tick.
type StatusHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	last    []byte
}

// NewStatusHub creates a hub with no clients.
func NewStatusHub() *StatusHub {
	return &StatusHub{
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Show broadcasts v.Status.
func (h *StatusHub) Show(v app.View) {
	h.Broadcast(v.Status)
}

// Broadcast sends st to every connected client.
func (h *StatusHub) Broadcast(st app.Status) {
	msg, err := json.Marshal(st)
	if err != nil {
		log.Printf("Error encoding status: %v", err)
		return
	}

	h.mu.Lock()
	h.last = msg
	for _, send := range h.clients {
		select {
		case send <- msg:
		default:
		}
	}
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *StatusHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles WebSocket upgrade requests. A new client immediately
// receives the most recent status, if any.
func (h *StatusHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan []byte, statusSendBuffer)
	h.mu.Lock()
	if h.last != nil {
		send <- h.last
	}
	h.clients[conn] = send
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Detect disconnects by reading until the client goes away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case msg := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}
