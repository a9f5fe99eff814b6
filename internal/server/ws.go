package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"codelens/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans pipeline events out to connected websocket clients. Slow
// clients are dropped rather than blocking a run.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan pipeline.Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan pipeline.Event)}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(ev pipeline.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			close(ch)
			delete(h.clients, conn)
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) chan pipeline.Event {
	ch := make(chan pipeline.Event, 16)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

// handleProgressSocket streams stage transitions of in-flight runs.
func (s *Server) handleProgressSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ch := s.hub.add(conn)
	defer s.hub.remove(conn)

	// Drain client messages so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.remove(conn)
				return
			}
		}
	}()

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket write: %v", err)
			}
			return
		}
	}
}
