package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzebond/CoP-Bot/internal/auth"
	"github.com/matzebond/CoP-Bot/internal/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // dashboard may run on another origin
}

type client struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.ws.Close()
	})
}

// Hub fans game events out to connected dashboard clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
	}
}

// Broadcast sends an event to every connected client. A client that
// cannot keep up is dropped rather than blocking the game loop.
func (h *Hub) Broadcast(ev game.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			delete(h.clients, c)
			c.close()
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// HandleWS upgrades /ws/events?token=... to a read-only event stream.
func (h *Hub) HandleWS(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusBadRequest)
			return
		}
		if _, err := svc.Verify(token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		c := &client{
			ws:   ws,
			send: make(chan []byte, 64),
		}
		h.add(c)

		// writer loop
		go func() {
			ticker := time.NewTicker(25 * time.Second)
			defer ticker.Stop()

			for {
				select {
				case msg, ok := <-c.send:
					if !ok {
						return
					}
					_ = ws.WriteMessage(websocket.TextMessage, msg)
				case <-ticker.C:
					_ = ws.WriteMessage(websocket.PingMessage, []byte{})
				}
			}
		}()

		// the client sends nothing, reading only detects the close
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		h.remove(c)
		c.close()
	}
}
