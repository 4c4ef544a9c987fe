package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"example.com/capbot/internal/store"
)

const (
	writeDeadline = 5 * time.Second
	pingEvery     = 10 * time.Second
)

// hub раздаёт события журнала подключённым websocket-клиентам.
// Запись в сокет — только из writePump, по одной горутине на клиента.
type hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newHub(log *slog.Logger) *hub {
	return &hub{
		log:     log,
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			// служебный сервер не публикуется наружу
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws upgrade", "err", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, 16)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

func (h *hub) broadcast(a store.Activity) {
	b, err := json.Marshal(a)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			// клиент не успевает читать — отключаем
			delete(h.clients, c)
			close(c.send)
			_ = c.conn.Close()
			h.log.Debug("ws client dropped: slow reader", "addr", c.conn.RemoteAddr())
		}
	}
}

func (h *hub) drop(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

func (h *hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		_ = c.conn.Close()
	}
	h.mu.Unlock()
}

func (h *hub) writePump(c *wsClient) {
	t := time.NewTicker(pingEvery)
	defer t.Stop()

	for {
		select {
		case b, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closing"),
					time.Now().Add(500*time.Millisecond))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.drop(c)
				return
			}
		case <-t.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"),
				time.Now().Add(writeDeadline)); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

// readPump нужен только чтобы заметить закрытие со стороны клиента.
func (h *hub) readPump(c *wsClient) {
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}
