// Package inspector streams level lifecycle notifications to websocket
// clients, so external tools can watch loads, reloads and deaths live.
package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// Message is one JSON frame sent to subscribers.
type Message struct {
	Type    string `json:"type"`
	Seq     uint64 `json:"seq"`
	Time    int64  `json:"time"`
	Payload any    `json:"payload,omitempty"`
}

type hello struct {
	ID string `json:"id"`
}

type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans published messages out to every connected subscriber. Publish
// never blocks the caller; a subscriber that falls behind loses messages.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber
	latest      map[string]Message
	seq         uint64
	closed      bool

	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		subscribers: make(map[string]*subscriber),
		latest:      make(map[string]Message),
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Publish sends payload to every subscriber as a message of the given kind.
// The newest message of each kind is replayed to subscribers that join
// later.
func (h *Hub) Publish(kind string, payload any) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.seq++
	msg := Message{Type: kind, Seq: h.seq, Time: time.Now().UnixMilli(), Payload: payload}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("Inspector: marshal %s: %v", kind, err)
		return
	}
	h.latest[kind] = msg

	for _, sub := range h.subscribers {
		select {
		case sub.send <- data:
		default:
			h.logger.Printf("Inspector: subscriber %s is behind, dropping %s", sub.id, kind)
		}
	}
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("Inspector: upgrade failed: %v", err)
		return
	}

	sub, ok := h.subscribe(conn)
	if !ok {
		message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "inspector closed")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}
	go h.writeLoop(sub)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unsubscribe(sub.id)
			return
		}
	}
}

func (h *Hub) subscribe(conn *websocket.Conn) (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}

	sub := &subscriber{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	h.subscribers[sub.id] = sub

	h.seq++
	greeting, err := json.Marshal(Message{Type: "hello", Seq: h.seq, Time: time.Now().UnixMilli(), Payload: hello{ID: sub.id}})
	if err == nil {
		sub.send <- greeting
	}

	replay := make([]Message, 0, len(h.latest))
	for _, msg := range h.latest {
		replay = append(replay, msg)
	}
	sort.Slice(replay, func(i, j int) bool { return replay[i].Seq < replay[j].Seq })
	for _, msg := range replay {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		select {
		case sub.send <- data:
		default:
		}
	}
	h.logger.Printf("Inspector: subscriber %s connected", sub.id)
	return sub, true
}

func (h *Hub) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subscribers[id]
	if !ok {
		return
	}
	delete(h.subscribers, id)
	close(sub.send)
	h.logger.Printf("Inspector: subscriber %s disconnected", id)
}

// writeLoop owns writes to the connection. It exits when the subscriber
// is removed or a write fails.
func (h *Hub) writeLoop(sub *subscriber) {
	defer sub.conn.Close()
	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Printf("Inspector: write to %s: %v", sub.id, err)
			h.unsubscribe(sub.id)
			return
		}
	}
	sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Close disconnects every subscriber. Later Publish calls are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subscribers {
		delete(h.subscribers, id)
		close(sub.send)
	}
}

// ListenAndServe serves the hub on addr at /ws until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h *Hub) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
