package events

import (
	"encoding/json"
	"sync"
	"time"

	"prompt-cms/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

type subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *subscriber) write(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub keeps track of browsers listening for content updates.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]*subscriber)}
}

// Register adds conn and returns the id to unregister it with.
func (h *Hub) Register(conn *websocket.Conn) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.subscribers[id] = &subscriber{conn: conn}
	h.mu.Unlock()
	return id
}

// Unregister closes and forgets the connection.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()
	if ok {
		_ = sub.conn.Close()
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Broadcast sends event to every subscriber. Subscribers that fail to
// receive it are dropped.
func (h *Hub) Broadcast(event ContentEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to encode content event", "event_id", event.ID, "error", err)
		return
	}

	h.mu.RLock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.RUnlock()

	for id, sub := range subs {
		if err := sub.write(payload); err != nil {
			logger.Log.Debugw("dropping websocket subscriber", "subscriber", id, "error", err)
			h.Unregister(id)
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[string]*subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.mu.Lock()
		_ = sub.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		sub.mu.Unlock()
		_ = sub.conn.Close()
	}
}
