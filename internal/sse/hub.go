// Package sse fans out session notifications to server-sent-event streams.
package sse

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event types published on a session topic.
const (
	EventProgress   = "progress"
	EventReady      = "ready"
	EventFailed     = "failed"
	EventRecomposed = "recomposed"
)

// Event is one server-sent event.
type Event struct {
	Type string
	Data string // JSON payload
}

// SessionTopic is the topic a session's events are published on.
func SessionTopic(sessionID string) string {
	return "session:" + sessionID
}

// Hub is an in-memory pub/sub hub.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[chan Event]struct{}
}

func New() *Hub {
	return &Hub{
		clients: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a listener on topic and returns its channel and an
// unsubscribe function.
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	if h.clients[topic] == nil {
		h.clients[topic] = make(map[chan Event]struct{})
	}
	h.clients[topic][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients[topic], ch)
			if len(h.clients[topic]) == 0 {
				delete(h.clients, topic)
			}
			h.mu.Unlock()
		})
	}
	return ch, unsub
}

// Subscribers returns the number of listeners on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[topic])
}

// Publish sends event to every listener on topic. Slow listeners whose
// buffer is full miss the event.
func (h *Hub) Publish(topic string, event Event) {
	h.mu.Lock()
	subs := h.clients[topic]
	channels := make([]chan Event, 0, len(subs))
	for ch := range subs {
		channels = append(channels, ch)
	}
	h.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishJSON marshals payload and publishes it as an event of type typ.
func (h *Hub) PublishJSON(topic, typ string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("sse marshal", "topic", topic, "type", typ, "error", err)
		return
	}
	h.Publish(topic, Event{Type: typ, Data: string(data)})
}
