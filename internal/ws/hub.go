package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"PayIVR/entity"
	"PayIVR/internal/lib/sl"
)

// Event represents a WebSocket event sent to dashboard clients.
type Event struct {
	Type string      `json:"type"` // "step", "payment"
	Data interface{} `json:"data"`
}

type outbound struct {
	callSid string
	data    []byte
}

// Hub maintains the set of active WebSocket clients and broadcasts call events.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// Run starts the hub's event loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(msg.callSid) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a call event for every interested client. It never blocks
// the webhook: when the queue is full the event is dropped.
func (h *Hub) Broadcast(event entity.CallEvent) {
	data, err := json.Marshal(&Event{Type: event.Type, Data: event})
	if err != nil {
		h.log.Warn("failed to encode call event", sl.Err(err))
		return
	}
	select {
	case h.broadcast <- outbound{callSid: event.CallSid, data: data}:
	default:
		h.log.Warn("call event dropped", sl.CallSid(event.CallSid))
	}
}

// clientEvent represents an incoming WebSocket message from a client.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage parses and dispatches an incoming message from a client.
func (h *Hub) HandleClientMessage(client *Client, raw []byte) {
	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		h.log.Warn("failed to parse client ws message", sl.Err(err))
		return
	}

	switch event.Type {
	case "subscribe":
		var data struct {
			CallSid string `json:"call_sid"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			h.log.Warn("failed to parse subscribe data", sl.Err(err))
			return
		}
		client.follow(data.CallSid)
		h.log.Debug("client subscribed",
			slog.String("username", client.username),
			sl.CallSid(data.CallSid),
		)
	case "unsubscribe":
		client.follow("")
	}
}
