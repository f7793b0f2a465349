package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/internal/storage"
	"github.com/askwhyharsh/geohunt/internal/store"
	"github.com/askwhyharsh/geohunt/pkg/logger"
)

// UpdatesChannel carries coordinate writes between server instances.
const UpdatesChannel = "coordinates:updates"

// Hub fans coordinate writes out to the clients watching that role. With a
// redis client, writes go through pub/sub so every instance sees them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	redis      storage.RedisClient
	logger     logger.Logger
	mu         sync.RWMutex
	ctx        context.Context
}

// NewHub creates a hub. redisClient may be nil for a single instance.
func NewHub(ctx context.Context, redisClient storage.RedisClient, log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		redis:      redisClient,
		logger:     log,
		ctx:        ctx,
	}
}

func (h *Hub) Run() {
	if h.redis != nil {
		go h.relay()
	}

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.broadcastMessage(message)
		case <-h.ctx.Done():
			h.shutdown()
			return
		}
	}
}

// Publish announces a stored record to everyone watching r.
func (h *Hub) Publish(ctx context.Context, r role.Role, rec store.Record) {
	message := NewCoordinatesMessage(r, rec)

	if h.redis != nil {
		data, err := json.Marshal(message)
		if err != nil {
			h.logger.Error("Failed to marshal update", "error", err)
			return
		}
		err = h.redis.Publish(ctx, UpdatesChannel, data)
		if err == nil {
			return
		}
		h.logger.Warn("Failed to publish update, delivering locally", "error", err)
	}

	h.deliver(message)
}

func (h *Hub) deliver(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.ctx.Done():
	}
}

// relay forwards updates published by any instance to local clients.
func (h *Hub) relay() {
	pubsub := h.redis.Subscribe(h.ctx, UpdatesChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var message Message
			if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
				h.logger.Warn("Dropping malformed update", "error", err)
				continue
			}
			h.deliver(&message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	h.logger.Debug("Watcher joined", "role", client.role.String(), "watchers", len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Debug("Watcher left", "role", client.role.String(), "watchers", len(h.clients))
	}
}

func (h *Hub) broadcastMessage(message *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.role != message.Role {
			continue
		}
		select {
		case client.send <- message:
		default:
			// Client's send channel is full, close it
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// WatcherCount returns how many clients watch r.
func (h *Hub) WatcherCount(r role.Role) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for client := range h.clients {
		if client.role == r {
			n++
		}
	}
	return n
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*Client]bool)
}
