package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisChannel = "blackhole:catalog"

// Hub fans catalogue events out to every connected browser. Events go
// through Redis Pub/Sub so all instances deliver them.
type Hub struct {
	// deviceID -> connections (one browser can have several tabs open)
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	// local delivery when no Redis client is configured
	broadcast chan *model.WSEvent

	rdb *redis.Client
	log *zap.Logger
}

// NewHub creates a new WebSocket Hub. rdb may be nil for a single instance.
func NewHub(rdb *redis.Client, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *model.WSEvent, 256),
		rdb:        rdb,
		log:        log,
	}
}

// Run starts the Hub's main event loop
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case event := <-h.broadcast:
			h.broadcastToLocal(event)
		}
	}
}

// Register queues a client for registration with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Broadcast delivers event to every connected browser on every instance
func (h *Hub) Broadcast(ctx context.Context, event model.WSEvent) error {
	if h.rdb == nil {
		select {
		case h.broadcast <- &event:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, redisChannel, data).Err()
}

// ConnectedDevices returns how many distinct devices are connected here
func (h *Hub) ConnectedDevices() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.DeviceID]; !ok {
		h.clients[client.DeviceID] = make(map[*Client]bool)
	}
	h.clients[client.DeviceID][client] = true
	h.log.Debug("catalog client connected",
		zap.String("device_id", client.DeviceID),
		zap.Int("connections", len(h.clients[client.DeviceID])))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(client)
	h.log.Debug("catalog client disconnected", zap.String("device_id", client.DeviceID))
}

// dropLocked closes client's send channel once. Callers hold h.mu.
func (h *Hub) dropLocked(client *Client) {
	clients, ok := h.clients[client.DeviceID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.DeviceID)
	}
}

func (h *Hub) broadcastToLocal(event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("marshal catalog event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// slow consumer
				h.dropLocked(client)
			}
		}
	}
}

func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	h.log.Info("catalog pub/sub subscriber started", zap.String("channel", redisChannel))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event model.WSEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.log.Warn("bad catalog event on pub/sub", zap.Error(err))
				continue
			}
			h.broadcastToLocal(&event)
		}
	}
}
