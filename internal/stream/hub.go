package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans ride snapshots out to websocket subscribers, locally and
// across instances via redis pub-sub.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	RideID string
	Send   chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(rideID string) *Client {
	client := &Client{
		RideID: rideID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[rideID] == nil {
		h.clients[rideID] = map[*Client]struct{}{}
	}
	h.clients[rideID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rideClients, ok := h.clients[client.RideID]; ok {
		delete(rideClients, client)
		if len(rideClients) == 0 {
			delete(h.clients, client.RideID)
		}
	}
	close(client.Send)
}

func (h *Hub) Broadcast(rideID string, payload []byte) {
	// sends stay under the read lock: Unregister closes Send under the
	// write lock, so a send can never race the close
	h.mu.RLock()
	for client := range h.clients[rideID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
	h.mu.RUnlock()

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(rideID), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "ride:*:snapshot")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		rideID := rideIDFromChannel(msg.Channel)
		h.mu.RLock()
		for client := range h.clients[rideID] {
			select {
			case client.Send <- []byte(msg.Payload):
			default:
			}
		}
		h.mu.RUnlock()
	}
}

func redisChannel(rideID string) string {
	return "ride:" + rideID + ":snapshot"
}

func rideIDFromChannel(ch string) string {
	// ride:{ride}:snapshot
	const prefix = "ride:"
	const suffix = ":snapshot"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
