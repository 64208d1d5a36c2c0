package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"vidsum-backend/internal/middleware"
	"vidsum-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans summary lifecycle events out to the websocket connections of each
// owner identity. Events arrive over redis pub/sub so they reach clients
// regardless of which process (handler or worker) produced them.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
	redisClient *redis.Client
	identity    *middleware.Identity
	cancelFuncs map[string]context.CancelFunc
}

func NewHub(redisClient *redis.Client, identity *middleware.Identity) *Hub {
	return &Hub{
		connections: make(map[string][]*websocket.Conn),
		redisClient: redisClient,
		identity:    identity,
		cancelFuncs: make(map[string]context.CancelFunc),
	}
}

// HandleWebSocket upgrades the connection and binds it to the identity in the
// token query param. Tokenless connections listen as the anonymous owner.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ownerEmail := h.identity.EmailFromToken(r.URL.Query().Get("token"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.register(ownerEmail, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregister(ownerEmail, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) register(ownerEmail string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[ownerEmail] = append(h.connections[ownerEmail], conn)

	// First connection for this owner starts the pub/sub subscription
	if len(h.connections[ownerEmail]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[ownerEmail] = cancel
		go h.subscribe(ctx, ownerEmail)
	}

	log.Printf("WebSocket connected: %s (total: %d)", ownerEmail, len(h.connections[ownerEmail]))
}

func (h *Hub) unregister(ownerEmail string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[ownerEmail]
	for i, c := range conns {
		if c == conn {
			h.connections[ownerEmail] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[ownerEmail]) == 0 {
		delete(h.connections, ownerEmail)
		if cancel, ok := h.cancelFuncs[ownerEmail]; ok {
			cancel()
			delete(h.cancelFuncs, ownerEmail)
		}
	}

	log.Printf("WebSocket disconnected: %s", ownerEmail)
}

func (h *Hub) subscribe(ctx context.Context, ownerEmail string) {
	pubsub := h.redisClient.Subscribe(ctx, services.EventChannel(ownerEmail))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(ownerEmail, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(ownerEmail string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[ownerEmail] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}
