package gateway

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/echoverse/core/internal/pkg/ratelimit"
	pkgredis "github.com/echoverse/core/internal/pkg/redis"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	redisChanBroadcast   = "echoverse:gateway:broadcast"
	redisKeyMaxOnline    = "echoverse:stats:max_online"
	redisKeyOnlineVisits = "echoverse:stats:online_visits"
)

type broadcastMsg struct {
	event     string
	data      interface{}
	excludeID string
	remote    bool
}

// Hub owns the connected-client registry. All registry mutation happens in
// the Run loop; broadcasts from other instances arrive via Redis pub/sub.
type Hub struct {
	id string

	mu      sync.RWMutex
	clients map[string]*Client
	byUser  map[string]string

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg

	rc      *pkgredis.Client
	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

func NewHub(rc *pkgredis.Client, limiter *ratelimit.Limiter, logger *zap.Logger) *Hub {
	return &Hub{
		id:         uuid.New().String(),
		clients:    make(map[string]*Client),
		byUser:     make(map[string]string),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan broadcastMsg, 256),
		rc:         rc,
		limiter:    limiter,
		logger:     logger,
	}
}

// Run starts the hub loop and the Redis subscriber.
func (h *Hub) Run(ctx context.Context) {
	if h.rc != nil {
		go h.subscribeRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(ctx, c)

		case msg := <-h.broadcast:
			h.deliver(msg)
			if !msg.remote {
				h.publish(ctx, msg)
			}
		}
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	if c.UserID != "" {
		h.byUser[c.UserID] = c.ID
	}
	online := len(h.clients)
	h.mu.Unlock()

	c.enqueue(encodeEnvelope(EventConnected, map[string]interface{}{
		"clientId": c.ID,
	}))
	h.updateDailyOnlineStats(online)
}

func (h *Hub) unregisterClient(ctx context.Context, c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	if c.UserID != "" && h.byUser[c.UserID] == c.ID {
		delete(h.byUser, c.UserID)
	}
	online := len(h.clients)
	h.mu.Unlock()

	c.shutdown()

	// Delivered inline, not re-queued through h.broadcast: the Run loop is
	// the one draining that channel, so queueing from here can wedge the
	// loop during a disconnect storm.
	msg := broadcastMsg{
		event: EventPresenceOffline,
		data: map[string]interface{}{
			"clientId": c.ID,
			"online":   online,
		},
		excludeID: c.ID,
	}
	h.deliver(msg)
	h.publish(ctx, msg)
}

func (h *Hub) deliver(msg broadcastMsg) {
	frame := encodeEnvelope(msg.event, msg.data)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		if id == msg.excludeID {
			continue
		}
		c.enqueue(frame)
	}
}

func (h *Hub) publish(ctx context.Context, msg broadcastMsg) {
	if h.rc == nil {
		return
	}
	raw, err := json.Marshal(relayMessage{
		Origin:    h.id,
		Type:      msg.event,
		Data:      msg.data,
		ExcludeID: msg.excludeID,
	})
	if err != nil {
		return
	}
	if err := h.rc.Publish(ctx, redisChanBroadcast, string(raw)); err != nil {
		h.logger.Warn("gateway publish failed", zap.Error(err))
	}
}

func (h *Hub) subscribeRedis(ctx context.Context) {
	sub := h.rc.Subscribe(ctx, redisChanBroadcast)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var relay relayMessage
			if err := json.Unmarshal([]byte(m.Payload), &relay); err != nil {
				h.logger.Warn("gateway bad relay payload", zap.Error(err))
				continue
			}
			if relay.Origin == h.id {
				continue
			}
			h.broadcast <- broadcastMsg{
				event:     relay.Type,
				data:      relay.Data,
				excludeID: relay.ExcludeID,
				remote:    true,
			}
		}
	}
}

// updateDailyOnlineStats keeps a per-day peak of concurrent clients and a
// running join counter in Redis hashes.
func (h *Hub) updateDailyOnlineStats(online int) {
	if h.rc == nil || online < 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dateKey := time.Now().Format("2006-01-02")

	peak := 0
	if current, err := h.rc.HGet(ctx, redisKeyMaxOnline, dateKey); err != nil {
		h.logger.Warn("gateway get max online failed", zap.Error(err))
	} else if parsed, parseErr := strconv.Atoi(strings.TrimSpace(current)); parseErr == nil {
		peak = parsed
	}

	if online > peak {
		if err := h.rc.HSet(ctx, redisKeyMaxOnline, dateKey, online); err != nil {
			h.logger.Warn("gateway set max online failed", zap.Error(err))
		}
	}
	if err := h.rc.HIncrBy(ctx, redisKeyOnlineVisits, dateKey, 1); err != nil {
		h.logger.Warn("gateway incr visits failed", zap.Error(err))
	}
}

// PeakOnline reads today's high-water mark from Redis.
func (h *Hub) PeakOnline(ctx context.Context) int {
	if h.rc == nil {
		return 0
	}
	raw, err := h.rc.HGet(ctx, redisKeyMaxOnline, time.Now().Format("2006-01-02"))
	if err != nil {
		return 0
	}
	peak, _ := strconv.Atoi(strings.TrimSpace(raw))
	return peak
}

func (h *Hub) handleInbound(c *Client, env inboundEnvelope) {
	// No client→server command surface yet; everything flows through the
	// REST API. Events are acknowledged in the log only.
	h.logger.Debug("gateway event",
		zap.String("client", c.ID), zap.String("event", env.Type))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		c.conn.Close()
		c.shutdown()
	}
	h.clients = make(map[string]*Client)
	h.byUser = make(map[string]string)
}

// Broadcast queues an event for every connected client except excludeID
// (pass "" to reach everyone).
func (h *Hub) Broadcast(event string, data interface{}, excludeID string) {
	h.broadcast <- broadcastMsg{event: event, data: data, excludeID: excludeID}
}

// BroadcastExcludingUser reaches everyone except the named user's own
// socket, so senders do not hear their own actions echoed back.
func (h *Hub) BroadcastExcludingUser(event string, data interface{}, userID string) {
	h.mu.RLock()
	clientID := h.byUser[userID]
	h.mu.RUnlock()
	h.Broadcast(event, data, clientID)
}

// SendToUser targets the socket of one logged-in user. No-op when the
// user has no live connection here.
func (h *Hub) SendToUser(userID, event string, data interface{}) {
	h.mu.RLock()
	clientID, ok := h.byUser[userID]
	var c *Client
	if ok {
		c = h.clients[clientID]
	}
	h.mu.RUnlock()

	if c == nil {
		return
	}
	c.enqueue(encodeEnvelope(event, data))
}

// SendToClient targets one connection by client id. No-op if it is gone.
func (h *Hub) SendToClient(clientID, event string, data interface{}) {
	h.mu.RLock()
	c := h.clients[clientID]
	h.mu.RUnlock()

	if c == nil {
		return
	}
	c.enqueue(encodeEnvelope(event, data))
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
