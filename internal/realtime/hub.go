// Package realtime fans best-effort events out to websocket clients grouped by topic.
// Delivery is at-most-once: a client whose buffer is full misses the event.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/octobees/dealmatch/internal/metrics"
)

// TopicBroadcast is joined by clients that name no topic.
const TopicBroadcast = "broadcast"

// EventClientMessage is the type of payloads relayed from one client to the others.
const EventClientMessage = "client.message"

const sendBuffer = 64

// UserTopic addresses every session of a user.
func UserTopic(userID string) string { return "user:" + userID }

// DealTopic addresses everyone watching a deal.
func DealTopic(dealID string) string { return "deal:" + dealID }

// Event is the frame written to clients.
type Event struct {
	Type  string `json:"type"`
	Topic string `json:"topic,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Client is one websocket session.
type Client struct {
	ID     string
	Topics []string
	Send   chan Event

	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

// Hub tracks clients per topic and optionally mirrors events through a Broker.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	node   string
	broker Broker
	log    *zap.Logger
}

// NewHub builds a hub. A nil broker keeps delivery process-local.
func NewHub(broker Broker, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: map[string]map[*Client]struct{}{},
		node:    uuid.NewString(),
		broker:  broker,
		log:     log,
	}
}

func (h *Hub) addClient(topics []string) *Client {
	if len(topics) == 0 {
		topics = []string{TopicBroadcast}
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		ID:     uuid.NewString(),
		Topics: topics,
		Send:   make(chan Event, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}

	h.mu.Lock()
	for _, topic := range topics {
		if h.clients[topic] == nil {
			h.clients[topic] = map[*Client]struct{}{}
		}
		h.clients[topic][c] = struct{}{}
	}
	h.mu.Unlock()
	return c
}

func (h *Hub) removeClient(c *Client) {
	c.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range c.Topics {
		if set, ok := h.clients[topic]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, topic)
			}
		}
	}
}

// Serve registers conn under topics, relays whatever the client sends to the other
// clients of those topics and blocks until the connection ends.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, topics []string) {
	c := h.addClient(topics)
	c.conn = conn
	defer func() {
		h.removeClient(c)
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}()

	go c.writeLoop()
	go c.keepAliveLoop()

	for {
		var payload json.RawMessage
		if err := wsjson.Read(ctx, conn, &payload); err != nil {
			var ce websocket.CloseError
			if !errors.As(err, &ce) && ctx.Err() == nil {
				h.log.Debug("websocket read ended", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
		h.Relay(ctx, c, payload)
	}
}

// Publish delivers an event to a topic on every instance.
func (h *Hub) Publish(ctx context.Context, topic, eventType string, data any) {
	ev := Event{Type: eventType, Topic: topic, Data: data}
	h.deliver([]string{topic}, ev, nil)
	h.forward(ctx, []string{topic}, ev)
}

// Relay rebroadcasts a client payload to the other clients sharing its topics.
func (h *Hub) Relay(ctx context.Context, from *Client, payload json.RawMessage) {
	ev := Event{Type: EventClientMessage, Data: payload}
	h.deliver(from.Topics, ev, from)
	h.forward(ctx, from.Topics, ev)
}

// Run consumes events mirrored by other instances until ctx ends.
func (h *Hub) Run(ctx context.Context) error {
	if h.broker == nil {
		<-ctx.Done()
		return nil
	}
	return h.broker.Subscribe(ctx, func(env Envelope) {
		if env.Node == h.node {
			return
		}
		h.deliver(env.Topics, env.Event, nil)
	})
}

// ClientCount returns the number of distinct connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := map[*Client]struct{}{}
	for _, set := range h.clients {
		for c := range set {
			seen[c] = struct{}{}
		}
	}
	return len(seen)
}

func (h *Hub) deliver(topics []string, ev Event, exclude *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := map[*Client]struct{}{}
	for _, topic := range topics {
		for c := range h.clients[topic] {
			if c == exclude {
				continue
			}
			if _, dup := sent[c]; dup {
				continue
			}
			sent[c] = struct{}{}
			out := ev
			if out.Topic == "" {
				out.Topic = topic
			}
			select {
			case c.Send <- out:
			default:
				metrics.RealtimeDropped.Inc()
			}
		}
	}
}

func (h *Hub) forward(ctx context.Context, topics []string, ev Event) {
	if h.broker == nil {
		return
	}
	if err := h.broker.Publish(ctx, Envelope{Node: h.node, Topics: topics, Event: ev}); err != nil {
		h.log.Warn("mirror realtime event", zap.Strings("topics", topics), zap.String("type", ev.Type), zap.Error(err))
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.Send:
			writeCtx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
			_ = wsjson.Write(writeCtx, c.conn, ev)
			cancel()
		}
	}
}

func (c *Client) keepAliveLoop() {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
			_ = c.conn.Ping(pingCtx)
			cancel()
		}
	}
}
