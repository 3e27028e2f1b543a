package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the redis channel events are mirrored on.
const DefaultChannel = "dealmatch:events"

// Envelope is an event mirrored between instances.
type Envelope struct {
	Node   string   `json:"node"`
	Topics []string `json:"topics"`
	Event  Event    `json:"event"`
}

// Broker mirrors events between hub instances.
type Broker interface {
	Publish(ctx context.Context, env Envelope) error
	// Subscribe calls handle for every mirrored envelope until ctx ends.
	Subscribe(ctx context.Context, handle func(Envelope)) error
}

// RedisBroker mirrors events over redis pub/sub.
type RedisBroker struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisBroker wires a broker on channel (DefaultChannel when empty).
func NewRedisBroker(client redis.UniversalClient, channel string) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{client: client, channel: channel}
}

// NewRedisClient parses a redis URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Publish implements Broker.
func (b *RedisBroker) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish envelope: %w", err)
	}
	return nil
}

// Subscribe implements Broker. Undecodable messages are skipped.
func (b *RedisBroker) Subscribe(ctx context.Context, handle func(Envelope)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env struct {
				Node   string   `json:"node"`
				Topics []string `json:"topics"`
				Event  struct {
					Type  string          `json:"type"`
					Topic string          `json:"topic"`
					Data  json.RawMessage `json:"data"`
				} `json:"event"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			handle(Envelope{
				Node:   env.Node,
				Topics: env.Topics,
				Event:  Event{Type: env.Event.Type, Topic: env.Event.Topic, Data: env.Event.Data},
			})
		}
	}
}
