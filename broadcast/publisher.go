package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Dosada05/competition-brackets/models"
)

// Publisher delivers committed bracket events to live viewers.
// Delivery is best effort: callers log the error and move on.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// HubPublisher delivers events to the clients of this process only.
type HubPublisher struct {
	hub *Hub
}

func NewHubPublisher(hub *Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(ctx context.Context, event models.Event) error {
	p.hub.BroadcastToRoom(CompetitionRoom(event.CompetitionID), WebSocketMessage{
		Type:    string(event.Type),
		Payload: event,
		RoomID:  CompetitionRoom(event.CompetitionID),
	})
	return nil
}

const DefaultChannel = "brackets:events"

// RedisPublisher publishes events to a Redis channel so that every API
// instance can forward them to its own websocket clients.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}
	return nil
}

// Relay forwards events from the Redis channel into the local hub.
type Relay struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
	logger  *slog.Logger
}

func NewRelay(rdb *redis.Client, channel string, hub *Hub, logger *slog.Logger) *Relay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Relay{rdb: rdb, channel: channel, hub: hub, logger: logger}
}

// Run blocks until ctx is cancelled or the subscription fails.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.logger.Info("event relay subscribed", "channel", r.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return errors.New("redis subscription closed")
			}
			r.forward(msg.Payload)
		}
	}
}

func (r *Relay) forward(payload string) {
	var event models.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		r.logger.Warn("skipping malformed event", "error", err)
		return
	}
	room := CompetitionRoom(event.CompetitionID)
	r.hub.BroadcastToRoom(room, WebSocketMessage{Type: string(event.Type), Payload: event, RoomID: room})
}
