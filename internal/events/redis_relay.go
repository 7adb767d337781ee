package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRelay fans job events out to other console instances over redis pub/sub.
// Local subscribers are served by the wrapped dispatcher; remote events are
// replayed into it, skipping this instance's own messages.
type RedisRelay struct {
	client  *redis.Client
	channel string
	local   Dispatcher
	origin  string
	logger  *zap.Logger
}

// NewRedisRelay wraps local with cross-instance delivery.
func NewRedisRelay(client *redis.Client, channel string, local Dispatcher, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		local:   local,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

// Publish delivers locally, then broadcasts. Broadcast failures are logged only.
func (r *RedisRelay) Publish(ctx context.Context, event Event) error {
	if event.Origin == "" {
		event.Origin = r.origin
	}
	if err := r.local.Publish(ctx, event); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Warn("relay encode failed", zap.Error(err))
		return nil
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		r.logger.Warn("relay publish failed", zap.String("channel", r.channel), zap.Error(err))
	}
	return nil
}

// Subscribe registers on the local dispatcher.
func (r *RedisRelay) Subscribe(eventType EventType, handler EventHandler) func() {
	return r.local.Subscribe(eventType, handler)
}

// Run consumes the channel until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	r.logger.Info("event relay subscribed", zap.String("channel", r.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(ctx, msg.Payload)
		}
	}
}

func (r *RedisRelay) deliver(ctx context.Context, payload string) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		r.logger.Warn("relay decode failed", zap.Error(err))
		return
	}
	if event.Origin == r.origin {
		return
	}
	event.Remote = true
	_ = r.local.Publish(ctx, event)
}
