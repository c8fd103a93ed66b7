package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/murmurapp/murmur/pkg/logging"
)

// RedisSink publishes events to per-type Redis channels for the real-time
// transport to fan out. Delivery is fire-and-forget: subscribers that miss
// an event miss it.
type RedisSink struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisSink creates a Redis-backed event sink
func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{
		client: client,
		logger: logging.WithComponent("events"),
	}
}

// Publish implements Sink
func (s *RedisSink) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	channel := "murmur:events:" + event.ContentType
	if err := s.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	s.logger.Debug("event published",
		zap.String("channel", channel),
		zap.Int64("content_id", event.ContentID),
		zap.Int64("actor_id", event.ActorID))
	return nil
}
