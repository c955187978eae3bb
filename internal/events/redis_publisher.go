package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher fans events out to a Redis channel for real-time push
// consumers. Delivery is fire-and-forget: publish failures are logged,
// never propagated back into the originating operation.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher creates the publisher.
func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

// RegisterAll subscribes the publisher to every event type.
func (p *RedisPublisher) RegisterAll(dispatcher Dispatcher) {
	if p == nil || dispatcher == nil {
		return
	}
	for _, eventType := range []EventType{
		EventTicketCreated,
		EventTicketStatusChanged,
		EventTicketPriorityChanged,
		EventTicketClaimed,
		EventTicketReleased,
		EventTicketCommentAdded,
		EventApprovalDecided,
		EventVendorAssigned,
	} {
		dispatcher.Subscribe(eventType, p.handle)
	}
}

func (p *RedisPublisher) handle(ctx context.Context, event Event) error {
	if p.client == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("marshal event", zap.Error(err))
		return nil
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		p.logger.Warn("publish event to redis",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
	return nil
}
