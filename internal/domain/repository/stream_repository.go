package repository

import (
	"context"

	"github.com/discovery-engine/internal/domain"
)

// StreamRepository is the Redis Streams surface used by the discovery worker
// and the simulation publisher.
type StreamRepository interface {
	// CreateConsumerGroup creates a consumer group for a stream.
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeBatch reads up to count pending messages for a consumer.
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error)

	// AckMessage acknowledges a processed message.
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// PublishToStream publishes a JSON-encoded message to a stream.
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
