package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/domain/repository"
	"github.com/discovery-engine/internal/tracker"
	"github.com/discovery-engine/internal/worker"
)

const (
	maxBatchSize    = 20                     // messages consumed per iteration
	emptyQueueSleep = 100 * time.Millisecond // pause when the stream is drained
)

// DiscoveryWorker consumes live position readings from the positions stream,
// runs one tracker per device, and publishes discovery events to the
// discoveries stream. The tracker's once-per-session de-duplication applies
// per device for the worker's lifetime.
type DiscoveryWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	entitySource repository.EntitySource
	trackerCfg   tracker.Config
	consumerName string

	sessions map[string]*deviceSession
}

type deviceSession struct {
	tracker *tracker.Tracker
	source  *tracker.PushSource
}

func NewDiscoveryWorker(
	streamRepo repository.StreamRepository,
	entitySource repository.EntitySource,
	trackerCfg tracker.Config,
	consumerGroup string,
	logger *zap.Logger,
) *DiscoveryWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &DiscoveryWorker{
		BaseWorker:   worker.NewBaseWorker("discovery", consumerGroup, logger),
		streamRepo:   streamRepo,
		entitySource: entitySource,
		trackerCfg:   trackerCfg,
		consumerName: consumerName,
		sessions:     make(map[string]*deviceSession),
	}
}

// Start runs the consume loop until Stop or context cancellation.
func (w *DiscoveryWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting DiscoveryWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_batch_size", maxBatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamPositions, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			w.teardown()
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			w.teardown()
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			if processed == 0 {
				time.Sleep(emptyQueueSleep)
			}
		}
	}
}

// processBatch consumes and tracks up to maxBatchSize readings. Returns the
// number of processed messages.
func (w *DiscoveryWorker) processBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamPositions,
		w.ConsumerGroup(),
		w.consumerName,
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil
	}

	logger.Debug("Processing batch", zap.Int("message_count", len(messages)))

	processed := 0
	for _, msg := range messages {
		var event domain.PositionEvent
		if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
			// Malformed payloads are acked and dropped: redelivery
			// cannot fix them.
			logger.Warn("Dropping malformed position event",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			w.ack(ctx, msg.ID)
			continue
		}

		if err := w.track(ctx, &event); err != nil {
			logger.Error("Failed to track position event",
				zap.String("message_id", msg.ID),
				zap.String("device_id", event.DeviceID),
				zap.Error(err))
			w.ack(ctx, msg.ID)
			continue
		}

		w.ack(ctx, msg.ID)
		processed++
	}

	return processed, nil
}

// track feeds a reading to the device's tracker, creating the session on
// first sight of the device.
func (w *DiscoveryWorker) track(ctx context.Context, event *domain.PositionEvent) error {
	if event.DeviceID == "" {
		return fmt.Errorf("position event has no device_id")
	}

	session, ok := w.sessions[event.DeviceID]
	if !ok {
		created, err := w.newSession(ctx, event.DeviceID)
		if err != nil {
			return err
		}
		session = created
		w.sessions[event.DeviceID] = session
	}

	session.source.Push(event.Reading())
	return nil
}

func (w *DiscoveryWorker) newSession(ctx context.Context, deviceID string) (*deviceSession, error) {
	entities, err := w.entitySource.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}

	source := tracker.NewPushSource()
	t := tracker.New(
		w.trackerCfg,
		source,
		&streamNotifier{
			deviceID:   deviceID,
			streamRepo: w.streamRepo,
			logger:     w.Logger(),
		},
		w.Logger().With(zap.String("device_id", deviceID)),
	)
	t.SetEntities(entities)

	if err := t.Start(); err != nil {
		return nil, fmt.Errorf("failed to start tracker: %w", err)
	}

	w.Logger().Info("Tracking session opened",
		zap.String("device_id", deviceID),
		zap.Int("entities", len(entities)))

	return &deviceSession{tracker: t, source: source}, nil
}

func (w *DiscoveryWorker) ack(ctx context.Context, messageID string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamPositions, w.ConsumerGroup(), messageID); err != nil {
		w.Logger().Error("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}

func (w *DiscoveryWorker) teardown() {
	for deviceID, session := range w.sessions {
		session.tracker.Stop()
		delete(w.sessions, deviceID)
	}
}

// streamNotifier publishes discovery events to the outbound stream.
type streamNotifier struct {
	deviceID   string
	streamRepo repository.StreamRepository
	logger     *zap.Logger
}

func (n *streamNotifier) EntityDiscovered(entity domain.Entity, distanceKm float64) {
	event := domain.DiscoveryEvent{
		DeviceID:     n.deviceID,
		EntityID:     entity.ID,
		EntityName:   entity.Name,
		DistanceKm:   distanceKm,
		DiscoveredAt: time.Now().UTC(),
	}

	if err := n.streamRepo.PublishToStream(context.Background(), domain.StreamDiscoveries, event); err != nil {
		n.logger.Error("Failed to publish discovery event",
			zap.String("device_id", n.deviceID),
			zap.String("entity_id", entity.ID),
			zap.Error(err))
	}
}
