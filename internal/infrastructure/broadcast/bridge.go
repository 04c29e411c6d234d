package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"murmurnet/internal/core/domain"
)

const bridgeChannel = "murmurnet:feed:events"

type bridgeEnvelope struct {
	InstanceID string           `json:"instance_id"`
	Timestamp  time.Time        `json:"timestamp"`
	Event      domain.FeedEvent `json:"event"`
}

// Bridge fans feed events out across service instances over redis pub/sub.
// Locally it delegates to the hub; remotely published events are injected
// into the hub by Run. Events carry the origin instance ID so an instance
// never re-delivers its own.
type Bridge struct {
	client     *redis.Client
	hub        *Hub
	instanceID string
	logger     *zap.SugaredLogger
}

func NewBridge(client *redis.Client, hub *Hub, logger *zap.SugaredLogger) *Bridge {
	return &Bridge{
		client:     client,
		hub:        hub,
		instanceID: uuid.NewString(),
		logger:     logger,
	}
}

// Publish delivers the event to local viewers and broadcasts it to peer
// instances. The redis publish happens off the caller's goroutine so the
// post pipeline is never held up by a slow broker.
func (b *Bridge) Publish(event domain.FeedEvent) {
	b.hub.Publish(event)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		data, err := json.Marshal(bridgeEnvelope{
			InstanceID: b.instanceID,
			Timestamp:  time.Now(),
			Event:      event,
		})
		if err != nil {
			b.logger.Errorw("failed to marshal bridge event", "error", err)
			return
		}

		if err := b.client.Publish(ctx, bridgeChannel, data).Err(); err != nil {
			b.logger.Warnw("failed to broadcast event to peer instances", "error", err)
		}
	}()
}

// Run subscribes to the bridge channel and injects events from other
// instances into the local hub. Blocks until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, bridgeChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to bridge channel: %w", err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var envelope bridgeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				b.logger.Warnw("dropping malformed bridge event", "error", err)
				continue
			}
			if envelope.InstanceID == b.instanceID {
				continue
			}

			b.hub.Publish(envelope.Event)
		}
	}
}
