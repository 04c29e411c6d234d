package broadcast

import (
	"sync"

	"murmurnet/internal/core/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subscription is one live viewer's registered delivery path. The receive
// side of C is owned exclusively by the handler that registered it; the hub
// owns the send side and is the only closer. A receive of (zero, false)
// means the hub has dropped or shut down the subscription.
type Subscription struct {
	ID domain.ConnectionID
	C  <-chan domain.FeedEvent
}

// Metrics receives hub lifecycle counts. May be nil.
type Metrics interface {
	RecordViewerConnected()
	RecordViewerDisconnected()
	RecordEventPublished(delivered, dropped int)
}

// Hub is the process-wide registry of live viewer connections. Membership
// is the single piece of shared mutable state in the broadcast core; every
// insert, remove, and publish iteration happens under one mutex, so a
// registration is either fully visible to a publish or fully absent.
type Hub struct {
	mu     sync.Mutex
	subs   map[domain.ConnectionID]chan domain.FeedEvent
	buffer int

	logger  *zap.SugaredLogger
	metrics Metrics
}

func NewHub(buffer int, logger *zap.SugaredLogger, metrics Metrics) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:    make(map[domain.ConnectionID]chan domain.FeedEvent),
		buffer:  buffer,
		logger:  logger,
		metrics: metrics,
	}
}

// Register creates a fresh subscription and inserts it into the registry.
func (h *Hub) Register() *Subscription {
	id := domain.ConnectionID(uuid.New().String())
	ch := make(chan domain.FeedEvent, h.buffer)

	h.mu.Lock()
	h.subs[id] = ch
	total := len(h.subs)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.RecordViewerConnected()
	}
	h.logger.Debugw("viewer registered", "connection_id", id, "total", total)

	return &Subscription{ID: id, C: ch}
}

// Unregister removes a subscription and closes its channel. Removing an
// already-absent subscription is a no-op.
func (h *Hub) Unregister(id domain.ConnectionID) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	total := len(h.subs)
	h.mu.Unlock()

	if !ok {
		return
	}
	close(ch)

	if h.metrics != nil {
		h.metrics.RecordViewerDisconnected()
	}
	h.logger.Debugw("viewer unregistered", "connection_id", id, "total", total)
}

// Publish delivers the event to every currently registered subscription on
// a best-effort basis. Sends are non-blocking: a subscription whose buffer
// is full is dropped from the registry rather than stalling the caller or
// the other viewers. This is the sole removal path besides Unregister.
func (h *Hub) Publish(event domain.FeedEvent) {
	var stalled []domain.ConnectionID
	var stalledChans []chan domain.FeedEvent

	h.mu.Lock()
	delivered := 0
	for id, ch := range h.subs {
		select {
		case ch <- event:
			delivered++
		default:
			stalled = append(stalled, id)
			stalledChans = append(stalledChans, ch)
		}
	}
	for _, id := range stalled {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	// Closing the channel signals the stalled viewer's handler to shut
	// its connection down.
	for _, ch := range stalledChans {
		close(ch)
	}

	if h.metrics != nil {
		h.metrics.RecordEventPublished(delivered, len(stalled))
		for range stalled {
			h.metrics.RecordViewerDisconnected()
		}
	}
	if len(stalled) > 0 {
		h.logger.Infow("dropped stalled viewers during publish",
			"dropped", len(stalled),
			"delivered", delivered,
		)
	}
}

// Len returns the number of registered subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Shutdown drops every subscription, waking all handler event loops.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	chans := make([]chan domain.FeedEvent, 0, len(h.subs))
	for _, ch := range h.subs {
		chans = append(chans, ch)
	}
	h.subs = make(map[domain.ConnectionID]chan domain.FeedEvent)
	h.mu.Unlock()

	for _, ch := range chans {
		close(ch)
	}
	if h.metrics != nil {
		for range chans {
			h.metrics.RecordViewerDisconnected()
		}
	}
	h.logger.Infow("hub shut down", "dropped", len(chans))
}
