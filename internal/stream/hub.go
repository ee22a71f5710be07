package stream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"crypto-tracker/internal/market"
	"crypto-tracker/internal/models"
)

// Update is one tick's worth of state pushed to renderers.
type Update struct {
	Seq             uint64                  `json:"seq" yaml:"seq"`
	Time            time.Time               `json:"time" yaml:"time"`
	Market          []market.Entry          `json:"market" yaml:"market"`
	Recommendations []models.Recommendation `json:"recommendations" yaml:"recommendations"`
	Allocation      []models.AllocationSlot `json:"allocation" yaml:"allocation"`
	Triggered       []models.Alert          `json:"triggered,omitempty" yaml:"triggered,omitempty"`
	Selected        string                  `json:"selected" yaml:"selected"`
	Point           *models.PricePoint      `json:"point,omitempty" yaml:"point,omitempty"`
}

// HubConfig holds configuration for the update hub.
type HubConfig struct {
	// BufferSize is the size of the internal publish channel buffer.
	BufferSize int
	// SubscriberBufferSize is the size of each subscriber's channel buffer.
	SubscriberBufferSize int
}

// DefaultHubConfig returns the default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		BufferSize:           64,
		SubscriberBufferSize: 16,
	}
}

// Hub fans updates from the tick loop out to any number of subscribers.
// Sends never block: a subscriber whose buffer is full misses the update.
type Hub struct {
	config HubConfig

	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	updates     chan Update
	done        chan struct{}
	started     bool
	nextID      atomic.Uint64

	received  atomic.Uint64
	broadcast atomic.Uint64
	dropped   atomic.Uint64
}

// Subscriber represents a channel subscriber with metadata.
type Subscriber struct {
	ID        string
	Channel   chan Update
	CreatedAt time.Time
}

// NewHub creates a new hub with default configuration.
func NewHub() *Hub {
	return NewHubWithConfig(DefaultHubConfig())
}

// NewHubWithConfig creates a new hub with custom configuration.
func NewHubWithConfig(config HubConfig) *Hub {
	def := DefaultHubConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = def.BufferSize
	}
	if config.SubscriberBufferSize <= 0 {
		config.SubscriberBufferSize = def.SubscriberBufferSize
	}
	return &Hub{
		config:      config,
		subscribers: make(map[string]*Subscriber),
		updates:     make(chan Update, config.BufferSize),
	}
}

// Start begins the distribution loop. It returns when ctx is done or Stop is
// called.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.done = make(chan struct{})
	done := h.done
	h.mu.Unlock()

	go h.broadcastLoop(ctx, done)
}

func (h *Hub) broadcastLoop(ctx context.Context, done <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case u := <-h.updates:
			h.received.Add(1)
			h.fanOut(u)
		}
	}
}

// Stop stops the hub and closes all subscriber channels.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		return
	}
	close(h.done)
	h.started = false

	for id, sub := range h.subscribers {
		close(sub.Channel)
		delete(h.subscribers, id)
	}
}

// Subscribe registers a subscriber and returns its channel together with a
// cancel func that unsubscribes it. The channel is closed on cancel or Stop.
func (h *Hub) Subscribe() (<-chan Update, func()) {
	id := fmt.Sprintf("sub-%d", h.nextID.Add(1))
	sub := &Subscriber{
		ID:        id,
		Channel:   make(chan Update, h.config.SubscriberBufferSize),
		CreatedAt: time.Now(),
	}

	h.mu.Lock()
	h.subscribers[id] = sub
	h.mu.Unlock()

	var once sync.Once
	return sub.Channel, func() {
		once.Do(func() { h.unsubscribe(id) })
	}
}

func (h *Hub) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subscribers[id]; ok {
		close(sub.Channel)
		delete(h.subscribers, id)
	}
}

// Publish queues an update for distribution. It never blocks: when the
// internal buffer is full the update is dropped and counted.
func (h *Hub) Publish(u Update) {
	select {
	case h.updates <- u:
	default:
		h.dropped.Add(1)
	}
}

// fanOut delivers u to every subscriber. The read lock is held across the
// sends so Stop cannot close a channel mid-send.
func (h *Hub) fanOut(u Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		select {
		case sub.Channel <- u:
			h.broadcast.Add(1)
		default:
			h.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// HubMetrics contains hub delivery counters.
type HubMetrics struct {
	Received    uint64 `json:"received"`
	Broadcast   uint64 `json:"broadcast"`
	Dropped     uint64 `json:"dropped"`
	Subscribers int    `json:"subscribers"`
}

// GetMetrics returns hub metrics.
func (h *Hub) GetMetrics() HubMetrics {
	return HubMetrics{
		Received:    h.received.Load(),
		Broadcast:   h.broadcast.Load(),
		Dropped:     h.dropped.Load(),
		Subscribers: h.SubscriberCount(),
	}
}

// IsStarted returns whether the hub is running.
func (h *Hub) IsStarted() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.started
}
