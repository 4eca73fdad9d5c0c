package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
)

// DefaultQueueSize is how many undelivered frames a subscriber may hold
// before the hub drops it.
const DefaultQueueSize = 32

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send(event string, payload []byte) error
	Close()
}

type frame struct {
	event   string
	payload []byte
}

// subscription pairs a subscriber with its outbound queue. The queue is
// drained by one delivery goroutine and closed under the hub's write lock.
type subscription struct {
	client Subscriber
	queue  chan frame
}

// Hub fans timeline events out to live subscribers. Publishing only enqueues;
// each subscriber is written by its own goroutine, so a slow connection never
// holds up the publishing request. Subscribers whose queue is full or whose
// write fails are dropped and closed.
type Hub struct {
	mu        sync.RWMutex
	subs      map[Subscriber]*subscription
	queueSize int
	log       *slog.Logger
}

// HubOption customises a Hub.
type HubOption func(*Hub)

// WithQueueSize overrides DefaultQueueSize.
func WithQueueSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

// NewHub creates an initialized Hub.
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		subs:      make(map[Subscriber]*subscription),
		queueSize: DefaultQueueSize,
		log:       logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches a subscriber and starts its delivery goroutine.
// Registering the same subscriber twice is a no-op.
func (h *Hub) Register(client Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[client]; ok {
		return
	}
	sub := &subscription{client: client, queue: make(chan frame, h.queueSize)}
	h.subs[client] = sub
	go h.deliver(sub)
}

// Unregister detaches a subscriber without closing it. Unknown subscribers
// are ignored.
func (h *Hub) Unregister(client Subscriber) {
	h.detach(client)
}

// Len reports the number of attached subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish encodes evt and queues it for every subscriber.
func (h *Hub) Publish(evt domain.TimelineEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.log.Error("encode timeline event", "type", evt.Type, "error", err)
		return
	}
	h.Broadcast(evt.Type, payload)
}

// Broadcast queues a pre-encoded payload for every subscriber without
// blocking on any of them.
func (h *Hub) Broadcast(event string, payload []byte) {
	var lagging []Subscriber
	h.mu.RLock()
	for client, sub := range h.subs {
		select {
		case sub.queue <- frame{event: event, payload: payload}:
		default:
			lagging = append(lagging, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range lagging {
		// Closing may wait on an in-flight write.
		go h.drop(client, "queue full", nil)
	}
}

// Close detaches and closes every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]Subscriber, 0, len(h.subs))
	for client, sub := range h.subs {
		delete(h.subs, client)
		close(sub.queue)
		clients = append(clients, client)
	}
	h.mu.Unlock()
	for _, client := range clients {
		client.Close()
	}
}

func (h *Hub) deliver(sub *subscription) {
	for f := range sub.queue {
		if err := sub.client.Send(f.event, f.payload); err != nil {
			h.drop(sub.client, "send failed", err)
			return
		}
	}
}

func (h *Hub) detach(client Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subs[client]
	if !ok {
		return false
	}
	delete(h.subs, client)
	close(sub.queue)
	return true
}

func (h *Hub) drop(client Subscriber, reason string, err error) {
	if !h.detach(client) {
		return
	}
	if err != nil {
		h.log.Debug("dropping timeline subscriber", "reason", reason, "error", err)
	} else {
		h.log.Warn("dropping timeline subscriber", "reason", reason)
	}
	client.Close()
}
