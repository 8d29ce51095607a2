package server

import (
	"context"
	"sync"
	"time"

	"github.com/devnnex/vision-academy/internal/render"
)

// EventCatalogChanged is emitted whenever the catalog mutates; connected
// UI clients re-render on it.
const EventCatalogChanged = "catalog-change"

// Event is one message on the change stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// EventDispatcher broadcasts catalog change events to every subscriber.
// Slow subscribers drop messages rather than blocking the mutation path.
type EventDispatcher struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      int64
	bufferSize  int
}

// NewEventDispatcher constructs an empty dispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		subscribers: make(map[int64]chan Event),
		bufferSize:  16,
	}
}

// Subscribe registers a listener torn down when the context ends. The
// returned cleanup is idempotent.
func (d *EventDispatcher) Subscribe(ctx context.Context) (<-chan Event, func()) {
	stream := make(chan Event, d.bufferSize)

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.subscribers[id] = stream
	d.mu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subscribers, id)
			d.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return stream, cleanup
}

// Publish fans an event out to every subscriber without blocking.
func (d *EventDispatcher) Publish(event Event) {
	d.mu.RLock()
	streams := make([]chan Event, 0, len(d.subscribers))
	for _, stream := range d.subscribers {
		streams = append(streams, stream)
	}
	d.mu.RUnlock()

	for _, stream := range streams {
		select {
		case stream <- event:
		default:
		}
	}
}

// SubscriberCount reports the number of connected listeners.
func (d *EventDispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}

// EventSink bridges the render fan-out onto the dispatcher: every
// mutation becomes one catalog-change broadcast.
type EventSink struct {
	dispatcher *EventDispatcher
	clock      func() time.Time
}

// NewEventSink constructs the sink.
func NewEventSink(dispatcher *EventDispatcher, clock func() time.Time) *EventSink {
	if clock == nil {
		clock = time.Now
	}
	return &EventSink{dispatcher: dispatcher, clock: clock}
}

// RenderAll publishes a catalog-change event; the snapshot content itself
// travels over the regular read endpoints.
func (s *EventSink) RenderAll(render.Snapshot) {
	s.dispatcher.Publish(Event{Type: EventCatalogChanged, Timestamp: s.clock().UTC()})
}
