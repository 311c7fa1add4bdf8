// ABOUTME: In-memory fan-out broadcaster for room-keyed chat and presence events
// ABOUTME: Fans each published event out to every channel joined to the room key

package room

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Broadcaster provides in-process pub/sub keyed by room. Connection
// handlers join with their outbound channel and every publish to that key
// is fanned out to all joined channels, the publisher's included.
//
// Delivery is at-least-once and non-blocking: an event is dropped for a
// subscriber whose channel is full rather than stalling the room.
// A single instance serves one process; a multi-instance deployment would
// substitute an external broker behind the same interface.
type Broadcaster struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]chan<- Event // roomKey -> subID -> ch
	logger *slog.Logger
}

// NewBroadcaster creates a broadcaster. Pass nil logger for default.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		rooms:  make(map[string]map[string]chan<- Event),
		logger: logger.With("component", "broadcaster"),
	}
}

// Join registers ch to receive events published to roomKey and returns a
// subscription ID for Leave. The channel is owned by the caller and is
// never closed by the broadcaster.
func (b *Broadcaster) Join(roomKey string, ch chan<- Event) string {
	subID := uuid.New().String()

	b.mu.Lock()
	if _, ok := b.rooms[roomKey]; !ok {
		b.rooms[roomKey] = make(map[string]chan<- Event)
	}
	b.rooms[roomKey][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber joined",
		"room_key", roomKey,
		"sub_id", subID)

	return subID
}

// Leave removes a subscription. Unknown room keys or already-removed
// subscriptions are no-ops, so disconnect paths can call it unconditionally.
func (b *Broadcaster) Leave(roomKey, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.rooms[roomKey]
	if !ok {
		return
	}

	if _, exists := subs[subID]; !exists {
		return
	}
	delete(subs, subID)

	// Clean up empty room entries
	if len(subs) == 0 {
		delete(b.rooms, roomKey)
	}

	b.logger.Debug("subscriber left",
		"room_key", roomKey,
		"sub_id", subID)
}

// Publish delivers event to every subscriber currently joined to roomKey.
// Publishing to a room with no subscribers is a no-op, not an error.
func (b *Broadcaster) Publish(roomKey string, event Event) {
	b.mu.RLock()
	subs, ok := b.rooms[roomKey]
	if !ok || len(subs) == 0 {
		b.mu.RUnlock()
		return
	}

	// Copy subscriber channels under read lock to avoid holding lock during sends
	targets := make([]chan<- Event, 0, len(subs))
	for _, ch := range subs {
		targets = append(targets, ch)
	}
	b.mu.RUnlock()

	for _, ch := range targets {
		select {
		case ch <- event:
			// Sent
		default:
			// Subscriber channel full — drop event for this subscriber
			b.logger.Debug("dropped event for slow subscriber",
				"room_key", roomKey,
				"event_type", event.Type)
		}
	}
}
