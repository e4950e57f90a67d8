package store

import "log/slog"

// EventType identifies a store lifecycle event.
type EventType string

// Store lifecycle events.
const (
	// EventWrite fires after a successful put. The event carries the
	// inserted records.
	EventWrite EventType = "cache_write"

	// EventDelete fires after an explicit delete. The event carries the key.
	EventDelete EventType = "delete"

	// EventInvalidate fires after a record is removed by TTL expiry.
	// The event carries the expired key.
	EventInvalidate EventType = "invalidate"
)

// Event is a store lifecycle notification.
// Records is populated for EventWrite; Key for EventDelete and EventInvalidate.
type Event struct {
	Type      EventType
	Namespace string
	Key       Key
	Records   []Record
}

// Subscriber consumes store lifecycle events. Subscribers are purely
// observational: a subscriber can never fail or abort the operation
// that triggered the event (panics are recovered by the emitter).
type Subscriber func(Event)

// LogEvents returns a Subscriber that logs every event at debug level.
func LogEvents(log *slog.Logger) Subscriber {
	return func(ev Event) {
		log.Debug("store event",
			slog.String("type", string(ev.Type)),
			slog.String("namespace", ev.Namespace),
			slog.String("key", ev.Key.String()),
			slog.Int("records", len(ev.Records)),
		)
	}
}

// emit delivers an event to every subscriber, swallowing panics so an
// observer can never break the store operation that fired it.
func emit(subs []Subscriber, ev Event) {
	for _, sub := range subs {
		func() {
			defer func() { _ = recover() }()
			sub(ev)
		}()
	}
}
