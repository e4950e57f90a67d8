package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// memEntry holds one stored record with its expiry bookkeeping.
type memEntry struct {
	expiresAt time.Time // zero value = never expires
	rec       Record
	namespace string
	gen       uint64
}

// isExpired reports whether the entry has passed its expiration time.
func (e *memEntry) isExpired(now time.Time) bool {
	if e.expiresAt.IsZero() {
		return false
	}
	return now.After(e.expiresAt)
}

// Memory is the in-process expiring key-value backend. One table is
// shared by every namespace; a mutex makes the backend the single
// serialized owner of the table, so put/get/delete and expiry sweeps
// are linearizable with respect to each other.
//
// Every put of a TTL-bearing record arms a one-shot timer carrying the
// entry's generation. Overwrites advance the generation instead of
// cancelling the old timer; a stale timer finds a newer generation and
// becomes a no-op. A record is therefore expired exactly once, by the
// timer armed for its current generation.
type Memory struct {
	items  map[string]*memEntry
	log    *slog.Logger
	subs   []Subscriber
	mu     sync.Mutex
	closed bool
}

// NewMemory creates an in-memory backend.
//
// Example:
//
//	backend := store.NewMemory(
//	    store.WithSubscriber(store.LogEvents(log)),
//	)
//	defer backend.Close()
func NewMemory(opts ...MemoryOption) *Memory {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Memory{
		items: make(map[string]*memEntry),
		subs:  o.subs,
		log:   o.log,
	}
}

// Put stores the records under their namespaced keys, overwriting any
// existing records and resetting their expiry to now + cfg.TTL.
// Emits one EventWrite carrying all inserted records.
func (m *Memory) Put(_ context.Context, cfg Config, records ...Record) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	for _, rec := range records {
		enc := encodeKey(cfg.Namespace, rec.Key)

		e, ok := m.items[enc]
		if !ok {
			e = &memEntry{rec: rec, namespace: cfg.Namespace}
			m.items[enc] = e
		} else {
			e.rec = rec
		}
		e.gen++

		if cfg.TTL > 0 {
			e.expiresAt = now.Add(cfg.TTL)
			gen := e.gen
			time.AfterFunc(cfg.TTL, func() {
				m.expire(enc, gen)
			})
		} else {
			e.expiresAt = time.Time{}
		}
	}
	m.mu.Unlock()

	emit(m.subs, Event{Type: EventWrite, Namespace: cfg.Namespace, Records: records})

	return nil
}

// Get returns the value stored under the namespaced key.
// Returns ErrNotFound if the key is absent or expired. An expired entry
// that the timer has not yet reaped reads as not found; the pending
// timer still performs the deletion and emits the invalidate event.
func (m *Memory) Get(_ context.Context, cfg Config, key Key) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	e, ok := m.items[encodeKey(cfg.Namespace, key)]
	if !ok || e.isExpired(time.Now()) {
		return nil, ErrNotFound
	}

	return e.rec.Value, nil
}

// Delete removes the record if present and emits an EventDelete with
// the key. Idempotent: deleting an absent key succeeds.
func (m *Memory) Delete(_ context.Context, cfg Config, key Key) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	delete(m.items, encodeKey(cfg.Namespace, key))
	m.mu.Unlock()

	emit(m.subs, Event{Type: EventDelete, Namespace: cfg.Namespace, Key: key})

	return nil
}

// All returns every live record in cfg.Namespace whose key matches
// pattern, sorted by encoded key for reproducible results.
func (m *Memory) All(_ context.Context, cfg Config, pattern Pattern) ([]Record, error) {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}

	now := time.Now()
	type match struct {
		enc string
		rec Record
	}
	var matches []match
	for enc, e := range m.items {
		if e.namespace != cfg.Namespace || e.isExpired(now) {
			continue
		}
		if pattern.Match(e.rec.Key) {
			matches = append(matches, match{enc: enc, rec: e.rec})
		}
	}
	m.mu.Unlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].enc < matches[j].enc })

	records := make([]Record, len(matches))
	for i, mt := range matches {
		records[i] = mt.rec
	}

	return records, nil
}

// Close marks the backend as closed. Subsequent operations return
// ErrClosed so callers cannot mistake a torn-down store for an empty
// one. Close is idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	m.items = nil

	return nil
}

// expire is the timer callback for a TTL-bearing put. The entry is
// removed only when its generation still matches the one the timer was
// armed with; a record refreshed or replaced in the meantime has a
// newer generation and the fire is inert.
func (m *Memory) expire(enc string, gen uint64) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	e, ok := m.items[enc]
	if !ok || e.gen != gen {
		m.mu.Unlock()
		return
	}

	delete(m.items, enc)
	namespace, key := e.namespace, e.rec.Key
	m.mu.Unlock()

	m.log.Debug("record expired",
		slog.String("namespace", namespace),
		slog.String("key", key.String()),
	)

	emit(m.subs, Event{Type: EventInvalidate, Namespace: namespace, Key: key})
}

var _ Backend = (*Memory)(nil)
