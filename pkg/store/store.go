package store

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Record is a single key-value pair held by the store.
type Record struct {
	Value any
	Key   Key
}

// Config binds a logical store to a backend, a namespace and a TTL.
// Namespace and TTL are fixed per store at construction, not per record.
//
// TTL semantics:
//   - Positive duration: records expire that long after each put
//   - Zero: records never expire
type Config struct {
	Backend   Backend
	Namespace string
	TTL       time.Duration
}

// DefaultNamespace is used when a Config carries no namespace.
const DefaultNamespace = "cache"

// Backend is the four-operation contract every expiring store
// implementation satisfies. All operations apply the namespace from the
// config, so several logical stores can share one backend without key
// collisions.
type Backend interface {
	// Put stores the records, overwriting existing records at the same
	// keys and resetting their expiry to now + cfg.TTL.
	Put(ctx context.Context, cfg Config, records ...Record) error

	// Get returns the value stored under key.
	// Returns ErrNotFound if the key is absent or expired.
	Get(ctx context.Context, cfg Config, key Key) (any, error)

	// Delete removes the record if present. Idempotent.
	Delete(ctx context.Context, cfg Config, key Key) error

	// All returns every record in the namespace whose key matches pattern.
	All(ctx context.Context, cfg Config, pattern Pattern) ([]Record, error)
}

// Store is a thin façade over a Backend with namespace and TTL fixed by
// its Config. Higher-level stores interact only with Store, never with
// backend internals.
type Store struct {
	cfg Config
}

// New creates a store façade for the given config.
// Returns ErrNoBackend if the config carries no backend.
func New(cfg Config) (*Store, error) {
	if cfg.Backend == nil {
		return nil, ErrNoBackend
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	return &Store{cfg: cfg}, nil
}

// Config returns the store's resolved configuration.
func (s *Store) Config() Config {
	return s.cfg
}

// Put stores a single key-value pair.
// This positional form is equivalent to PutAll with one record and is
// kept as the primary write signature for single-record callers.
func (s *Store) Put(ctx context.Context, key Key, value any) error {
	return s.cfg.Backend.Put(ctx, s.cfg, Record{Key: key, Value: value})
}

// PutAll stores a batch of records in one backend call.
func (s *Store) PutAll(ctx context.Context, records ...Record) error {
	return s.cfg.Backend.Put(ctx, s.cfg, records...)
}

// Get retrieves the value stored under key.
// Returns ErrNotFound if the key is absent or expired.
func (s *Store) Get(ctx context.Context, key Key) (any, error) {
	return s.cfg.Backend.Get(ctx, s.cfg, key)
}

// Delete removes the record under key. Idempotent.
func (s *Store) Delete(ctx context.Context, key Key) error {
	return s.cfg.Backend.Delete(ctx, s.cfg, key)
}

// All returns every record in the store's namespace whose key matches
// pattern. Result order is unspecified; the Memory backend sorts by
// encoded key so tests are reproducible.
func (s *Store) All(ctx context.Context, pattern Pattern) ([]Record, error) {
	return s.cfg.Backend.All(ctx, s.cfg, pattern)
}

var sfGroup singleflight.Group

// GetOrSet retrieves a value, or calls fn to compute and store it on a
// miss. Uses singleflight so concurrent misses for the same key compute
// the value only once. If fn returns an error, nothing is cached and
// the error is returned.
func (s *Store) GetOrSet(ctx context.Context, key Key, fn func(ctx context.Context) (any, error)) (any, error) {
	// Fast path: try the store first.
	if v, err := s.Get(ctx, key); err == nil {
		return v, nil
	}

	// Slow path: deduplicate concurrent misses.
	v, err, _ := sfGroup.Do(encodeKey(s.cfg.Namespace, key), func() (any, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		// Best-effort cache the result.
		_ = s.Put(ctx, key, val)
		return val, nil
	})
	if err != nil {
		return nil, err
	}

	return v, nil
}
