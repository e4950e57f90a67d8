package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Marshaler serializes and deserializes store values for backends that
// require a byte representation.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte) (any, error)
}

type jsonMarshaler struct{}

func (jsonMarshaler) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler) Unmarshal(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// redisSep separates namespace and key segments in Redis keys.
// Key segments must not contain it.
const redisSep = ":"

// Redis is an expiring-store backend over a shared Redis instance,
// satisfying the same four-operation contract as Memory so a
// distributed cache can stand in behind the façade unchanged.
//
// Expiry is enforced by Redis itself, so this backend emits write and
// delete events but no invalidate events (that would require keyspace
// notifications).
//
// Values pass through the configured Marshaler. The default JSON
// marshaler round-trips values as generic JSON (maps, slices, strings,
// numbers); callers that need typed values back should provide their
// own Marshaler.
type Redis struct {
	client    redis.UniversalClient
	marshaler Marshaler
	opts      *redisOptions
}

// NewRedis creates a Redis-backed store backend. The client should be
// obtained from pkg/redis.Open or pkg/redis.MustOpen. A nil Marshaler
// selects JSON serialization.
func NewRedis(client redis.UniversalClient, m Marshaler, opts ...RedisOption) *Redis {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}

	if m == nil {
		m = jsonMarshaler{}
	}

	return &Redis{
		client:    client,
		marshaler: m,
		opts:      o,
	}
}

// Put stores the records via a single pipeline, each with TTL from the
// config (zero TTL persists the record). Emits one EventWrite.
func (r *Redis) Put(ctx context.Context, cfg Config, records ...Record) error {
	if len(records) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, rec := range records {
		data, err := r.marshaler.Marshal(rec.Value)
		if err != nil {
			return err
		}
		// Redis interprets 0 as no expiration, matching our TTL semantics.
		pipe.Set(ctx, r.redisKey(cfg.Namespace, rec.Key), data, max(cfg.TTL, 0))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	emit(r.opts.subs, Event{Type: EventWrite, Namespace: cfg.Namespace, Records: records})

	return nil
}

// Get returns the value stored under the namespaced key.
// Returns ErrNotFound if the key does not exist or Redis expired it.
func (r *Redis) Get(ctx context.Context, cfg Config, key Key) (any, error) {
	data, err := r.client.Get(ctx, r.redisKey(cfg.Namespace, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return r.marshaler.Unmarshal(data)
}

// Delete removes the record and emits an EventDelete. Idempotent.
func (r *Redis) Delete(ctx context.Context, cfg Config, key Key) error {
	if err := r.client.Del(ctx, r.redisKey(cfg.Namespace, key)).Err(); err != nil {
		return err
	}

	emit(r.opts.subs, Event{Type: EventDelete, Namespace: cfg.Namespace, Key: key})

	return nil
}

// All returns every record in the namespace whose key matches pattern.
// Uses SCAN with a glob derived from the pattern, then re-checks each
// decoded key segment-wise, since a glob cannot enforce same-arity
// matching on its own.
func (r *Redis) All(ctx context.Context, cfg Config, pattern Pattern) ([]Record, error) {
	glob := r.scanGlob(cfg.Namespace, pattern)

	var keys []string
	var cursor uint64
	for {
		batch, next, err := r.client.Scan(ctx, cursor, glob, int64(r.opts.scanCount)).Result()
		if err != nil {
			return nil, err
		}
		for _, rk := range batch {
			if key, ok := r.decodeKey(cfg.Namespace, rk); ok && pattern.Match(key) {
				keys = append(keys, rk)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var records []Record
	for i, raw := range values {
		if raw == nil {
			// Expired between SCAN and MGET.
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		v, err := r.marshaler.Unmarshal([]byte(s))
		if err != nil {
			return nil, err
		}
		key, _ := r.decodeKey(cfg.Namespace, keys[i])
		records = append(records, Record{Key: key, Value: v})
	}

	return records, nil
}

// redisKey returns the full Redis key for a namespaced store key.
func (r *Redis) redisKey(namespace string, key Key) string {
	return namespace + redisSep + strings.Join(key, redisSep)
}

// decodeKey splits a Redis key back into store key segments, stripping
// the namespace prefix. Returns false for keys outside the namespace.
func (r *Redis) decodeKey(namespace, redisKey string) (Key, bool) {
	rest, ok := strings.CutPrefix(redisKey, namespace+redisSep)
	if !ok {
		return nil, false
	}
	return Key(strings.Split(rest, redisSep)), true
}

// scanGlob builds a SCAN MATCH glob from a pattern: wildcard segments
// become *, literal segments have glob metacharacters escaped.
func (r *Redis) scanGlob(namespace string, pattern Pattern) string {
	parts := make([]string, 0, len(pattern)+1)
	parts = append(parts, escapeGlob(namespace))
	for _, seg := range pattern {
		if seg == Wildcard {
			parts = append(parts, "*")
			continue
		}
		parts = append(parts, escapeGlob(seg))
	}
	return strings.Join(parts, redisSep)
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

var _ Backend = (*Redis)(nil)
