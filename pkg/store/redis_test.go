package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credcache/pkg/store"
)

func redisBackend(t *testing.T, opts ...store.RedisOption) (*store.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return store.NewRedis(client, nil, opts...), mr
}

func TestRedis_PutGet(t *testing.T) {
	t.Parallel()

	t.Run("missing key returns ErrNotFound", func(t *testing.T) {
		t.Parallel()

		r, _ := redisBackend(t)
		cfg := store.Config{Backend: r, Namespace: "test", TTL: time.Minute}

		_, err := r.Get(context.Background(), cfg, store.K("missing"))
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("round-trips values as JSON", func(t *testing.T) {
		t.Parallel()

		r, _ := redisBackend(t)
		ctx := context.Background()
		cfg := store.Config{Backend: r, Namespace: "test", TTL: time.Minute}

		require.NoError(t, r.Put(ctx, cfg, store.Record{Key: store.K("key"), Value: "hello"}))

		val, err := r.Get(ctx, cfg, store.K("key"))
		require.NoError(t, err)
		require.Equal(t, "hello", val)
	})

	t.Run("expires via redis TTL", func(t *testing.T) {
		t.Parallel()

		r, mr := redisBackend(t)
		ctx := context.Background()
		cfg := store.Config{Backend: r, Namespace: "test", TTL: time.Minute}

		require.NoError(t, r.Put(ctx, cfg, store.Record{Key: store.K("key"), Value: "v"}))

		mr.FastForward(2 * time.Minute)

		_, err := r.Get(ctx, cfg, store.K("key"))
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("zero TTL persists", func(t *testing.T) {
		t.Parallel()

		r, mr := redisBackend(t)
		ctx := context.Background()
		cfg := store.Config{Backend: r, Namespace: "test", TTL: 0}

		require.NoError(t, r.Put(ctx, cfg, store.Record{Key: store.K("key"), Value: "v"}))

		mr.FastForward(24 * time.Hour)

		val, err := r.Get(ctx, cfg, store.K("key"))
		require.NoError(t, err)
		require.Equal(t, "v", val)
	})
}

func TestRedis_Delete(t *testing.T) {
	t.Parallel()

	r, _ := redisBackend(t)
	ctx := context.Background()
	cfg := store.Config{Backend: r, Namespace: "test", TTL: time.Minute}

	require.NoError(t, r.Put(ctx, cfg, store.Record{Key: store.K("key"), Value: "v"}))
	require.NoError(t, r.Delete(ctx, cfg, store.K("key")))

	_, err := r.Get(ctx, cfg, store.K("key"))
	require.ErrorIs(t, err, store.ErrNotFound)

	// Idempotent.
	require.NoError(t, r.Delete(ctx, cfg, store.K("key")))
}

func TestRedis_All(t *testing.T) {
	t.Parallel()

	t.Run("pattern filters by segment and namespace", func(t *testing.T) {
		t.Parallel()

		r, _ := redisBackend(t)
		ctx := context.Background()
		cfg := store.Config{Backend: r, Namespace: "main", TTL: time.Minute}
		other := store.Config{Backend: r, Namespace: "other", TTL: time.Minute}

		require.NoError(t, r.Put(ctx, cfg,
			store.Record{Key: store.K("ns", "a"), Value: "1"},
			store.Record{Key: store.K("ns", "b"), Value: "2"},
			store.Record{Key: store.K("xx", "a"), Value: "3"},
		))
		require.NoError(t, r.Put(ctx, other, store.Record{Key: store.K("ns", "a"), Value: "4"}))

		records, err := r.All(ctx, cfg, store.P("ns", store.Wildcard))
		require.NoError(t, err)
		require.Len(t, records, 2)

		got := map[string]any{}
		for _, rec := range records {
			got[rec.Key.String()] = rec.Value
		}
		require.Equal(t, map[string]any{"ns/a": "1", "ns/b": "2"}, got)
	})

	t.Run("same-arity matching excludes longer keys", func(t *testing.T) {
		t.Parallel()

		r, _ := redisBackend(t)
		ctx := context.Background()
		cfg := store.Config{Backend: r, Namespace: "main", TTL: time.Minute}

		require.NoError(t, r.Put(ctx, cfg,
			store.Record{Key: store.K("user", "1"), Value: "short"},
			store.Record{Key: store.K("user", "1", "session", "s1"), Value: "long"},
		))

		records, err := r.All(ctx, cfg, store.P("user", store.Wildcard))
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, store.K("user", "1"), records[0].Key)
	})
}

func TestRedis_Events(t *testing.T) {
	t.Parallel()

	rec := &eventRecorder{}
	r, _ := redisBackend(t, store.WithRedisSubscriber(rec.record))
	ctx := context.Background()
	cfg := store.Config{Backend: r, Namespace: "test", TTL: time.Minute}

	require.NoError(t, r.Put(ctx, cfg, store.Record{Key: store.K("key"), Value: "v"}))
	require.NoError(t, r.Delete(ctx, cfg, store.K("key")))

	require.Len(t, rec.byType(store.EventWrite), 1)
	deletes := rec.byType(store.EventDelete)
	require.Len(t, deletes, 1)
	require.Equal(t, store.K("key"), deletes[0].Key)
}

func TestRedis_FacadeIntegration(t *testing.T) {
	t.Parallel()

	r, _ := redisBackend(t)

	s, err := store.New(store.Config{Backend: r, Namespace: "facade", TTL: time.Minute})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, store.K("key"), "value"))

	val, err := s.Get(ctx, store.K("key"))
	require.NoError(t, err)
	require.Equal(t, "value", val)
}
