package credentials_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credcache/pkg/credentials"
	"github.com/dmitrymomot/credcache/pkg/store"
)

type testUser struct {
	ID    string
	Email string
}

// newCache builds a credentials cache over a fresh Memory backend and
// returns a store façade sharing its config, for poking at the raw
// records underneath the cache.
func newCache(t *testing.T, ttl time.Duration) (*credentials.Cache, *store.Store) {
	t.Helper()

	backend := store.NewMemory()
	t.Cleanup(func() { _ = backend.Close() })

	cfg := store.Config{Backend: backend, Namespace: "credentials", TTL: ttl}

	cache, err := credentials.New(cfg)
	require.NoError(t, err)

	raw, err := store.New(cfg)
	require.NoError(t, err)

	return cache, raw
}

func TestCache_PutGet(t *testing.T) {
	t.Parallel()

	t.Run("round-trips user and metadata", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, time.Minute)
		ctx := context.Background()

		user := testUser{ID: "1", Email: "a@b.c"}
		sid := uuid.NewString()
		require.NoError(t, cache.Put(ctx, sid, user, credentials.Metadata{"fingerprint": "f"}))

		got, meta, err := cache.Get(ctx, sid)
		require.NoError(t, err)
		require.Equal(t, user, got)
		require.Equal(t, "f", meta.Fingerprint())

		ids, err := cache.Sessions(ctx, user)
		require.NoError(t, err)
		require.Equal(t, []string{sid}, ids)
	})

	t.Run("unknown session returns ErrNotFound", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, time.Minute)

		_, _, err := cache.Get(context.Background(), uuid.NewString())
		require.ErrorIs(t, err, credentials.ErrNotFound)
	})

	t.Run("expired user record degrades to ErrNotFound", func(t *testing.T) {
		t.Parallel()

		cache, raw := newCache(t, time.Minute)
		ctx := context.Background()

		user := testUser{ID: "1"}
		sid := uuid.NewString()
		require.NoError(t, cache.Put(ctx, sid, user, credentials.Metadata{}))

		// Simulate the user record expiring ahead of the session record.
		require.NoError(t, raw.Delete(ctx, credentials.UserKey(user)))

		_, _, err := cache.Get(ctx, sid)
		require.ErrorIs(t, err, credentials.ErrNotFound)
	})

	t.Run("sessions expire with the store TTL", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, 30*time.Millisecond)
		ctx := context.Background()

		user := testUser{ID: "1"}
		sid := uuid.NewString()
		require.NoError(t, cache.Put(ctx, sid, user, credentials.Metadata{}))

		time.Sleep(80 * time.Millisecond)

		_, _, err := cache.Get(ctx, sid)
		require.ErrorIs(t, err, credentials.ErrNotFound)

		ids, err := cache.Sessions(ctx, user)
		require.NoError(t, err)
		require.Empty(t, ids)
	})

	t.Run("panics for non-struct user", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, time.Minute)

		require.Panics(t, func() {
			_ = cache.Put(context.Background(), uuid.NewString(), "not a user", credentials.Metadata{})
		})
	})
}

func TestCache_FingerprintEviction(t *testing.T) {
	t.Parallel()

	t.Run("same fingerprint evicts the previous session", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, time.Minute)
		ctx := context.Background()

		user := testUser{ID: "1"}
		meta := credentials.Metadata{"fingerprint": "f"}

		require.NoError(t, cache.Put(ctx, "s1", user, meta))
		require.NoError(t, cache.Put(ctx, "s2", user, meta))

		_, _, err := cache.Get(ctx, "s1")
		require.ErrorIs(t, err, credentials.ErrNotFound)

		got, gotMeta, err := cache.Get(ctx, "s2")
		require.NoError(t, err)
		require.Equal(t, user, got)
		require.Equal(t, "f", gotMeta.Fingerprint())

		ids, err := cache.Sessions(ctx, user)
		require.NoError(t, err)
		require.Equal(t, []string{"s2"}, ids)
	})

	t.Run("different fingerprints coexist", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, time.Minute)
		ctx := context.Background()

		user := testUser{ID: "1"}
		require.NoError(t, cache.Put(ctx, "s1", user, credentials.Metadata{"fingerprint": "laptop"}))
		require.NoError(t, cache.Put(ctx, "s2", user, credentials.Metadata{"fingerprint": "phone"}))

		ids, err := cache.Sessions(ctx, user)
		require.NoError(t, err)
		require.Len(t, ids, 2)
	})

	t.Run("no fingerprint never evicts", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, time.Minute)
		ctx := context.Background()

		user := testUser{ID: "1"}
		require.NoError(t, cache.Put(ctx, "s1", user, credentials.Metadata{}))
		require.NoError(t, cache.Put(ctx, "s2", user, credentials.Metadata{}))

		ids, err := cache.Sessions(ctx, user)
		require.NoError(t, err)
		require.Len(t, ids, 2)
	})

	t.Run("other users are untouched", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, time.Minute)
		ctx := context.Background()

		alice := testUser{ID: "alice"}
		bob := testUser{ID: "bob"}
		meta := credentials.Metadata{"fingerprint": "f"}

		require.NoError(t, cache.Put(ctx, "sa", alice, meta))
		require.NoError(t, cache.Put(ctx, "sb", bob, meta))

		ids, err := cache.Sessions(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, []string{"sa"}, ids)
	})

	t.Run("re-putting the same session keeps it", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, time.Minute)
		ctx := context.Background()

		user := testUser{ID: "1"}
		meta := credentials.Metadata{"fingerprint": "f"}

		require.NoError(t, cache.Put(ctx, "s1", user, meta))
		require.NoError(t, cache.Put(ctx, "s1", user, meta))

		ids, err := cache.Sessions(ctx, user)
		require.NoError(t, err)
		require.Equal(t, []string{"s1"}, ids)
	})
}

func TestCache_Delete(t *testing.T) {
	t.Parallel()

	t.Run("removes session and index records", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, time.Minute)
		ctx := context.Background()

		user := testUser{ID: "1"}
		sid := uuid.NewString()
		require.NoError(t, cache.Put(ctx, sid, user, credentials.Metadata{}))
		require.NoError(t, cache.Delete(ctx, sid))

		_, _, err := cache.Get(ctx, sid)
		require.ErrorIs(t, err, credentials.ErrNotFound)

		ids, err := cache.Sessions(ctx, user)
		require.NoError(t, err)
		require.Empty(t, ids)
	})

	t.Run("leaves the user record to its TTL", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, time.Minute)
		ctx := context.Background()

		user := testUser{ID: "1"}
		sid := uuid.NewString()
		require.NoError(t, cache.Put(ctx, sid, user, credentials.Metadata{}))
		require.NoError(t, cache.Delete(ctx, sid))

		users, err := cache.Users(ctx, testUser{})
		require.NoError(t, err)
		require.Equal(t, []any{user}, users)
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		cache, _ := newCache(t, time.Minute)
		ctx := context.Background()

		sid := uuid.NewString()
		require.NoError(t, cache.Delete(ctx, sid))
		require.NoError(t, cache.Delete(ctx, sid))
	})
}

func TestCache_Users(t *testing.T) {
	t.Parallel()

	cache, _ := newCache(t, time.Minute)
	ctx := context.Background()

	alice := testUser{ID: "alice"}
	bob := testUser{ID: "bob"}
	require.NoError(t, cache.Put(ctx, "sa", alice, credentials.Metadata{}))
	require.NoError(t, cache.Put(ctx, "sb", bob, credentials.Metadata{}))

	users, err := cache.Users(ctx, testUser{})
	require.NoError(t, err)
	require.ElementsMatch(t, []any{alice, bob}, users)
}

func TestCache_MultipleSessionsPerUser(t *testing.T) {
	t.Parallel()

	cache, _ := newCache(t, time.Minute)
	ctx := context.Background()

	user := testUser{ID: "1"}
	sids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	for _, sid := range sids {
		require.NoError(t, cache.Put(ctx, sid, user, credentials.Metadata{}))
	}

	ids, err := cache.Sessions(ctx, user)
	require.NoError(t, err)
	require.ElementsMatch(t, sids, ids)

	// One user record regardless of session count.
	users, err := cache.Users(ctx, testUser{})
	require.NoError(t, err)
	require.Len(t, users, 1)
}
