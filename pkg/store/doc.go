// Package store provides a namespaced, TTL-aware key-value store with
// pluggable backends and lifecycle events.
//
// One backend holds a single shared table; any number of logical stores
// share it without collisions because every record is stored under a
// (namespace, key) pair. Namespace and TTL are fixed per store by its
// [Config], so higher layers never handle namespacing or expiry
// directly.
//
// # Keys and Patterns
//
// A [Key] is a composite of string segments; a scalar key is simply a
// one-segment Key. [Pattern] performs same-arity, per-segment matching
// where [Wildcard] matches any value at its position:
//
//	store.P("user", "User", store.Wildcard).Match(store.K("user", "User", "1")) // true
//	store.P("user", store.Wildcard).Match(store.K("user", "User", "1"))        // false: arity differs
//
// # Façade
//
// [New] builds a [Store] façade from a [Config]:
//
//	backend := store.NewMemory()
//	defer backend.Close()
//
//	s, err := store.New(store.Config{
//	    Backend:   backend,
//	    Namespace: "credentials",
//	    TTL:       30 * time.Minute, // zero = records never expire
//	})
//
//	s.Put(ctx, store.K("greeting"), "hello")
//	v, err := s.Get(ctx, store.K("greeting"))
//
// [Store.Put] writes a single key-value pair; [Store.PutAll] writes a
// batch in one backend call. [Store.All] enumerates the namespace by
// pattern.
//
// # Backends
//
// [Memory] is the in-process backend: a mutex-guarded table where every
// TTL-bearing put arms a one-shot timer tagged with the record's
// generation. Refreshing a record advances the generation rather than
// cancelling the old timer; a stale timer fire is a no-op. Each expired
// record is removed exactly once and produces exactly one invalidate
// event.
//
// [Redis] satisfies the same contract over a shared Redis instance for
// deployments that need the cache to outlive one process or be shared
// between several. Expiry is Redis-native there.
//
// # Events
//
// Backends emit three lifecycle events: [EventWrite] after a put,
// [EventDelete] after an explicit delete, and [EventInvalidate] after a
// TTL expiry (Memory only). Subscribers are attached with
// [WithSubscriber] / [WithRedisSubscriber]; they are observational
// only and can never fail or abort the operation that fired them.
//
// # Error Handling
//
// The package defines sentinel errors checked with [errors.Is]:
//
//   - [ErrNotFound] — key absent or expired
//   - [ErrClosed] — backend closed; "store down" is never reported as an empty store
//   - [ErrNoBackend] — Config without a backend
//   - [ErrMarshal], [ErrUnmarshal] — Redis value serialization failures
package store
