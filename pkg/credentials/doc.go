// Package credentials caches session-to-user mappings with per-user
// session enumeration and fingerprint-based concurrent-session
// eviction, on top of the expiring store in
// [github.com/dmitrymomot/credcache/pkg/store].
//
// # Records
//
// Every [Cache.Put] writes three records sharing the store's TTL:
//
//   - the session record, keyed by session id, holding the user's
//     derived key and the session [Metadata]
//   - the user record, keyed by the derived user key, holding the user
//     object itself
//   - the user-session index record, keyed by user key + session id,
//     holding the insertion timestamp
//
// # User Keys
//
// [UserKey] derives a deterministic key from the user struct's
// primary-key fields (tagged `cache:"pk"`, or a bare ID field).
// Composite keys sort their fields by name, so field ordering never
// changes the key. Passing a non-struct value panics: that is an
// integration bug, not a runtime condition.
//
// # Fingerprint Eviction
//
// When a session's metadata carries a "fingerprint" entry, Put first
// deletes every other session of the same user with an equal stored
// fingerprint, keeping at most one live session per (user, fingerprint)
// device. Elimination is best-effort: concurrent Puts over the
// non-transactional store may race, last write wins.
//
// # Usage
//
//	backend := store.NewMemory()
//	defer backend.Close()
//
//	cache, err := credentials.New(store.Config{
//	    Backend:   backend,
//	    Namespace: "credentials",
//	    TTL:       30 * time.Minute,
//	})
//
//	type User struct {
//	    ID    string
//	    Email string
//	}
//
//	err = cache.Put(ctx, sessionID, User{ID: "1"}, credentials.Metadata{
//	    "fingerprint": deviceFingerprint,
//	})
//
//	user, meta, err := cache.Get(ctx, sessionID)
//	if errors.Is(err, credentials.ErrNotFound) {
//	    // session expired or unknown
//	}
//
// Deleting a session removes the session and index records; the user
// record is left to expire with its TTL, trading brief staleness for
// not reference-counting users across their sessions.
package credentials
