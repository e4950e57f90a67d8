package credentials

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/credcache/pkg/store"
)

// FingerprintKey is the metadata key carrying the device fingerprint.
const FingerprintKey = "fingerprint"

// Metadata is the unordered set of key-value pairs stored alongside a
// session, notably the optional device fingerprint.
type Metadata map[string]any

// Fingerprint returns the device fingerprint, or "" when absent.
func (m Metadata) Fingerprint() string {
	fp, _ := m[FingerprintKey].(string)
	return fp
}

// SessionRecord is the value stored under a session id: the key of the
// session's user plus the session metadata.
type SessionRecord struct {
	Metadata Metadata
	UserKey  store.Key
}

// Cache maintains the three-way credentials index on top of the store
// façade. Every session produces three records sharing the store's TTL:
//
//   - session id        → SessionRecord (user key + metadata)
//   - user key          → the user object
//   - user key + session → insertion timestamp (epoch millis)
//
// The user-session index makes per-user session enumeration and
// fingerprint-based eviction possible without scanning all sessions.
type Cache struct {
	store *store.Store
	log   *slog.Logger
}

// New creates a credentials cache over the given store config.
func New(cfg store.Config, opts ...Option) (*Cache, error) {
	s, err := store.New(cfg)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Cache{store: s, log: o.log}, nil
}

// Put caches the session for the given user.
//
// When the metadata carries a fingerprint, every other live session of
// the same user with an equal fingerprint is deleted first, so at most
// one session per (user, fingerprint) pair is live after Put returns.
// Concurrent Puts for the same user and fingerprint may race; the
// elimination is best-effort over a non-transactional store, last
// write wins.
//
// Panics if user is not a recognized struct value (see UserKey).
func (c *Cache) Put(ctx context.Context, sessionID string, user any, meta Metadata) error {
	userKey := UserKey(user)

	if fp := meta.Fingerprint(); fp != "" {
		if err := c.evictFingerprint(ctx, userKey, sessionID, fp); err != nil {
			return err
		}
	}

	return c.store.PutAll(ctx,
		store.Record{Key: sessionKey(sessionID), Value: SessionRecord{UserKey: userKey, Metadata: meta}},
		store.Record{Key: userKey, Value: user},
		store.Record{Key: userSessionKey(userKey, sessionID), Value: time.Now().UnixMilli()},
	)
}

// Get returns the user object and metadata cached for the session.
// Returns ErrNotFound when the session is absent or its user record has
// already expired: the composed lookup is treated as a single logical
// read, both-or-nothing.
func (c *Cache) Get(ctx context.Context, sessionID string) (any, Metadata, error) {
	rec, err := c.sessionRecord(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	user, err := c.store.Get(ctx, rec.UserKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	return user, rec.Metadata, nil
}

// Delete removes the session and its user-session index record.
// The user record is deliberately left to expire via TTL rather than
// being reference-counted across the user's remaining sessions.
// Idempotent: deleting an unknown session succeeds.
func (c *Cache) Delete(ctx context.Context, sessionID string) error {
	rec, err := c.sessionRecord(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	if err := c.store.Delete(ctx, userSessionKey(rec.UserKey, sessionID)); err != nil {
		return err
	}

	return c.store.Delete(ctx, sessionKey(sessionID))
}

// Users returns every cached user object of the prototype's type.
// Panics if prototype is not a recognized struct value.
func (c *Cache) Users(ctx context.Context, prototype any) ([]any, error) {
	records, err := c.store.All(ctx, store.P(userTag, userTypeName(prototype), store.Wildcard))
	if err != nil {
		return nil, err
	}

	users := make([]any, len(records))
	for i, rec := range records {
		users[i] = rec.Value
	}

	return users, nil
}

// Sessions returns the ids of every live session cached for the user.
// Panics if user is not a recognized struct value.
func (c *Cache) Sessions(ctx context.Context, user any) ([]string, error) {
	return c.sessionIDs(ctx, UserKey(user))
}

// sessionRecord fetches and type-checks the record stored under a
// session id, mapping a miss to ErrNotFound.
func (c *Cache) sessionRecord(ctx context.Context, sessionID string) (SessionRecord, error) {
	v, err := c.store.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SessionRecord{}, ErrNotFound
		}
		return SessionRecord{}, err
	}

	rec, ok := v.(SessionRecord)
	if !ok {
		return SessionRecord{}, ErrNotFound
	}

	return rec, nil
}

// sessionIDs enumerates the user-session index for a user key.
// The session id is the last segment of each index key.
func (c *Cache) sessionIDs(ctx context.Context, userKey store.Key) ([]string, error) {
	records, err := c.store.All(ctx, userSessionPattern(userKey))
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.Key[len(rec.Key)-1]
	}

	return ids, nil
}

// evictFingerprint deletes every other session of the user whose stored
// fingerprint equals fp. Runs before the new session is written so at
// most one live session per (user, fingerprint) remains afterwards.
func (c *Cache) evictFingerprint(ctx context.Context, userKey store.Key, sessionID, fp string) error {
	ids, err := c.sessionIDs(ctx, userKey)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if id == sessionID {
			continue
		}

		rec, err := c.sessionRecord(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Index entry outlived its session record; nothing to evict.
				continue
			}
			return err
		}

		if rec.Metadata.Fingerprint() != fp {
			continue
		}

		c.log.Debug("evicting concurrent session",
			slog.String("session_id", id),
			slog.String("user_key", userKey.String()),
		)

		if err := c.Delete(ctx, id); err != nil {
			return err
		}
	}

	return nil
}
