// Package redis provides the Redis client plumbing for the store's
// Redis backend.
//
// It wraps [github.com/redis/go-redis/v9] with connection pooling,
// startup retry, a health check closure, and a graceful shutdown hook,
// so the backend itself only ever sees a ready client.
//
// # Usage
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//	    redis.WithPoolSize(20),
//	    redis.WithRetry(5, 2*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	backend := store.NewRedis(client, nil)
//
// Both redis:// and rediss:// (TLS) URL schemes are accepted. Open
// pings the server and retries with linear backoff before giving up
// with [ErrConnectionFailed].
//
// [Healthcheck] returns a func(context.Context) error suitable for
// readiness probes; [Shutdown] returns a hook that closes the client.
package redis
