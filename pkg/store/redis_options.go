package store

// RedisOption configures the Redis backend.
type RedisOption func(*redisOptions)

type redisOptions struct {
	subs      []Subscriber
	scanCount int
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{
		scanCount: 100,
	}
}

// WithRedisSubscriber attaches a lifecycle event subscriber to the
// Redis backend. The backend emits write and delete events; invalidate
// events are not available because expiry happens inside Redis.
// Nil subscribers are ignored.
func WithRedisSubscriber(sub Subscriber) RedisOption {
	return func(o *redisOptions) {
		if sub != nil {
			o.subs = append(o.subs, sub)
		}
	}
}

// WithScanCount sets the COUNT hint used by SCAN during All.
// Default: 100.
func WithScanCount(n int) RedisOption {
	return func(o *redisOptions) {
		if n > 0 {
			o.scanCount = n
		}
	}
}
