package store

import (
	"log/slog"

	"github.com/dmitrymomot/credcache/pkg/logger"
)

// MemoryOption configures the in-memory backend.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	log  *slog.Logger
	subs []Subscriber
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		log: logger.NewNope(),
	}
}

// WithSubscriber attaches a lifecycle event subscriber. May be given
// multiple times; subscribers are notified in registration order.
// Nil subscribers are ignored.
func WithSubscriber(sub Subscriber) MemoryOption {
	return func(o *memoryOptions) {
		if sub != nil {
			o.subs = append(o.subs, sub)
		}
	}
}

// WithLogger sets the logger for expiry activity.
// Default: a no-op logger.
func WithLogger(log *slog.Logger) MemoryOption {
	return func(o *memoryOptions) {
		if log != nil {
			o.log = log
		}
	}
}
