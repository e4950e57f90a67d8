package credentials

import (
	"log/slog"

	"github.com/dmitrymomot/credcache/pkg/logger"
)

// Option configures the credentials cache.
type Option func(*options)

type options struct {
	log *slog.Logger
}

func defaultOptions() *options {
	return &options{
		log: logger.NewNope(),
	}
}

// WithLogger sets the logger used for session eviction activity.
// Default: a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}
