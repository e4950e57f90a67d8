package logger

import (
	"io"
	"log/slog"
	"os"
)

// Option configures the logger factory.
type Option func(*options)

type options struct {
	out        io.Writer
	level      slog.Leveler
	extractors []ContextExtractor
}

func defaultOptions() *options {
	return &options{
		out:   os.Stdout,
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level.
// Default: slog.LevelInfo.
func WithLevel(level slog.Leveler) Option {
	return func(o *options) {
		if level != nil {
			o.level = level
		}
	}
}

// WithOutput sets the log destination.
// Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

// WithExtractors attaches context extractors that inject
// request-scoped attributes into every log record.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, extractors...)
	}
}

// New creates a JSON-formatted logger.
func New(opts ...Option) *slog.Logger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	h := slog.NewJSONHandler(o.out, &slog.HandlerOptions{
		Level: o.level,
	})
	return slog.New(NewContextHandler(h, o.extractors...))
}
