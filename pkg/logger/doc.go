// Package logger provides structured logging helpers on top of log/slog.
//
// It offers a JSON logger factory with configurable level and output,
// automatic context-based attribute injection, and a no-op logger used
// as the default wherever logging is optional.
//
// # Basic Usage
//
//	log := logger.New(logger.WithLevel(slog.LevelDebug))
//	log.Info("store started", slog.String("namespace", "credentials"))
//
// # Context Extractors
//
// Extractors inject request-scoped values into every log record:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//	    if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
//	        return slog.String("request_id", id), true
//	    }
//	    return slog.Attr{}, false
//	}
//
//	log := logger.New(logger.WithExtractors(requestID))
//	log.InfoContext(ctx, "session cached") // carries request_id
//
// # No-op Logger
//
// [NewNope] returns a logger that discards everything. Packages that
// accept an optional *slog.Logger use it as their default so call
// sites never need nil checks.
package logger
