// Package logging provides a minimal logging facade for the benchmark harness.
//
// The Logger interface wraps the context-aware subset of log/slog:
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// New binds the interface to an *slog.Logger (slog.Default() when nil) and Nop
// returns a logger that drops everything, which is what the runner uses when
// no logger is configured.
//
//	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: logging.ParseLevel("debug"),
//	})
//	runner := bench.NewRunner(bench.WithLogger(logging.New(slog.New(handler))))
//
// # Redaction
//
// Master secrets and secret keys must never reach a log sink. Redacted
// produces a placeholder attribute that records that a value existed:
//
//	logger.Debug(ctx, "setup complete", logging.Redacted("master_secret"))
//	// master_secret="[redacted]"
package logging
