// Package logging is the structured-logging seam shared by the panel server
// and the CLI client. Both sides log through the Logger interface so tests
// and alternative backends can swap the implementation; the default backend
// is slog.
package logging

import "context"

// Logger logs leveled messages with alternating key-value args:
//
//	log.Info(ctx, "listening", "addr", addr)
type Logger interface {
	// Info records normal operational events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn records conditions worth attention that do not fail the operation.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failed operations.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that attaches the given key-value pairs to every
	// subsequent record.
	With(args ...any) Logger
}
