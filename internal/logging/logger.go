// Package logging defines the structured-logging interface used across the
// gallery server and client, plus a zerolog-backed implementation.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key-value pairs:
//
//	log.Info(ctx, "image stored", "id", img.ID, "bytes", img.FileSize)
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a recovered or swallowed failure.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure that reaches the caller.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
