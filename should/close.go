// Package should provides utilities for cleanup operations that should succeed
// but may fail in practice. Instead of returning errors, these functions log
// failures, making them suitable for defer statements and cleanup code.
package should

import (
	"io"
	"log/slog"
)

// Disposer is anything holding resources that are released by Dispose,
// such as a prompter with an open UI handle or a pending page fetch.
type Disposer interface {
	Dispose() error
}

// Close attempts to close the given io.Closer and logs an error if it fails.
//
// Example:
//
//	defer should.Close(file, "failed to close file")
func Close(closer io.Closer, msg string) {
	if err := closer.Close(); err != nil {
		slog.Error(msg, "error", err)
	}
}

// Dispose releases the given Disposer and logs an error if it fails.
// A nil Disposer is ignored.
//
// Example:
//
//	defer should.Dispose(prompt, "failed to dispose prompter")
func Dispose(d Disposer, msg string) {
	if d == nil {
		return
	}

	if err := d.Dispose(); err != nil {
		slog.Error(msg, "error", err)
	}
}
