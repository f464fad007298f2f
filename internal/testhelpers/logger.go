// Package testhelpers provides logging helpers for tests.
package testhelpers

import (
	"io"
	"log/slog"

	"github.com/ahvonen/gymlog/internal/logging"
)

// NewLogger creates a debug-level logger writing to the given sink, such as
// the writer returned by [NewWriter].
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	return slog.New(handler)
}
