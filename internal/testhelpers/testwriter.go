package testhelpers

import (
	"io"
	"strings"
	"testing"
)

// Writer is an io.Writer that forwards log output to t.Log so that it only
// shows up for failing tests.
type Writer struct {
	t *testing.T
}

// NewWriter creates a Writer bound to t.
func NewWriter(t *testing.T) io.Writer {
	return &Writer{t: t}
}

func (w *Writer) Write(p []byte) (int, error) {
	// Trailing newlines would double-space the test output.
	if line := strings.TrimSuffix(string(p), "\n"); line != "" {
		w.t.Log(line)
	}
	return len(p), nil
}
