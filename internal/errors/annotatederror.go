// Package errors provides error annotation helpers on top of the standard
// library. Annotated errors carry slog attributes and the source location of
// the annotation so failures can be logged with context.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// annotatedError wraps an error with a message, slog attributes, and the
// source location where the annotation happened.
type annotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	file  string
	line  int
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// NewSentinel creates a new sentinel error that other errors can wrap.
func NewSentinel(msg string) error {
	return annotate(msg, nil)
}

// Wrap annotates err with a message and optional slog attributes.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return annotate(msg, err, attrs...)
}

func annotate(msg string, err error, attrs ...slog.Attr) error {
	const skip = 3 // annotate, Wrap/NewSentinel, caller
	_, file, line, _ := runtime.Caller(skip - 1)
	return &annotatedError{
		msg:   msg,
		err:   err,
		attrs: attrs,
		file:  file,
		line:  line,
	}
}

// SlogError converts an error into a slog group attribute containing the
// message, the collected annotations, and the annotation source location.
// It tolerates nil and non-annotated errors.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	attrs := []slog.Attr{slog.String("message", err.Error())}

	// Collect annotations from the outermost annotated error in the chain.
	var annotated *annotatedError
	if errors.As(err, &annotated) {
		if len(annotated.attrs) > 0 {
			annotationArgs := make([]any, 0, len(annotated.attrs))
			for _, attr := range annotated.attrs {
				annotationArgs = append(annotationArgs, attr)
			}
			attrs = append(attrs, slog.Group("annotations", annotationArgs...))
		}
		attrs = append(attrs, slog.String("source", fmt.Sprintf("%s:%d", annotated.file, annotated.line)))
	}

	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return slog.Group("error", args...)
}

// New is a re-export of [errors.New].
func New(msg string) error {
	return errors.New(msg)
}

// Is is a re-export of [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a re-export of [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join is a re-export of [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Unwrap is a re-export of [errors.Unwrap].
func Unwrap(err error) error {
	return errors.Unwrap(err)
}
