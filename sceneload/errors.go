package sceneload

import (
	"context"
	"errors"
	"fmt"
)

// AbortedError is returned when the context governing an operation
// was done before the operation started, or while it was in flight.
type AbortedError struct {
	Cause error // the abort reason, as given by context.Cause
}

func (e *AbortedError) Error() string {
	if e.Cause == nil {
		return "operation aborted"
	}
	return "operation aborted: " + e.Cause.Error()
}

func (e *AbortedError) Unwrap() error { return e.Cause }

// Aborted returns an *AbortedError carrying the cause of `ctx`
// if it is done, or nil otherwise.
func Aborted(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	return &AbortedError{Cause: context.Cause(ctx)}
}

// IsAborted reports whether err is, or wraps, an *AbortedError.
func IsAborted(err error) bool {
	var ae *AbortedError
	return errors.As(err, &ae)
}

// ResourceLoadError is returned when an image could not be
// fetched or decoded.
type ResourceLoadError struct {
	URL string
	Err error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("error loading %s: %s", shortURL(e.URL), e.Err)
}

func (e *ResourceLoadError) Unwrap() error { return e.Err }

// shortURL keeps error messages readable for inline data URLs.
func shortURL(u string) string {
	const maxLen = 64
	if len(u) <= maxLen {
		return u
	}
	return u[:maxLen] + "..."
}
