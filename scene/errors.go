package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/benoitkugler/okscene/sceneload"
	"github.com/rs/zerolog"
)

type (
	// AbortedError is returned when the context of an enliven call is done.
	AbortedError = sceneload.AbortedError
	// ResourceLoadError is returned when an image source can't be loaded.
	ResourceLoadError = sceneload.ResourceLoadError
)

// IsAborted reports whether err comes from a canceled context.
func IsAborted(err error) bool { return sceneload.IsAborted(err) }

// UnresolvedTypeError means a type tag has no factory in the namespace.
type UnresolvedTypeError struct {
	Type  string // the type tag, as found in the descriptor
	Class string // the class name looked up
}

func (e *UnresolvedTypeError) Error() string {
	if e.Type == "" {
		return "unknown type: missing type tag"
	}
	return fmt.Sprintf("unknown type %q (class %q is not registered)", e.Type, e.Class)
}

// ErrorMode determines how factories react to descriptor
// fields they do not understand.
type ErrorMode uint8

const (
	IgnoreErrorMode ErrorMode = iota // silently skip the field
	WarnErrorMode                    // log a warning and skip the field
	StrictErrorMode                  // fail the construction
)

// HandleError applies the error mode to the diagnostic `msg`.
// Warnings go to the zerolog logger of `ctx`.
func (o Options) HandleError(ctx context.Context, msg string) error {
	switch o.ErrorMode {
	case StrictErrorMode:
		return errors.New(msg)
	case WarnErrorMode:
		zerolog.Ctx(ctx).Warn().Msg(msg)
	}
	return nil
}
