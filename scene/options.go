package scene

import (
	"context"

	"github.com/benoitkugler/okscene/sceneload"
)

// Reviver is called once for each object built by EnlivenObjects,
// with its descriptor, for caller side post-processing.
// Calls are serialized.
type Reviver func(d Descriptor, instance any)

// ImageLoader loads the images referenced by descriptors.
// *sceneload.Loader implements it.
type ImageLoader interface {
	LoadImage(ctx context.Context, url string, opts sceneload.LoadOptions) (*sceneload.Image, error)
}

// Options are shared by every factory involved in one enliven call.
// The zero value uses DefaultNamespace and sceneload.Default.
type Options struct {
	Reviver   Reviver
	Namespace *Namespace
	Loader    ImageLoader
	ErrorMode ErrorMode
}

func (o Options) namespace() *Namespace {
	if o.Namespace == nil {
		return DefaultNamespace
	}
	return o.Namespace
}

// ImageLoader returns the configured loader, or sceneload.Default.
func (o Options) ImageLoader() ImageLoader {
	if o.Loader == nil {
		return sceneload.Default
	}
	return o.Loader
}

func (o Options) revive(d Descriptor, instance any) {
	if o.Reviver != nil {
		o.Reviver(d, instance)
	}
}

// withoutReviver is used for nested resources, which are not
// reported to the caller's reviver.
func (o Options) withoutReviver() Options {
	o.Reviver = nil
	return o
}
