package scene

import (
	"context"

	"github.com/benoitkugler/okscene/sceneload"
	"github.com/benoitkugler/okscene/scenemetrics"
	"golang.org/x/sync/errgroup"
)

type enlivableKind uint8

const (
	plainValue    enlivableKind = iota
	gradientValue               // has colorStops
	objectValue                 // has a type, such as a clip path
	patternValue                // has a source
)

// classify detects nested resources by their fields.
// The order of the checks matters: a descriptor with both
// colorStops and type is a gradient.
func classify(v any) (enlivableKind, Descriptor) {
	if !Truthy(v) {
		return plainValue, nil
	}
	d, ok := AsDescriptor(v)
	if !ok {
		return plainValue, nil
	}
	switch {
	case Truthy(d["colorStops"]):
		return gradientValue, d
	case Truthy(d["type"]):
		return objectValue, d
	case Truthy(d["source"]):
		return patternValue, d
	}
	return plainValue, nil
}

// EnlivenEnlivables returns a copy of `d` where every nested resource
// (gradient, pattern, or object such as a clip path) is replaced by its
// live instance. Other values are copied unchanged.
//
// Gradients are built synchronously; objects and patterns concurrently,
// under one cancellation scope derived from `ctx`. As for EnlivenObjects,
// a failure disposes every nested instance already built.
func EnlivenEnlivables(ctx context.Context, d Descriptor, opts Options) (Descriptor, error) {
	out, _, err := enlivenEnlivables(ctx, d, opts)
	return out, err
}

// enlivenEnlivables also returns the instances owned by the result.
func enlivenEnlivables(ctx context.Context, d Descriptor, opts Options) (out Descriptor, built []any, err error) {
	var pending batch
	defer func() {
		disposed := 0
		if err != nil {
			disposed = pending.dispose()
		}
		finish(ctx, scenemetrics.OpEnlivables, err, disposed)
	}()

	if err := sceneload.Aborted(ctx); err != nil {
		return nil, nil, err
	}

	nested := opts.withoutReviver()
	keys := d.Keys()
	values := make([]any, len(keys))
	g, gctx := errgroup.WithContext(ctx)
launch:
	for i, key := range keys {
		values[i] = d[key]
		kind, sub := classify(d[key])
		switch kind {
		case gradientValue:
			grad, err := NewGradient(sub)
			if err != nil {
				// cancels what is already running
				g.Go(func() error { return err })
				break launch
			}
			values[i] = grad
		case objectValue:
			g.Go(func() error {
				instances, err := enlivenObjects(gctx, []Descriptor{sub}, nested)
				if err != nil {
					return err
				}
				pending.add(instances[0], nil)
				values[i] = instances[0]
				return nil
			})
		case patternValue:
			g.Go(func() error {
				pattern, err := PatternFromObject(gctx, sub, nested)
				if err != nil {
					return err
				}
				pending.add(pattern, nil)
				values[i] = pattern
				return nil
			})
		}
	}
	err = g.Wait()
	if err != nil {
		// the caller abort takes precedence over child failures
		if abortErr := sceneload.Aborted(ctx); abortErr != nil {
			err = abortErr
		}
	}
	if err != nil {
		return nil, nil, err
	}

	out = make(Descriptor, len(keys))
	for i, key := range keys {
		out[key] = values[i]
	}
	return out, pending.built, nil
}
