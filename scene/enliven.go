package scene

import (
	"context"
	"sync"

	"github.com/benoitkugler/okscene/sceneload"
	"github.com/benoitkugler/okscene/scenemetrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Disposer is implemented by live instances holding resources
// (decoded images, nested instances) which should be released
// when they are discarded.
type Disposer interface {
	Dispose()
}

// Dispose calls v.Dispose if v implements Disposer.
func Dispose(v any) {
	if d, ok := v.(Disposer); ok && d != nil {
		d.Dispose()
	}
}

// batch holds the instances built so far by one enliven call.
// They are disposed if the call fails, handed to the caller otherwise.
type batch struct {
	mu    sync.Mutex
	built []any
}

// add records `instance`, running `then` under the batch lock.
func (b *batch) add(instance any, then func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if then != nil {
		then()
	}
	b.built = append(b.built, instance)
}

// dispose releases every recorded instance, once, and returns
// how many of them were recorded.
func (b *batch) dispose() int {
	b.mu.Lock()
	built := b.built
	b.built = nil
	b.mu.Unlock()
	for _, instance := range built {
		Dispose(instance)
	}
	return len(built)
}

// finish records the outcome of one batch.
func finish(ctx context.Context, op string, err error, disposed int) {
	result := scenemetrics.ResultOK
	switch {
	case err == nil:
	case sceneload.IsAborted(err):
		result = scenemetrics.ResultAborted
	default:
		result = scenemetrics.ResultError
	}
	scenemetrics.RecordBatch(op, result)
	scenemetrics.RecordDisposed(op, disposed)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Str("op", op).Int("disposed", disposed).Err(err).Msg("enliven failed")
	}
}

// EnlivenObjects builds the live instances described by `descriptors`,
// using the factory registered for each descriptor type in opts.Namespace.
//
// Constructions run concurrently, and share a cancellation scope derived
// from `ctx`. The instances are returned in the order of `descriptors`.
// If `ctx` is done, or if one construction fails, every instance already
// built is disposed and the error (an *AbortedError for cancellation, the
// factory error otherwise) is returned.
// An unknown type tag fails the call with an *UnresolvedTypeError before
// any factory is invoked.
func EnlivenObjects(ctx context.Context, descriptors []Descriptor, opts Options) ([]any, error) {
	instances, err := enlivenObjects(ctx, descriptors, opts)
	if err != nil {
		return nil, err
	}
	return instances, nil
}

func enlivenObjects(ctx context.Context, descriptors []Descriptor, opts Options) (instances []any, err error) {
	var pending batch
	defer func() {
		disposed := 0
		if err != nil {
			disposed = pending.dispose()
		}
		finish(ctx, scenemetrics.OpObjects, err, disposed)
	}()

	if err := sceneload.Aborted(ctx); err != nil {
		return nil, err
	}

	// resolve everything before launching anything
	ns := opts.namespace()
	factories := make([]Factory, len(descriptors))
	for i, d := range descriptors {
		f, err := ns.Resolve(d.Type())
		if err != nil {
			return nil, err
		}
		factories[i] = f
	}

	instances = make([]any, len(descriptors))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range descriptors {
		factory := factories[i]
		g.Go(func() error {
			instance, err := factory(gctx, d, opts)
			if err != nil {
				return err
			}
			pending.add(instance, func() { opts.revive(d, instance) })
			instances[i] = instance
			scenemetrics.RecordObject(ClassName(d.Type()))
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		// the caller abort takes precedence over child failures
		if abortErr := sceneload.Aborted(ctx); abortErr != nil {
			err = abortErr
		}
	}
	if err != nil {
		return nil, err
	}
	return instances, nil
}

// EnlivenAll enlivens `objects` and the enlivable fields of `props`
// concurrently, as one all-or-nothing unit: if either side fails,
// what the other side built is disposed.
// The reviver only sees `objects`.
func EnlivenAll(ctx context.Context, objects []Descriptor, props Descriptor, opts Options) ([]any, Descriptor, error) {
	var (
		instances []any
		resolved  Descriptor
		built     []any
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		instances, err = enlivenObjects(gctx, objects, opts)
		return err
	})
	g.Go(func() (err error) {
		resolved, built, err = enlivenEnlivables(gctx, props, opts)
		return err
	})
	err := g.Wait()
	if err != nil {
		// the caller abort takes precedence over child failures
		if abortErr := sceneload.Aborted(ctx); abortErr != nil {
			err = abortErr
		}
	}
	if err != nil {
		// each side already cleaned up after its own failure
		for _, instance := range instances {
			Dispose(instance)
		}
		for _, instance := range built {
			Dispose(instance)
		}
		return nil, nil, err
	}
	return instances, resolved, nil
}
