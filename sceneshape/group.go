package sceneshape

import (
	"context"
	"fmt"

	"github.com/benoitkugler/okscene/scene"
)

// Group holds child shapes, positioned relatively to its center.
type Group struct {
	Object
	Objects []Shape
}

// newGroup builds the children concurrently with the group enlivables.
// The caller reviver only sees top level objects.
func newGroup(ctx context.Context, d scene.Descriptor, opts scene.Options) (any, error) {
	children, err := scene.Descriptors(d["objects"])
	if err != nil {
		return nil, fmt.Errorf("group: field objects: %w", err)
	}
	props := make(scene.Descriptor, len(d))
	for k, v := range d {
		if k != "objects" {
			props[k] = v
		}
	}

	nested := opts
	nested.Reviver = nil
	instances, props, err := scene.EnlivenAll(ctx, children, props, nested)
	if err != nil {
		return nil, err
	}

	g := &Group{Object: defaultObject(), Objects: make([]Shape, len(instances))}
	for i, instance := range instances {
		shape, ok := instance.(Shape)
		if !ok {
			err = fmt.Errorf("group: object %d (%s) is not a shape", i, children[i].Type())
			break
		}
		g.Objects[i] = shape
	}
	if err == nil {
		err = decode(ctx, props, opts, g)
	}
	if err != nil {
		for _, instance := range instances {
			scene.Dispose(instance)
		}
		disposeValues(props)
		return nil, err
	}
	return g, nil
}

// Outline is nil for groups.
func (g *Group) Outline() Path { return nil }

// Dispose releases the children, then the group resources.
func (g *Group) Dispose() {
	g.dispose(func() {
		for _, child := range g.Objects {
			child.Dispose()
		}
	})
}

// Walk calls `fn` on the group children, recursively, in depth first order.
func (g *Group) Walk(depth int, fn func(depth int, s Shape)) {
	for _, child := range g.Objects {
		fn(depth, child)
		if sub, ok := child.(*Group); ok {
			sub.Walk(depth+1, fn)
		}
	}
}
