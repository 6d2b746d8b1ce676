// Loads whole scene documents: a list of objects, plus the
// background and overlay layers and the scene clip path.
package scenedoc

import (
	"context"
	"fmt"

	"github.com/benoitkugler/okscene/scene"
	"github.com/benoitkugler/okscene/sceneshape"
)

// layerKeys are the scene level enlivable fields
var layerKeys = [...]string{"background", "backgroundImage", "overlay", "overlayImage", "clipPath"}

// Scene is a loaded document.
type Scene struct {
	Version string

	Objects []sceneshape.Shape

	Background      scene.Paint // nil when absent
	BackgroundImage sceneshape.Shape
	Overlay         scene.Paint
	OverlayImage    sceneshape.Shape
	ClipPath        sceneshape.Shape
}

// LoadScene builds the scene described by `d`. The objects and the
// layers are enlivened concurrently; the reviver of `opts` is called
// for each top level object only.
// On failure, nothing built is left alive.
func LoadScene(ctx context.Context, d scene.Descriptor, opts scene.Options) (*Scene, error) {
	objects, err := scene.Descriptors(d["objects"])
	if err != nil {
		return nil, fmt.Errorf("invalid scene: field objects: %w", err)
	}
	var out Scene
	if out.Version, err = d.String("version", ""); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}
	for _, key := range d.Keys() {
		if !isSceneKey(key) {
			if err := opts.HandleError(ctx, "scene: unsupported field "+key); err != nil {
				return nil, err
			}
		}
	}

	instances, layers, err := scene.EnlivenAll(ctx, objects, d.Pick(layerKeys[:]...), opts)
	if err != nil {
		return nil, err
	}
	if err := out.setContent(instances, layers); err != nil {
		for _, instance := range instances {
			scene.Dispose(instance)
		}
		for _, v := range layers {
			scene.Dispose(v)
		}
		return nil, fmt.Errorf("invalid scene: %w", err)
	}
	return &out, nil
}

func isSceneKey(key string) bool {
	switch key {
	case "objects", "version":
		return true
	}
	for _, k := range layerKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (sc *Scene) setContent(instances []any, layers scene.Descriptor) (err error) {
	sc.Objects = make([]sceneshape.Shape, len(instances))
	for i, instance := range instances {
		shape, ok := instance.(sceneshape.Shape)
		if !ok {
			return fmt.Errorf("object %d is not a shape but %T", i, instance)
		}
		sc.Objects[i] = shape
	}
	if sc.Background, err = scene.ToPaint(layers["background"]); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if sc.Overlay, err = scene.ToPaint(layers["overlay"]); err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	for _, layer := range [...]struct {
		key string
		dst *sceneshape.Shape
	}{
		{"backgroundImage", &sc.BackgroundImage},
		{"overlayImage", &sc.OverlayImage},
		{"clipPath", &sc.ClipPath},
	} {
		switch v := layers[layer.key].(type) {
		case nil:
		case sceneshape.Shape:
			*layer.dst = v
		default:
			return fmt.Errorf("%s: expected a shape, got %T", layer.key, v)
		}
	}
	return nil
}

// Walk calls `fn` on every object of the scene, in depth first order.
// Top level objects have depth 0.
func (sc *Scene) Walk(fn func(depth int, s sceneshape.Shape)) {
	for _, shape := range sc.Objects {
		fn(0, shape)
		if g, ok := shape.(*sceneshape.Group); ok {
			g.Walk(1, fn)
		}
	}
}

// Dispose releases every object and layer of the scene.
func (sc *Scene) Dispose() {
	for _, shape := range sc.Objects {
		shape.Dispose()
	}
	for _, v := range [...]any{sc.Background, sc.BackgroundImage, sc.Overlay, sc.OverlayImage, sc.ClipPath} {
		scene.Dispose(v)
	}
}
