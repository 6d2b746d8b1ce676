package sceneshape

import (
	"context"
	"errors"
	"image"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benoitkugler/okscene/scene"
	"github.com/benoitkugler/okscene/sceneload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoader serves blank images, failing for the "missing" url
type fakeLoader struct {
	delay time.Duration
	calls int32
}

func (l *fakeLoader) LoadImage(ctx context.Context, url string, _ sceneload.LoadOptions) (*sceneload.Image, error) {
	atomic.AddInt32(&l.calls, 1)
	select {
	case <-time.After(l.delay):
	case <-ctx.Done():
		return nil, sceneload.Aborted(ctx)
	}
	if url == "missing" {
		return nil, &sceneload.ResourceLoadError{URL: url, Err: errors.New("not found")}
	}
	return sceneload.NewImage(url, image.NewNRGBA(image.Rect(0, 0, 40, 30))), nil
}

func enliven(t *testing.T, opts scene.Options, descriptors ...scene.Descriptor) ([]any, error) {
	t.Helper()
	return scene.EnlivenObjects(context.Background(), descriptors, opts)
}

func enlivenOne(t *testing.T, d scene.Descriptor) Shape {
	t.Helper()
	instances, err := enliven(t, scene.Options{Loader: &fakeLoader{}, ErrorMode: scene.StrictErrorMode}, d)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	shape, ok := instances[0].(Shape)
	require.True(t, ok)
	return shape
}

func TestRegistered(t *testing.T) {
	names := scene.DefaultNamespace.Names()
	for _, class := range []string{"Rect", "Circle", "Ellipse", "Line", "Polyline", "Polygon", "Path", "Group", "Image", "Pattern"} {
		assert.Contains(t, names, class)
	}
}

func TestRect(t *testing.T) {
	shape := enlivenOne(t, scene.Descriptor{
		"type": "rect", "version": "5.3.0",
		"left": 10.0, "top": 20.0, "width": 100.0, "height": 50.0,
		"fill": "#ff0000", "stroke": nil, "strokeWidth": 0.0,
	})
	r, ok := shape.(*Rect)
	require.True(t, ok)
	assert.Equal(t, scene.NewPlainColor(255, 0, 0, 255), r.Fill)
	assert.Nil(t, r.Stroke)
	assert.True(t, r.Visible)

	assert.Equal(t, "M-50.000,-25.000 L50.000,-25.000 L50.000,25.000 L-50.000,25.000 Z", r.Outline().ToSVGPath())
	assert.Equal(t, Box{10, 20, 110, 70}, BoundingBox(r))
}

func TestRoundRect(t *testing.T) {
	r := enlivenOne(t, scene.Descriptor{"type": "rect", "width": 20.0, "height": 10.0, "rx": 100.0}).(*Rect)
	box := r.Outline().Bounds()
	assert.InDelta(t, -10, box.MinX, 0.05)
	assert.InDelta(t, 10, box.MaxX, 0.05)
	assert.InDelta(t, -5, box.MinY, 0.05)
	assert.InDelta(t, 5, box.MaxY, 0.05)
}

func TestTransform(t *testing.T) {
	o := defaultObject()
	o.Left, o.Top, o.Width, o.Height, o.StrokeWidth = 10, 20, 100, 50, 0
	x, y := o.Transform().Transform(0, 0)
	assert.InDelta(t, 60, x, 1e-9)
	assert.InDelta(t, 45, y, 1e-9)

	o.OriginX, o.OriginY = "center", "center"
	x, y = o.Transform().Transform(0, 0)
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 20, y, 1e-9)

	// rotation around the origin point
	o.Angle = 90
	x, y = o.Transform().Transform(50, 0)
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 70, y, 1e-9)

	o.Angle = 0
	o.FlipX, o.ScaleX = true, 2
	x, _ = o.Transform().Transform(50, 0)
	assert.InDelta(t, -90, x, 1e-9)
}

func TestCircle(t *testing.T) {
	c := enlivenOne(t, scene.Descriptor{"type": "circle", "radius": 10.0, "left": 0.0, "top": 0.0, "strokeWidth": 0.0}).(*Circle)
	assert.Equal(t, 20.0, c.Width)
	box := c.Outline().Bounds()
	assert.InDelta(t, -10, box.MinX, 0.05)
	assert.InDelta(t, 10, box.MaxY, 0.05)

	half := enlivenOne(t, scene.Descriptor{"type": "circle", "radius": 10.0, "startAngle": 0.0, "endAngle": 180.0}).(*Circle)
	box = half.Outline().Bounds()
	assert.InDelta(t, 0, box.MinY, 0.05)
	assert.InDelta(t, 10, box.MaxY, 0.05)
	_, isClosed := half.Outline()[len(half.Outline())-1].(Close)
	assert.False(t, isClosed)

	_, err := enliven(t, scene.Options{}, scene.Descriptor{"type": "circle", "radius": -1.0})
	assert.Error(t, err)
}

func TestEllipseAndLine(t *testing.T) {
	e := enlivenOne(t, scene.Descriptor{"type": "ellipse", "rx": 20.0, "ry": 5.0}).(*Ellipse)
	box := e.Outline().Bounds()
	assert.InDelta(t, 40, box.Width(), 0.1)
	assert.InDelta(t, 10, box.Height(), 0.1)

	l := enlivenOne(t, scene.Descriptor{"type": "line", "x1": 0.0, "y1": 0.0, "x2": 10.0, "y2": 20.0}).(*Line)
	assert.Equal(t, 10.0, l.Width)
	assert.Equal(t, "M-5.000,-10.000 L5.000,10.000", l.Outline().ToSVGPath())
}

func TestPolygon(t *testing.T) {
	points := []any{
		map[string]any{"x": 10.0, "y": 10.0},
		map[string]any{"x": 30.0, "y": 10.0},
		map[string]any{"x": 20.0, "y": 30.0},
	}
	pg := enlivenOne(t, scene.Descriptor{"type": "polygon", "points": points, "pathOffset": map[string]any{"x": 0.0, "y": 0.0}}).(*Polyline)
	assert.True(t, pg.Closed)
	assert.Equal(t, [2]float64{20, 20}, pg.PathOffset)
	assert.Equal(t, 20.0, pg.Width)
	assert.Equal(t, "M-10.000,-10.000 L10.000,-10.000 L0.000,10.000 Z", pg.Outline().ToSVGPath())

	pl := enlivenOne(t, scene.Descriptor{"type": "polyline", "points": points}).(*Polyline)
	assert.False(t, pl.Closed)

	_, err := enliven(t, scene.Options{}, scene.Descriptor{"type": "polyline", "points": []any{"10,10"}})
	assert.Error(t, err)
}

func TestSVGPath(t *testing.T) {
	for _, data := range []any{
		"M 0 0 L 10 0 L 10 20 Z",
		[]any{[]any{"M", 0.0, 0.0}, []any{"L", 10.0, 0.0}, []any{"L", 10.0, 20.0}, []any{"Z"}},
	} {
		sp := enlivenOne(t, scene.Descriptor{"type": "path", "path": data}).(*SVGPath)
		assert.Equal(t, [2]float64{5, 10}, sp.PathOffset)
		assert.Equal(t, 10.0, sp.Width)
		assert.Equal(t, 20.0, sp.Height)
		box := sp.Outline().Bounds()
		assert.Equal(t, Box{-5, -10, 5, 10}, box)
	}

	_, err := enliven(t, scene.Options{}, scene.Descriptor{"type": "path", "path": []any{[]any{"M", "a"}}})
	assert.Error(t, err)
}

func TestUnknownFields(t *testing.T) {
	d := scene.Descriptor{"type": "rect", "width": 1.0, "shadow": nil}

	_, err := enliven(t, scene.Options{}, d)
	assert.NoError(t, err)
	_, err = enliven(t, scene.Options{ErrorMode: scene.WarnErrorMode}, d)
	assert.NoError(t, err)
	_, err = enliven(t, scene.Options{ErrorMode: scene.StrictErrorMode}, d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shadow")

	_, err = enliven(t, scene.Options{}, scene.Descriptor{"type": "rect", "width": "wide"})
	assert.Error(t, err)
	_, err = enliven(t, scene.Options{}, scene.Descriptor{"type": "rect", "originX": "middle"})
	assert.Error(t, err)
}

func TestEnlivables(t *testing.T) {
	loader := &fakeLoader{}
	d := scene.Descriptor{
		"type": "rect",
		"fill": map[string]any{
			"type":       "linear",
			"coords":     map[string]any{"x1": 0.0, "y1": 0.0, "x2": 10.0, "y2": 0.0},
			"colorStops": []any{map[string]any{"offset": 0.0, "color": "red"}, map[string]any{"offset": 1.0, "color": "blue"}},
		},
		"stroke":   map[string]any{"source": "pattern.png", "repeat": "repeat-y"},
		"clipPath": map[string]any{"type": "circle", "radius": 5.0},
	}
	instances, err := enliven(t, scene.Options{Loader: loader}, d)
	require.NoError(t, err)
	r := instances[0].(*Rect)

	grad, ok := r.Fill.(*scene.Gradient)
	require.True(t, ok)
	assert.Len(t, grad.Stops, 2)
	pattern, ok := r.Stroke.(*scene.Pattern)
	require.True(t, ok)
	assert.Equal(t, scene.RepeatY, pattern.Repeat)
	clip, ok := r.ClipPath.(*Circle)
	require.True(t, ok)
	assert.Equal(t, 5.0, clip.Radius)

	r.Dispose()
	assert.True(t, pattern.Source.Empty())
	r.Dispose() // idempotent
}

func TestDecodeFailureDisposesEnlivables(t *testing.T) {
	loader := &fakeLoader{}
	var pattern *scene.Pattern
	ns := scene.DefaultNamespace.Clone()
	require.NoError(t, ns.Register("spy-pattern", func(ctx context.Context, d scene.Descriptor, opts scene.Options) (any, error) {
		p, err := scene.PatternFromObject(ctx, d, opts)
		pattern = p
		return p, err
	}))
	d := scene.Descriptor{
		"type":     "rect",
		"width":    "wide",
		"clipPath": map[string]any{"type": "spy-pattern", "source": "a.png"},
	}
	_, err := enliven(t, scene.Options{Loader: loader, Namespace: ns}, d)
	require.Error(t, err)
	require.NotNil(t, pattern)
	assert.True(t, pattern.Source.Empty())
}

func TestGroup(t *testing.T) {
	var revived int32
	opts := scene.Options{
		Loader:  &fakeLoader{},
		Reviver: func(scene.Descriptor, any) { atomic.AddInt32(&revived, 1) },
	}
	d := scene.Descriptor{
		"type": "group", "left": 5.0, "top": 5.0, "width": 100.0, "height": 100.0,
		"objects": []any{
			map[string]any{"type": "rect", "width": 10.0, "height": 10.0},
			map[string]any{"type": "group", "objects": []any{
				map[string]any{"type": "image", "src": "a.png"},
			}},
		},
	}
	instances, err := enliven(t, opts, d)
	require.NoError(t, err)
	g := instances[0].(*Group)
	require.Len(t, g.Objects, 2)
	assert.Nil(t, g.Outline())
	assert.Equal(t, int32(1), revived)

	var visited []string
	g.Walk(0, func(depth int, s Shape) {
		visited = append(visited, s.Base().Type+"@"+string(rune('0'+depth)))
	})
	assert.Equal(t, []string{"rect@0", "group@0", "image@1"}, visited)

	img := g.Objects[1].(*Group).Objects[0].(*Image)
	g.Dispose()
	assert.True(t, img.Source.Empty())
}

func TestGroupFailure(t *testing.T) {
	loader := &fakeLoader{delay: 20 * time.Millisecond}
	d := scene.Descriptor{
		"type": "group",
		"objects": []any{
			map[string]any{"type": "image", "src": "ok.png"},
			map[string]any{"type": "image", "src": "missing"},
		},
	}
	_, err := enliven(t, scene.Options{Loader: loader}, d)
	var loadErr *scene.ResourceLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing", loadErr.URL)

	_, err = enliven(t, scene.Options{}, scene.Descriptor{"type": "group", "objects": []any{map[string]any{"type": "pattern", "source": image.NewNRGBA(image.Rect(0, 0, 1, 1))}}})
	assert.Error(t, err)
}

func TestImage(t *testing.T) {
	loader := &fakeLoader{}
	im := enlivenOne(t, scene.Descriptor{"type": "image", "src": "a.png", "crossOrigin": "anonymous", "cropX": 2.0}).(*Image)
	assert.Equal(t, 40.0, im.Width)
	assert.Equal(t, 30.0, im.Height)
	assert.Equal(t, sceneload.Anonymous, im.CrossOrigin)
	assert.Equal(t, 2.0, im.CropX)

	sized := enlivenOne(t, scene.Descriptor{"type": "image", "src": "a.png", "width": 10.0}).(*Image)
	assert.Equal(t, 10.0, sized.Width)
	assert.Equal(t, 30.0, sized.Height)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	loader.delay = time.Second
	_, err := scene.EnlivenObjects(ctx, []scene.Descriptor{{"type": "image", "src": "a.png"}}, scene.Options{Loader: loader})
	assert.True(t, scene.IsAborted(err))
}

func TestPathBounds(t *testing.T) {
	var p Path
	p.Start(toFixedP(0, 0))
	p.QuadBezier(toFixedP(5, 10), toFixedP(10, 0))
	box := p.Bounds()
	assert.InDelta(t, 5, box.MaxY, 0.05)
	assert.InDelta(t, 10, box.MaxX, 0.05)

	assert.True(t, Path(nil).Bounds().IsEmpty())
	assert.Equal(t, 0.0, EmptyBox.Width())
	assert.Equal(t, Box{0, 0, 2, 2}, EmptyBox.Union(Box{0, 0, 2, 2}))

	moved := p.Transform(scene.Identity.Translate(1, 1))
	assert.InDelta(t, 11, moved.Bounds().MaxX, 0.05)
	assert.False(t, math.IsInf(moved.Bounds().MinX, 0))
}

func TestFixedSaturation(t *testing.T) {
	maxCoord, minCoord := float64(math.MaxInt32)/64, float64(math.MinInt32)/64

	var p Path
	p.Start(toFixedP(0, 0))
	p.Line(toFixedP(1e9, -1e9))
	p.Line(toFixedP(math.NaN(), math.Inf(1)))
	box := p.Bounds()
	assert.Equal(t, Box{0, minCoord, maxCoord, maxCoord}, box)

	// large transformed shapes keep ordered bounds
	big := enlivenOne(t, scene.Descriptor{"type": "rect", "width": 10.0, "height": 10.0, "scaleX": 1e8, "strokeWidth": 0.0}).(*Rect)
	bounds := BoundingBox(big)
	assert.Equal(t, 0.0, bounds.MinX)
	assert.Equal(t, maxCoord, bounds.MaxX)
	assert.Equal(t, 10.0, bounds.MaxY)
}
