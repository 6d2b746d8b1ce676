package sceneshape

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/okscene/scene"
	"github.com/srwiley/oksvg"
)

func init() {
	for typeTag, f := range map[string]scene.Factory{
		"rect":     shapeFactory(func() Shape { return &Rect{Object: defaultObject()} }),
		"circle":   shapeFactory(newCircle),
		"ellipse":  shapeFactory(func() Shape { return &Ellipse{Object: defaultObject()} }),
		"line":     shapeFactory(func() Shape { return &Line{Object: defaultObject()} }),
		"polyline": shapeFactory(func() Shape { return &Polyline{Object: defaultObject()} }),
		"polygon":  shapeFactory(func() Shape { return &Polyline{Object: defaultObject(), Closed: true} }),
		"path":     shapeFactory(func() Shape { return &SVGPath{Object: defaultObject()} }),
		"group":    newGroup,
		"image":    newImage,
	} {
		scene.DefaultNamespace.MustRegister(typeTag, f)
	}
}

// shapeFactory resolves the enlivable fields, then decodes
// the descriptor into a new shape.
func shapeFactory(newShape func() Shape) scene.Factory {
	return func(ctx context.Context, d scene.Descriptor, opts scene.Options) (any, error) {
		props, err := scene.EnlivenEnlivables(ctx, d, opts)
		if err != nil {
			return nil, err
		}
		s := newShape()
		if err := decode(ctx, props, opts, s); err != nil {
			disposeValues(props)
			return nil, err
		}
		return s, nil
	}
}

// decode reads every field of `d` into `s`.
// Unknown fields are handled according to opts.ErrorMode.
func decode(ctx context.Context, d scene.Descriptor, opts scene.Options, s Shape) error {
	for _, key := range d.Keys() {
		ok, err := s.readField(key, d[key])
		if err != nil {
			return fmt.Errorf("%s: field %s: %w", d.Type(), key, err)
		}
		if !ok {
			if err := opts.HandleError(ctx, fmt.Sprintf("%s: unsupported field %s", d.Type(), key)); err != nil {
				return err
			}
		}
	}
	if p, ok := s.(interface{ finish() error }); ok {
		if err := p.finish(); err != nil {
			return fmt.Errorf("%s: %w", d.Type(), err)
		}
	}
	return nil
}

// disposeValues releases the live instances of an enlivened descriptor.
func disposeValues(d scene.Descriptor) {
	for _, v := range d {
		scene.Dispose(v)
	}
}

// Rect is a rectangle, with optional rounded corners.
type Rect struct {
	Object
	Rx, Ry float64
}

func (r *Rect) readField(key string, v any) (bool, error) {
	switch key {
	case "rx":
		return true, setNumber(&r.Rx, v)
	case "ry":
		return true, setNumber(&r.Ry, v)
	}
	return r.Object.readField(key, v)
}

func (r *Rect) Outline() Path {
	var p Path
	w, h := r.Width/2, r.Height/2
	p.addRoundRect(-w, -h, w, h, r.Rx, r.Ry)
	return p
}

// Circle is a circle, or an arc of circle.
type Circle struct {
	Object
	Radius float64
	// StartAngle and EndAngle delimit the arc, in degrees
	StartAngle, EndAngle float64
}

func newCircle() Shape {
	return &Circle{Object: defaultObject(), EndAngle: 360}
}

func (c *Circle) readField(key string, v any) (bool, error) {
	switch key {
	case "radius":
		return true, setNumber(&c.Radius, v)
	case "startAngle":
		return true, setNumber(&c.StartAngle, v)
	case "endAngle":
		return true, setNumber(&c.EndAngle, v)
	}
	return c.Object.readField(key, v)
}

// finish derives the size from the radius
func (c *Circle) finish() error {
	if c.Radius < 0 {
		return fmt.Errorf("negative radius %g", c.Radius)
	}
	c.Width, c.Height = 2*c.Radius, 2*c.Radius
	return nil
}

func (c *Circle) Outline() Path {
	var p Path
	sweep := c.EndAngle - c.StartAngle
	if math.Abs(sweep) >= 360 {
		p.addEllipse(0, 0, c.Radius, c.Radius)
		return p
	}
	// arcs are drawn clockwise
	if sweep < 0 {
		sweep += 360
	}
	start := c.StartAngle * math.Pi / 180
	p.Start(toFixedP(c.Radius*math.Cos(start), c.Radius*math.Sin(start)))
	p.addEllipticArc(0, 0, c.Radius, c.Radius, start, start+sweep*math.Pi/180)
	return p
}

// Ellipse is an axis aligned ellipse.
type Ellipse struct {
	Object
	Rx, Ry float64
}

func (e *Ellipse) readField(key string, v any) (bool, error) {
	switch key {
	case "rx":
		return true, setNumber(&e.Rx, v)
	case "ry":
		return true, setNumber(&e.Ry, v)
	}
	return e.Object.readField(key, v)
}

func (e *Ellipse) finish() error {
	if e.Rx < 0 || e.Ry < 0 {
		return fmt.Errorf("negative radius (%g, %g)", e.Rx, e.Ry)
	}
	e.Width, e.Height = 2*e.Rx, 2*e.Ry
	return nil
}

func (e *Ellipse) Outline() Path {
	var p Path
	if e.Rx == 0 || e.Ry == 0 { // not drawn, but not an error
		return p
	}
	p.addEllipse(0, 0, e.Rx, e.Ry)
	return p
}

// Line is a segment.
type Line struct {
	Object
	X1, Y1, X2, Y2 float64
}

func (l *Line) readField(key string, v any) (bool, error) {
	switch key {
	case "x1":
		return true, setNumber(&l.X1, v)
	case "y1":
		return true, setNumber(&l.Y1, v)
	case "x2":
		return true, setNumber(&l.X2, v)
	case "y2":
		return true, setNumber(&l.Y2, v)
	}
	return l.Object.readField(key, v)
}

func (l *Line) finish() error {
	l.Width, l.Height = math.Abs(l.X2-l.X1), math.Abs(l.Y2-l.Y1)
	return nil
}

func (l *Line) Outline() Path {
	var p Path
	cx, cy := (l.X1+l.X2)/2, (l.Y1+l.Y2)/2
	p.Start(toFixedP(l.X1-cx, l.Y1-cy))
	p.Line(toFixedP(l.X2-cx, l.Y2-cy))
	return p
}

// Polyline is a sequence of segments, closed for polygons.
type Polyline struct {
	Object
	Points []float64 // x, y pairs
	Closed bool
	// PathOffset is the center of the points bounding box,
	// mapped to the shape origin.
	PathOffset [2]float64
}

func (pl *Polyline) readField(key string, v any) (bool, error) {
	switch key {
	case "points":
		pts, err := readPoints(v)
		if err != nil {
			return true, err
		}
		pl.Points = pts
		return true, nil
	case "pathOffset":
		// recomputed from the points
		return true, nil
	}
	return pl.Object.readField(key, v)
}

func (pl *Polyline) finish() error {
	var p Path
	p.addPolyline(pl.Points, false)
	box := p.Bounds()
	if box.IsEmpty() {
		return nil
	}
	pl.PathOffset = [2]float64{(box.MinX + box.MaxX) / 2, (box.MinY + box.MaxY) / 2}
	pl.Width, pl.Height = box.Width(), box.Height()
	return nil
}

func (pl *Polyline) Outline() Path {
	var p Path
	p.addPolyline(pl.Points, pl.Closed)
	return p.Transform(scene.Identity.Translate(-pl.PathOffset[0], -pl.PathOffset[1]))
}

// readPoints accepts [{x, y}, ...]
func readPoints(v any) ([]float64, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array of points, got %T", v)
	}
	out := make([]float64, 0, 2*len(items))
	for i, item := range items {
		pt, ok := scene.AsDescriptor(item)
		if !ok {
			return nil, fmt.Errorf("point %d is not an object", i)
		}
		x, err := pt.Number("x", 0)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		y, err := pt.Number("y", 0)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out = append(out, x, y)
	}
	return out, nil
}

// SVGPath is an arbitrary path, given with the SVG path syntax.
type SVGPath struct {
	Object
	Data       Path // in source coordinates
	PathOffset [2]float64
}

func (sp *SVGPath) readField(key string, v any) (bool, error) {
	switch key {
	case "path":
		data, err := compilePathData(v)
		if err != nil {
			return true, err
		}
		sp.Data = data
		return true, nil
	case "pathOffset":
		return true, nil
	}
	return sp.Object.readField(key, v)
}

func (sp *SVGPath) finish() error {
	box := sp.Data.Bounds()
	if box.IsEmpty() {
		return nil
	}
	sp.PathOffset = [2]float64{(box.MinX + box.MaxX) / 2, (box.MinY + box.MaxY) / 2}
	sp.Width, sp.Height = box.Width(), box.Height()
	return nil
}

func (sp *SVGPath) Outline() Path {
	return sp.Data.Transform(scene.Identity.Translate(-sp.PathOffset[0], -sp.PathOffset[1]))
}

// compilePathData accepts SVG path data, or its
// segmented form [["M", x, y], ["L", x, y], ...].
func compilePathData(v any) (Path, error) {
	var data string
	switch v := v.(type) {
	case string:
		data = v
	case []any:
		var err error
		if data, err = joinPathCommands(v); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("expected path data, got %T", v)
	}
	var cursor oksvg.PathCursor
	if err := cursor.CompilePath(data); err != nil {
		return nil, err
	}
	var p Path
	cursor.Path.AddTo(&p)
	return p, nil
}

func joinPathCommands(commands []any) (string, error) {
	var sb strings.Builder
	for i, command := range commands {
		items, ok := command.([]any)
		if !ok || len(items) == 0 {
			return "", fmt.Errorf("path command %d is not an array", i)
		}
		letter, ok := items[0].(string)
		if !ok || len(letter) != 1 {
			return "", fmt.Errorf("path command %d: invalid command %v", i, items[0])
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(letter)
		for _, arg := range items[1:] {
			f, ok := scene.ToFloat(arg)
			if !ok {
				return "", fmt.Errorf("path command %d: expected a number, got %T", i, arg)
			}
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
		}
	}
	return sb.String(), nil
}
