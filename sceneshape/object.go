// Concrete scene objects (rectangles, circles, paths, groups, images...),
// registered into scene.DefaultNamespace on initialization.
//
// Each factory resolves the enlivable fields of its descriptor
// (gradients, patterns, clip paths) with scene.EnlivenEnlivables,
// then decodes the remaining fields into the shape.
package sceneshape

import (
	"fmt"
	"math"
	"sync"

	"github.com/benoitkugler/okscene/scene"
)

// Shape is implemented by every object built by this package.
type Shape interface {
	scene.Disposer
	// Base returns the properties shared by every shape.
	Base() *Object
	// Outline returns the geometry of the shape, in its own coordinates
	// (see Object.Transform). It is nil for groups.
	Outline() Path

	// readField decodes one descriptor field, returning false
	// for unknown fields.
	readField(key string, v any) (bool, error)
}

// Object holds the properties shared by every shape.
// Angles are in degrees.
type Object struct {
	Type string

	Left, Top     float64
	Width, Height float64

	ScaleX, ScaleY float64
	Angle          float64
	SkewX, SkewY   float64
	FlipX, FlipY   bool

	// OriginX is one of left, center, right ;
	// OriginY one of top, center, bottom.
	OriginX, OriginY string

	Opacity float64
	Visible bool

	Fill   scene.Paint // nil for no filling
	Stroke scene.Paint // nil for no stroking

	StrokeWidth      float64
	StrokeDashArray  []float64
	StrokeLineCap    string
	StrokeLineJoin   string
	StrokeMiterLimit float64
	FillRule         string

	ClipPath Shape

	disposeOnce sync.Once
}

// defaultObject returns the properties of an object
// with an empty descriptor.
func defaultObject() Object {
	return Object{
		ScaleX:           1,
		ScaleY:           1,
		OriginX:          "left",
		OriginY:          "top",
		Opacity:          1,
		Visible:          true,
		Fill:             scene.NewPlainColor(0, 0, 0, 0xff),
		StrokeWidth:      1,
		StrokeLineCap:    "butt",
		StrokeLineJoin:   "miter",
		StrokeMiterLimit: 4,
		FillRule:         "nonzero",
	}
}

func (o *Object) Base() *Object { return o }

// readField decodes the common fields
func (o *Object) readField(key string, v any) (bool, error) {
	var err error
	switch key {
	case "type":
		err = setString(&o.Type, v)
	case "version":
		// informative only
	case "left":
		err = setNumber(&o.Left, v)
	case "top":
		err = setNumber(&o.Top, v)
	case "width":
		err = setNumber(&o.Width, v)
	case "height":
		err = setNumber(&o.Height, v)
	case "scaleX":
		err = setNumber(&o.ScaleX, v)
	case "scaleY":
		err = setNumber(&o.ScaleY, v)
	case "angle":
		err = setNumber(&o.Angle, v)
	case "skewX":
		err = setNumber(&o.SkewX, v)
	case "skewY":
		err = setNumber(&o.SkewY, v)
	case "flipX":
		err = setBool(&o.FlipX, v)
	case "flipY":
		err = setBool(&o.FlipY, v)
	case "originX":
		if err = setString(&o.OriginX, v); err == nil {
			_, err = originFraction(o.OriginX)
		}
	case "originY":
		if err = setString(&o.OriginY, v); err == nil {
			_, err = originFraction(o.OriginY)
		}
	case "opacity":
		err = setNumber(&o.Opacity, v)
	case "visible":
		err = setBool(&o.Visible, v)
	case "fill":
		o.Fill, err = scene.ToPaint(v)
	case "stroke":
		o.Stroke, err = scene.ToPaint(v)
	case "strokeWidth":
		err = setNumber(&o.StrokeWidth, v)
	case "strokeDashArray":
		if v != nil {
			o.StrokeDashArray, err = scene.ToFloats(v)
		}
	case "strokeLineCap":
		err = setString(&o.StrokeLineCap, v)
	case "strokeLineJoin":
		err = setString(&o.StrokeLineJoin, v)
	case "strokeMiterLimit":
		err = setNumber(&o.StrokeMiterLimit, v)
	case "fillRule":
		err = setString(&o.FillRule, v)
	case "clipPath":
		switch v := v.(type) {
		case nil:
		case Shape:
			o.ClipPath = v
		default:
			err = fmt.Errorf("expected a shape, got %T", v)
		}
	default:
		return false, nil
	}
	return true, err
}

// Dispose releases the patterns and the clip path.
// Only the first call has an effect.
func (o *Object) Dispose() { o.dispose(nil) }

// dispose runs `own` then releases the common resources, once.
func (o *Object) dispose(own func()) {
	o.disposeOnce.Do(func() {
		if own != nil {
			own()
		}
		scene.Dispose(o.Fill)
		scene.Dispose(o.Stroke)
		if o.ClipPath != nil {
			o.ClipPath.Dispose()
		}
	})
}

// originFraction maps an origin keyword to its position
// in the bounding box, 0 being the left (or top) side.
func originFraction(origin string) (float64, error) {
	switch origin {
	case "left", "top":
		return 0, nil
	case "center":
		return 0.5, nil
	case "right", "bottom":
		return 1, nil
	}
	return 0, fmt.Errorf("invalid origin %q", origin)
}

// Transform returns the matrix mapping the shape coordinates (where
// the outline is centered on the origin) to its parent coordinates.
// The shape is scaled, skewed and flipped, then rotated around
// its center, and finally moved so that its origin point lies at (Left, Top).
func (o *Object) Transform() scene.Matrix2D {
	ox, _ := originFraction(o.OriginX)
	oy, _ := originFraction(o.OriginY)

	sx, sy := o.ScaleX, o.ScaleY
	if o.FlipX {
		sx = -sx
	}
	if o.FlipY {
		sy = -sy
	}
	dims := scene.Identity.Scale(sx, sy)
	if o.SkewX != 0 {
		dims = dims.SkewX(o.SkewX * math.Pi / 180)
	}
	if o.SkewY != 0 {
		dims = dims.SkewY(o.SkewY * math.Pi / 180)
	}

	// the stroke is part of the box the origin refers to
	w, h := o.Width+o.StrokeWidth, o.Height+o.StrokeWidth
	rotation := scene.Identity.Rotate(o.Angle * math.Pi / 180)
	// from the origin point to the center, in rotated space
	dx, dy := rotation.Mult(dims).Transform((0.5-ox)*w, (0.5-oy)*h)
	return scene.Identity.Translate(o.Left+dx, o.Top+dy).Mult(rotation).Mult(dims)
}

// BoundingBox returns the bounds of the shape in its parent coordinates.
func BoundingBox(s Shape) Box {
	m := s.Base().Transform()
	if outline := s.Outline(); outline != nil {
		return outline.Transform(m).Bounds()
	}
	o := s.Base()
	var box Path
	box.addRect(-o.Width/2, -o.Height/2, o.Width/2, o.Height/2)
	return box.Transform(m).Bounds()
}

func setNumber(dst *float64, v any) error {
	if v == nil {
		return nil
	}
	f, ok := scene.ToFloat(v)
	if !ok {
		return fmt.Errorf("expected a number, got %T", v)
	}
	*dst = f
	return nil
}

func setString(dst *string, v any) error {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", v)
	}
	*dst = s
	return nil
}

func setBool(dst *bool, v any) error {
	if v == nil {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return fmt.Errorf("expected a boolean, got %T", v)
	}
	*dst = b
	return nil
}
