package scene

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
)

// GradientUnits is the coordinate system of the gradient coords.
type GradientUnits byte

const (
	UserSpaceOnUse    GradientUnits = iota // "pixels"
	ObjectBoundingBox                      // "percentage"
)

// GradStop represents a color stop of a gradient.
type GradStop struct {
	StopColor color.Color
	Offset    float64
	Opacity   float64
}

// Gradient holds a linear or radial gradient.
type Gradient struct {
	ID        string
	Direction gradientDirecter
	Stops     []GradStop // sorted by Offset
	Units     GradientUnits
	Matrix    Matrix2D // gradientTransform
	OffsetX   float64
	OffsetY   float64
}

// radial or linear
type gradientDirecter interface {
	isRadial() bool
}

// Linear is x1, y1, x2, y2
type Linear [4]float64

func (Linear) isRadial() bool { return false }

// Radial is cx, cy, fx, fy, r, fr : the outer circle (cx, cy, r)
// and the focal circle (fx, fy, fr).
type Radial [6]float64

func (Radial) isRadial() bool { return true }

// IsRadial returns true for radial gradients.
func (g *Gradient) IsRadial() bool {
	return g.Direction != nil && g.Direction.isRadial()
}

// NewGradient builds a gradient from its descriptor :
//
//	{type: "linear" | "radial", coords: {x1, y1, x2, y2, r1, r2},
//	 colorStops: [{offset, color, opacity}], gradientUnits: "pixels" | "percentage",
//	 gradientTransform: [a, b, c, d, e, f], offsetX, offsetY, id}
//
// For radial gradients, (x1, y1, r1) is the focal circle and
// (x2, y2, r2) the outer one.
func NewGradient(d Descriptor) (*Gradient, error) {
	grad := &Gradient{Matrix: Identity}
	var err error
	if grad.ID, err = d.String("id", ""); err != nil {
		return nil, gradientError(err)
	}

	var coords [6]float64 // x1, y1, x2, y2, r1, r2
	if c, ok := AsDescriptor(d["coords"]); ok {
		for i, key := range [...]string{"x1", "y1", "x2", "y2", "r1", "r2"} {
			if coords[i], err = c.Number(key, 0); err != nil {
				return nil, gradientError(err)
			}
		}
	}
	kind, err := d.String("type", "linear")
	if err != nil {
		return nil, gradientError(err)
	}
	switch kind {
	case "linear":
		grad.Direction = Linear{coords[0], coords[1], coords[2], coords[3]}
	case "radial":
		grad.Direction = Radial{coords[2], coords[3], coords[0], coords[1], coords[5], coords[4]}
	default:
		return nil, gradientError(fmt.Errorf("unknown gradient type %q", kind))
	}

	units, err := d.String("gradientUnits", "pixels")
	if err != nil {
		return nil, gradientError(err)
	}
	switch units {
	case "pixels":
		grad.Units = UserSpaceOnUse
	case "percentage":
		grad.Units = ObjectBoundingBox
	default:
		return nil, gradientError(fmt.Errorf("unknown gradient units %q", units))
	}

	if grad.Matrix, err = MatrixFromValue(d["gradientTransform"]); err != nil {
		return nil, gradientError(err)
	}
	if grad.OffsetX, err = d.Number("offsetX", 0); err != nil {
		return nil, gradientError(err)
	}
	if grad.OffsetY, err = d.Number("offsetY", 0); err != nil {
		return nil, gradientError(err)
	}

	if grad.Stops, err = readColorStops(d["colorStops"]); err != nil {
		return nil, gradientError(err)
	}
	return grad, nil
}

func gradientError(err error) error {
	return fmt.Errorf("invalid gradient: %w", err)
}

func readColorStops(v any) ([]GradStop, error) {
	if v == nil {
		return nil, errors.New("colorStops is not an array")
	}
	items, err := Descriptors(v)
	if err != nil {
		return nil, fmt.Errorf("colorStops: %w", err)
	}
	stops := make([]GradStop, len(items))
	for i, stop := range items {
		offset, ok := ToFloat(stop["offset"])
		if !ok {
			return nil, fmt.Errorf("color stop %d: offset is not a number", i)
		}
		colorStr, err := stop.String("color", "black")
		if err != nil {
			return nil, fmt.Errorf("color stop %d: %w", i, err)
		}
		col, err := ParseColor(colorStr)
		if err != nil {
			return nil, fmt.Errorf("color stop %d: %w", i, err)
		}
		opacity, err := stop.Number("opacity", 1)
		if err != nil {
			return nil, fmt.Errorf("color stop %d: %w", i, err)
		}
		stops[i] = GradStop{StopColor: col, Offset: offset, Opacity: opacity}
	}
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].Offset < stops[j].Offset })
	return stops, nil
}
