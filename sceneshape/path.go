package sceneshape

import (
	"fmt"
	"math"
	"strings"

	"github.com/benoitkugler/okscene/scene"
	"golang.org/x/image/math/fixed"
)

// Operation groups the different path commands
type Operation interface {
	// returns the operation with its points mapped by `m`
	transform(m scene.Matrix2D) Operation
}

type MoveTo fixed.Point26_6

type LineTo fixed.Point26_6

type QuadTo [2]fixed.Point26_6

type CubicTo [3]fixed.Point26_6

type Close struct{}

func (op MoveTo) transform(m scene.Matrix2D) Operation {
	return MoveTo(trPoint(m, fixed.Point26_6(op)))
}

func (op LineTo) transform(m scene.Matrix2D) Operation {
	return LineTo(trPoint(m, fixed.Point26_6(op)))
}

func (op QuadTo) transform(m scene.Matrix2D) Operation {
	return QuadTo{trPoint(m, op[0]), trPoint(m, op[1])}
}

func (op CubicTo) transform(m scene.Matrix2D) Operation {
	return CubicTo{trPoint(m, op[0]), trPoint(m, op[1]), trPoint(m, op[2])}
}

func (op Close) transform(scene.Matrix2D) Operation { return op }

// Path describes a sequence of basic operations.
// Every shape but groups reduces to a path, expressed in the
// coordinates of the shape, centered on the origin.
type Path []Operation

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%4.3f,%4.3f", float32(op.X)/64, float32(op.Y)/64)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%4.3f,%4.3f", float32(op.X)/64, float32(op.Y)/64)
		case QuadTo:
			chunks[i] = fmt.Sprintf("Q%4.3f,%4.3f,%4.3f,%4.3f", float32(op[0].X)/64, float32(op[0].Y)/64,
				float32(op[1].X)/64, float32(op[1].Y)/64)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%4.3f,%4.3f,%4.3f,%4.3f,%4.3f,%4.3f", float32(op[0].X)/64, float32(op[0].Y)/64,
				float32(op[1].X)/64, float32(op[1].Y)/64, float32(op[2].X)/64, float32(op[2].Y)/64)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Transform returns a new path, with every point mapped by `m`.
func (p Path) Transform(m scene.Matrix2D) Path {
	out := make(Path, len(p))
	for i, op := range p {
		out[i] = op.transform(m)
	}
	return out
}

// Start starts a new curve at the given point.
func (p *Path) Start(a fixed.Point26_6) {
	*p = append(*p, MoveTo{a.X, a.Y})
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b fixed.Point26_6) {
	*p = append(*p, LineTo{b.X, b.Y})
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c fixed.Point26_6) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d fixed.Point26_6) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// toFixedP converts two floats to a fixed point.
// Coordinates out of the 26.6 range saturate, NaN maps to 0.
func toFixedP(x, y float64) (p fixed.Point26_6) {
	p.X = toFixed(x)
	p.Y = toFixed(y)
	return
}

func toFixed(v float64) fixed.Int26_6 {
	v *= 64
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return fixed.Int26_6(v)
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

func trPoint(m scene.Matrix2D, a fixed.Point26_6) fixed.Point26_6 {
	return toFixedP(m.Transform(fixedTof(a)))
}
