package scene

import (
	"fmt"
	"math"
)

// Matrix2D represents an SVG style affine transform,
// serialized as the array [A, B, C, D, E, F].
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the neutral transform.
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Mult returns a*b : b is applied first.
func (a Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F,
	}
}

// Translate concatenates a translation.
func (a Matrix2D) Translate(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, 0, 1, x, y})
}

// Scale concatenates a scaling.
func (a Matrix2D) Scale(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{x, 0, 0, y, 0, 0})
}

// Rotate concatenates a rotation of `theta` radians.
func (a Matrix2D) Rotate(theta float64) Matrix2D {
	s, c := math.Sincos(theta)
	return a.Mult(Matrix2D{c, s, -s, c, 0, 0})
}

// SkewX concatenates a skew of `theta` radians along x.
func (a Matrix2D) SkewX(theta float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, math.Tan(theta), 1, 0, 0})
}

// SkewY concatenates a skew of `theta` radians along y.
func (a Matrix2D) SkewY(theta float64) Matrix2D {
	return a.Mult(Matrix2D{1, math.Tan(theta), 0, 1, 0, 0})
}

// Transform applies the matrix to the point (x, y).
func (a Matrix2D) Transform(x, y float64) (float64, float64) {
	return x*a.A + y*a.C + a.E, x*a.B + y*a.D + a.F
}

// MatrixFromValue reads a serialized transform: null gives the Identity,
// otherwise an array of 6 numbers is expected.
func MatrixFromValue(v any) (Matrix2D, error) {
	if v == nil {
		return Identity, nil
	}
	fs, err := ToFloats(v)
	if err != nil {
		return Identity, fmt.Errorf("invalid transform: %w", err)
	}
	if len(fs) != 6 {
		return Identity, fmt.Errorf("invalid transform: expected 6 numbers, got %d", len(fs))
	}
	return Matrix2D{fs[0], fs[1], fs[2], fs[3], fs[4], fs[5]}, nil
}
