package sceneshape

import (
	"math"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// maxDx is the maximum radians a cubic splice is allowed to span
// in ellipse parametric when approximating an ellipse.
const maxDx float64 = math.Pi / 8

// addRect adds the rectangle (minX, minY) (maxX, maxY).
func (p *Path) addRect(minX, minY, maxX, maxY float64) {
	p.Start(toFixedP(minX, minY))
	p.Line(toFixedP(maxX, minY))
	p.Line(toFixedP(maxX, maxY))
	p.Line(toFixedP(minX, maxY))
	p.Stop(true)
}

// addRoundRect adds a rectangle with elliptical corners of radii rx, ry.
// As in SVG, a zero radius takes the value of the other one,
// and the radii are clamped to half the sides.
func (p *Path) addRoundRect(minX, minY, maxX, maxY, rx, ry float64) {
	if rx <= 0 {
		rx = ry
	}
	if ry <= 0 {
		ry = rx
	}
	if rx <= 0 || ry <= 0 {
		p.addRect(minX, minY, maxX, maxY)
		return
	}
	rx = math.Min(rx, (maxX-minX)/2)
	ry = math.Min(ry, (maxY-minY)/2)

	p.Start(toFixedP(minX+rx, minY))
	p.Line(toFixedP(maxX-rx, minY))
	p.addEllipticArc(maxX-rx, minY+ry, rx, ry, -math.Pi/2, 0)
	p.Line(toFixedP(maxX, maxY-ry))
	p.addEllipticArc(maxX-rx, maxY-ry, rx, ry, 0, math.Pi/2)
	p.Line(toFixedP(minX+rx, maxY))
	p.addEllipticArc(minX+rx, maxY-ry, rx, ry, math.Pi/2, math.Pi)
	p.Line(toFixedP(minX, minY+ry))
	p.addEllipticArc(minX+rx, minY+ry, rx, ry, math.Pi, 3*math.Pi/2)
	p.Stop(true)
}

// addEllipse adds the closed ellipse centered on (cx, cy).
func (p *Path) addEllipse(cx, cy, rx, ry float64) {
	p.Start(toFixedP(ellipsePointAt(rx, ry, 0, 1, 0, cx, cy)))
	p.addEllipticArc(cx, cy, rx, ry, 0, 2*math.Pi)
	p.Stop(true)
}

// addEllipticArc adds the arc of the axis aligned ellipse centered on
// (cx, cy), going from the parametric angle `start` to `end` (radians).
// The current point is expected to be the start of the arc.
func (p *Path) addEllipticArc(cx, cy, rx, ry, start, end float64) {
	deltaEta := end - start
	// Round up to determine number of cubic splines to approximate bezier curve
	segs := int(math.Abs(deltaEta)/maxDx) + 1
	dEta := deltaEta / float64(segs) // span of each segment
	// Approximate the ellipse using a set of cubic bezier curves by the method of
	// L. Maisonobe, "Drawing an elliptical arc using polylines, quadratic
	// or cubic Bezier curves", 2003
	// https://www.spaceroots.org/documents/elllipse/elliptical-arc.pdf
	tde := math.Tan(dEta / 2)
	alpha := math.Sin(dEta) * (math.Sqrt(4+3*tde*tde) - 1) / 3
	lx, ly := ellipsePointAt(rx, ry, 0, 1, start, cx, cy)
	ldx, ldy := ellipsePrime(rx, ry, 0, 1, start, cx, cy)
	for i := 1; i <= segs; i++ {
		eta := start + dEta*float64(i)
		px, py := ellipsePointAt(rx, ry, 0, 1, eta, cx, cy)
		dx, dy := ellipsePrime(rx, ry, 0, 1, eta, cx, cy)
		p.CubeBezier(toFixedP(lx+alpha*ldx, ly+alpha*ldy),
			toFixedP(px-alpha*dx, py-alpha*dy), toFixedP(px, py))
		lx, ly, ldx, ldy = px, py, dx, dy
	}
}

// ellipsePrime gives tangent vectors for parameterized elipse; a, b, radii, eta parameter, center cx, cy
func ellipsePrime(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	bCosEta := b * math.Cos(eta)
	aSinEta := a * math.Sin(eta)
	px = -aSinEta*cosTheta - bCosEta*sinTheta
	py = -aSinEta*sinTheta + bCosEta*cosTheta
	return
}

// ellipsePointAt gives points for parameterized elipse; a, b, radii, eta parameter, center cx, cy
func ellipsePointAt(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	aCosEta := a * math.Cos(eta)
	bSinEta := b * math.Sin(eta)
	px = cx + aCosEta*cosTheta - bSinEta*sinTheta
	py = cy + aCosEta*sinTheta + bSinEta*cosTheta
	return
}

// addPolyline adds the segments joining `points`, (x, y) pairs.
func (p *Path) addPolyline(points []float64, closed bool) {
	if len(points) < 2 {
		return
	}
	p.Start(toFixedP(points[0], points[1]))
	for i := 2; i+1 < len(points); i += 2 {
		p.Line(toFixedP(points[i], points[i+1]))
	}
	p.Stop(closed)
}
