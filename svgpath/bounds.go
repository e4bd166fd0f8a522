package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// exact extent of curves, found by evaluating them at the
// roots of their derivative

type bezier interface {
	// values of t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// point at time t
	evaluate(t float64) (x, y float64)
}

type quadBezier [3]fixed.Point26_6

type cubicBezier [4]fixed.Point26_6

func toFloat(p fixed.Point26_6) (float64, float64) {
	return float64(p.X) / 64, float64(p.Y) / 64
}

// x = At^2 + Bt + C
// with A = p0 + p2 - 2p1, B = 2(p1 - p0), C = p0
func bezierQuad(p0, p1, p2, t float64) float64 {
	return (p0+p2-2*p1)*t*t + 2*(p1-p0)*t + p0
}

// derivative as at + b
func quadDerivative(p0, p1, p2 float64) (a, b float64) {
	return 2 * (p2 - 2*p1 + p0), 2 * (p1 - p0)
}

func linearRoots(a, b float64) []float64 {
	if a == 0 {
		return nil
	}
	return []float64{-b / a}
}

func (cu quadBezier) criticalPoints() (tX, tY []float64) {
	p0x, p0y := toFloat(cu[0])
	p1x, p1y := toFloat(cu[1])
	p2x, p2y := toFloat(cu[2])
	aX, bX := quadDerivative(p0x, p1x, p2x)
	aY, bY := quadDerivative(p0y, p1y, p2y)
	return linearRoots(aX, bX), linearRoots(aY, bY)
}

func (cu quadBezier) evaluate(t float64) (x, y float64) {
	p0x, p0y := toFloat(cu[0])
	p1x, p1y := toFloat(cu[1])
	p2x, p2y := toFloat(cu[2])
	return bezierQuad(p0x, p1x, p2x, t), bezierQuad(p0y, p1y, p2y, t)
}

// x = At^3 + Bt^2 + Ct + D
// with A = p3 - 3p2 + 3p1 - p0, B = 3p2 - 6p1 + 3p0, C = 3p1 - 3p0, D = p0
func bezierCubic(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		p0
}

// derivative as at^2 + bt + c
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		return linearRoots(b, c)
	}
	d := b*b - 4*a*c
	switch {
	case d < 0:
		return nil
	case d == 0:
		return []float64{-b / (2 * a)}
	default:
		sq := math.Sqrt(d)
		return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
	}
}

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	p0x, p0y := toFloat(cu[0])
	p1x, p1y := toFloat(cu[1])
	p2x, p2y := toFloat(cu[2])
	p3x, p3y := toFloat(cu[3])
	aX, bX, cX := cubicDerivative(p0x, p1x, p2x, p3x)
	aY, bY, cY := cubicDerivative(p0y, p1y, p2y, p3y)
	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluate(t float64) (x, y float64) {
	p0x, p0y := toFloat(cu[0])
	p1x, p1y := toFloat(cu[1])
	p2x, p2y := toFloat(cu[2])
	p3x, p3y := toFloat(cu[3])
	return bezierCubic(p0x, p1x, p2x, p3x, t), bezierCubic(p0y, p1y, p2y, p3y, t)
}

// extremaOf calls add with the end points and the extrema of the curve.
func extremaOf(curve bezier, add func(x, y float64)) {
	tX, tY := curve.criticalPoints()
	for _, t := range append(append(tX, 0, 1), tY...) {
		if !(0 <= t && t <= 1) {
			continue
		}
		add(curve.evaluate(t))
	}
}

// Extent returns the smallest rectangle containing the path.
// Contrary to [Path.Bounds], control points outside of the
// curves are not included.
// It returns false for an empty path.
func (p Path) Extent() (fixed.Rectangle26_6, bool) {
	var (
		minX, minY = math.Inf(1), math.Inf(1)
		maxX, maxY = math.Inf(-1), math.Inf(-1)
		current    fixed.Point26_6
	)
	add := func(x, y float64) {
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			current = fixed.Point26_6(op)
			add(toFloat(current))
		case LineTo:
			current = fixed.Point26_6(op)
			add(toFloat(current))
		case QuadTo:
			extremaOf(quadBezier{current, op[0], op[1]}, add)
			current = op[1]
		case CubicTo:
			extremaOf(cubicBezier{current, op[0], op[1], op[2]}, add)
			current = op[2]
		}
	}
	if math.IsInf(minX, 1) {
		return fixed.Rectangle26_6{}, false
	}
	return fixed.Rectangle26_6{Min: ToFixedP(minX, minY), Max: ToFixedP(maxX, maxY)}, true
}
