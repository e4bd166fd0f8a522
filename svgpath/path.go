// Package svgpath implements an abstract representation of
// vector paths, as described by the SVG path mini-language,
// which can then be consumed by a painting driver.
package svgpath

import (
	"fmt"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Operation groups the different path commands
type Operation interface {
	// add itself on the adder `d`, after applying the transform `M`
	drawTo(d rasterx.Adder, M Matrix2D)
	transform(M Matrix2D) Operation
}

type MoveTo fixed.Point26_6

type LineTo fixed.Point26_6

type QuadTo [2]fixed.Point26_6

type CubicTo [3]fixed.Point26_6

type Close struct{}

// starts a new sub-path at the given point.
func (op MoveTo) drawTo(d rasterx.Adder, M Matrix2D) {
	d.Stop(false) // implicit close if currently in path.
	d.Start(M.TFixed(fixed.Point26_6(op)))
}

func (op LineTo) drawTo(d rasterx.Adder, M Matrix2D) {
	d.Line(M.TFixed(fixed.Point26_6(op)))
}

func (op QuadTo) drawTo(d rasterx.Adder, M Matrix2D) {
	d.QuadBezier(M.TFixed(op[0]), M.TFixed(op[1]))
}

func (op CubicTo) drawTo(d rasterx.Adder, M Matrix2D) {
	d.CubeBezier(M.TFixed(op[0]), M.TFixed(op[1]), M.TFixed(op[2]))
}

func (op Close) drawTo(d rasterx.Adder, _ Matrix2D) {
	d.Stop(true)
}

func (op MoveTo) transform(M Matrix2D) Operation {
	return MoveTo(M.TFixed(fixed.Point26_6(op)))
}

func (op LineTo) transform(M Matrix2D) Operation {
	return LineTo(M.TFixed(fixed.Point26_6(op)))
}

func (op QuadTo) transform(M Matrix2D) Operation {
	return QuadTo{M.TFixed(op[0]), M.TFixed(op[1])}
}

func (op CubicTo) transform(M Matrix2D) Operation {
	return CubicTo{M.TFixed(op[0]), M.TFixed(op[1]), M.TFixed(op[2])}
}

func (op Close) transform(Matrix2D) Operation { return op }

// Path describes a sequence of basic path operations.
// Higher-level shapes may be reduced to a path.
type Path []Operation

// AddTo sends the path to q, after applying the transform M.
func (p Path) AddTo(q rasterx.Adder, M Matrix2D) {
	for _, op := range p {
		op.drawTo(q, M)
	}
	q.Stop(false)
}

// Transform returns a new path with M applied to every point.
func (p Path) Transform(M Matrix2D) Path {
	out := make(Path, len(p))
	for i, op := range p {
		out[i] = op.transform(M)
	}
	return out
}

// Bounds returns the extent of the control points of the path,
// which contains the path itself.
// It returns false for an empty path.
func (p Path) Bounds() (fixed.Rectangle26_6, bool) {
	var (
		r     fixed.Rectangle26_6
		first = true
	)
	add := func(pt fixed.Point26_6) {
		if first {
			r.Min, r.Max = pt, pt
			first = false
			return
		}
		r.Min.X, r.Min.Y = min(r.Min.X, pt.X), min(r.Min.Y, pt.Y)
		r.Max.X, r.Max.Y = max(r.Max.X, pt.X), max(r.Max.Y, pt.Y)
	}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			add(fixed.Point26_6(op))
		case LineTo:
			add(fixed.Point26_6(op))
		case QuadTo:
			add(op[0])
			add(op[1])
		case CubicTo:
			add(op[0])
			add(op[1])
			add(op[2])
		}
	}
	return r, !first
}

func fixedString(v fixed.Int26_6) string {
	return fmt.Sprintf("%.3f", float64(v)/64)
}

func pointString(p fixed.Point26_6) string {
	return fixedString(p.X) + "," + fixedString(p.Y)
}

// ToSVGPath returns a string representation of the path,
// in absolute coordinates.
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = "M" + pointString(fixed.Point26_6(op))
		case LineTo:
			chunks[i] = "L" + pointString(fixed.Point26_6(op))
		case QuadTo:
			chunks[i] = "Q" + pointString(op[0]) + " " + pointString(op[1])
		case CubicTo:
			chunks[i] = "C" + pointString(op[0]) + " " + pointString(op[1]) + " " + pointString(op[2])
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

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
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
