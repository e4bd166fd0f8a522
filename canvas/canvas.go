package canvas

import (
	"image"
	"image/color"

	"github.com/benoitkugler/drawbench/svgpath"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// Common colors.
var (
	White = color.NRGBA{255, 255, 255, 255}
	Black = color.NRGBA{0, 0, 0, 255}
)

// Paint describes how a shape is filled.
type Paint struct {
	Color     color.Color
	AntiAlias bool
}

func (p Paint) color() color.Color {
	if p.Color == nil {
		return color.Black
	}
	return p.Color
}

// Canvas draws into the pixels of a Surface, through
// a current transform matrix (CTM) which may be saved and restored.
type Canvas struct {
	dst *image.RGBA

	ctm   svgpath.Matrix2D
	stack []svgpath.Matrix2D

	scanner *rasterx.ScannerGV
	filler  *rasterx.Filler // we use separated instance
	dasher  *rasterx.Dasher // to avoid shared state
}

func newCanvas(dst *image.RGBA) *Canvas {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Rect)
	return &Canvas{
		dst:     dst,
		ctm:     svgpath.Identity,
		scanner: scanner,
		filler:  rasterx.NewFiller(w, h, scanner),
		dasher:  rasterx.NewDasher(w, h, scanner),
	}
}

// Bounds returns the device rectangle of the canvas.
func (c *Canvas) Bounds() image.Rectangle { return c.dst.Rect }

// Matrix returns the current transform matrix.
func (c *Canvas) Matrix() svgpath.Matrix2D { return c.ctm }

// SetMatrix replaces the current transform matrix.
func (c *Canvas) SetMatrix(m svgpath.Matrix2D) { c.ctm = m }

// Concat applies m in the local coordinates: points are
// transformed by m first, then by the previous CTM.
func (c *Canvas) Concat(m svgpath.Matrix2D) { c.ctm = c.ctm.Mult(m) }

// Translate moves the local origin by (dx, dy).
func (c *Canvas) Translate(dx, dy float64) { c.ctm = c.ctm.Translate(dx, dy) }

// Scale scales the local coordinates.
func (c *Canvas) Scale(sx, sy float64) { c.ctm = c.ctm.Scale(sx, sy) }

// Rotate rotates the local coordinates by rad radians.
func (c *Canvas) Rotate(rad float64) { c.ctm = c.ctm.Rotate(rad) }

// Save pushes the CTM and returns the depth before the push.
func (c *Canvas) Save() int {
	c.stack = append(c.stack, c.ctm)
	return len(c.stack) - 1
}

// SaveCount returns the number of saved, not yet restored, states.
func (c *Canvas) SaveCount() int { return len(c.stack) }

// Restore pops the last saved CTM. It does nothing
// if the stack is empty.
func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.ctm = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// RestoreToCount pops saved states until the depth is count.
func (c *Canvas) RestoreToCount(count int) {
	if count < 0 {
		count = 0
	}
	for len(c.stack) > count {
		c.Restore()
	}
}

// Scope saves the canvas state and returns a guard restoring it.
// The usual pattern is
//
//	defer c.Scope().Exit()
type Scope struct {
	c      *Canvas
	count  int
	exited bool
}

// Scope saves the CTM, see [Scope.Exit].
func (c *Canvas) Scope() *Scope {
	return &Scope{c: c, count: c.Save()}
}

// Exit restores the canvas to its state when the scope was created,
// discarding any nested unbalanced Save. Only the first call has an effect.
func (s *Scope) Exit() {
	if s.exited {
		return
	}
	s.exited = true
	s.c.RestoreToCount(s.count)
}

// Clear fills the whole surface with col, ignoring the CTM.
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.dst, c.dst.Rect, image.NewUniform(col), image.Point{}, draw.Src)
}

// FillPath fills the path, transformed by the CTM,
// using the non-zero winding rule.
func (c *Canvas) FillPath(p svgpath.Path, paint Paint) {
	if len(p) == 0 {
		return
	}
	if !paint.AntiAlias {
		c.fillAliased(p, paint.color())
		return
	}
	c.filler.Clear()
	c.filler.SetWinding(true)
	p.AddTo(c.filler, c.ctm)
	c.filler.SetColor(paint.color())
	c.filler.Draw()
	c.filler.Clear()
}

// fillAliased renders the coverage of the path in a mask,
// which is thresholded before compositing, so that every pixel
// is either fully painted or left untouched.
func (c *Canvas) fillAliased(p svgpath.Path, col color.Color) {
	w, h := c.dst.Rect.Dx(), c.dst.Rect.Dy()
	mask := image.NewAlpha(c.dst.Rect)
	scanner := rasterx.NewScannerGV(w, h, mask, mask.Rect)
	filler := rasterx.NewFiller(w, h, scanner)
	p.AddTo(filler, c.ctm)
	filler.SetColor(color.Opaque)
	filler.Draw()
	for i, a := range mask.Pix {
		if a >= 0x80 {
			mask.Pix[i] = 0xff
		} else {
			mask.Pix[i] = 0
		}
	}
	draw.DrawMask(c.dst, c.dst.Rect, image.NewUniform(col), image.Point{}, mask, mask.Rect.Min, draw.Over)
}
