package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/benoitkugler/drawbench/svgpath"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// FilterMode selects the interpolation used when sampling images.
type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// MipmapMode selects how pre-reduced copies of an image are used
// when it is drawn scaled down.
type MipmapMode uint8

const (
	MipmapNone    MipmapMode = iota
	MipmapNearest            // use the closest level
	MipmapLinear             // blend the two closest levels
)

// Sampling groups the image sampling options.
type Sampling struct {
	Filter FilterMode
	Mipmap MipmapMode
}

// Rect is a rectangle in local (user) coordinates.
type Rect struct {
	X, Y, W, H float64
}

// RectFromImage returns the float equivalent of r.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{X: float64(r.Min.X), Y: float64(r.Min.Y), W: float64(r.Dx()), H: float64(r.Dy())}
}

func (f FilterMode) interpolator() draw.Interpolator {
	if f == FilterLinear {
		return draw.BiLinear
	}
	return draw.NearestNeighbor
}

// DrawImageRect draws the src region of img into the dst rectangle,
// expressed in local coordinates, so that the CTM applies.
// The alpha of paint.Color, if any, modulates the image.
func (c *Canvas) DrawImageRect(img image.Image, src image.Rectangle, dst Rect, sampling Sampling, paint Paint) {
	src = src.Intersect(img.Bounds())
	if src.Empty() || dst.W <= 0 || dst.H <= 0 {
		return
	}
	// maps the 0-based src region to the device
	m0 := c.ctm.Translate(dst.X, dst.Y).Scale(dst.W/float64(src.Dx()), dst.H/float64(src.Dy()))

	opts := &draw.Options{}
	if paint.Color != nil {
		if _, _, _, a := paint.Color.RGBA(); a < 0xffff {
			opts.SrcMask = image.NewUniform(color.Alpha16{A: uint16(a)})
		}
	}
	interp := sampling.Filter.interpolator()

	sx, sy := m0.ScaleFactors()
	level, frac := mipLevel(math.Max(sx, sy), sampling.Mipmap)
	if level == 0 && frac == 0 {
		m := m0.Translate(-float64(src.Min.X), -float64(src.Min.Y))
		interp.Transform(c.dst, toAff3(m), img, src, draw.Over, opts)
		return
	}

	chain := buildMipmaps(img, src, level+1)
	if level >= len(chain) {
		level, frac = len(chain)-1, 0
	}
	lvl := chain[level]
	if frac > 0 && level+1 < len(chain) {
		lvl = blendLevels(lvl, chain[level+1], frac)
	}
	lb := lvl.Bounds()
	m := m0.Scale(float64(src.Dx())/float64(lb.Dx()), float64(src.Dy())/float64(lb.Dy()))
	interp.Transform(c.dst, toAff3(m), lvl, lb, draw.Over, opts)
}

func toAff3(m svgpath.Matrix2D) f64.Aff3 {
	return f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
}

// mipLevel returns the mip level to use for the given scale, and
// for MipmapLinear, the blend factor toward the next (smaller) level.
// Level n is the image reduced 2^n times.
func mipLevel(scale float64, mode MipmapMode) (level int, frac float64) {
	if mode == MipmapNone || scale <= 0 || scale >= 1 {
		return 0, 0
	}
	l := math.Log2(1 / scale)
	switch mode {
	case MipmapNearest:
		return int(math.Round(l)), 0
	default:
		fl := math.Floor(l)
		return int(fl), l - fl
	}
}

// buildMipmaps returns up to n+1 levels of the src region
// of img, each one half the size of the previous one.
// The reduction stops at 1x1 pixel.
func buildMipmaps(img image.Image, src image.Rectangle, n int) []*image.RGBA {
	base := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Draw(base, base.Rect, img, src.Min, draw.Src)
	chain := []*image.RGBA{base}
	for len(chain) <= n {
		prev := chain[len(chain)-1]
		w, h := prev.Rect.Dx(), prev.Rect.Dy()
		if w == 1 && h == 1 {
			break
		}
		next := image.NewRGBA(image.Rect(0, 0, max(1, w/2), max(1, h/2)))
		draw.BiLinear.Scale(next, next.Rect, prev, prev.Rect, draw.Src, nil)
		chain = append(chain, next)
	}
	return chain
}

// blendLevels returns (1-t)*a + t*b, b being resized to the size of a.
func blendLevels(a, b *image.RGBA, t float64) *image.RGBA {
	up := image.NewRGBA(a.Rect)
	draw.BiLinear.Scale(up, up.Rect, b, b.Rect, draw.Src, nil)
	out := image.NewRGBA(a.Rect)
	for i := range out.Pix {
		out.Pix[i] = uint8(math.Round((1-t)*float64(a.Pix[i]) + t*float64(up.Pix[i])))
	}
	return out
}
