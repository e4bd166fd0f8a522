package canvas

import (
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/benoitkugler/drawbench/svgdoc"
	"github.com/benoitkugler/drawbench/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{255, 0, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func newTestSurface(t *testing.T, w, h int) *Surface {
	t.Helper()
	s, err := NewSurface(w, h)
	require.NoError(t, err)
	s.Canvas().Clear(white)
	return s
}

func pixel(s *Surface, x, y int) color.RGBA { return s.img.RGBAAt(x, y) }

// assertNear compares colors, allowing rounding differences
func assertNear(t *testing.T, want, got color.RGBA, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 2, msgAndArgs...)
	assert.InDelta(t, want.G, got.G, 2, msgAndArgs...)
	assert.InDelta(t, want.B, got.B, 2, msgAndArgs...)
	assert.InDelta(t, want.A, got.A, 2, msgAndArgs...)
}

func rectPath(x0, y0, x1, y1 float64) svgpath.Path {
	var p svgpath.Path
	p.AddRect(x0, y0, x1, y1, 0)
	return p
}

func TestNewSurface(t *testing.T) {
	s, err := NewSurface(30, 20)
	require.NoError(t, err)
	assert.Equal(t, 30, s.Width())
	assert.Equal(t, 20, s.Height())
	assert.Equal(t, image.Rect(0, 0, 30, 20), s.Bounds())
	assert.Equal(t, color.RGBA{}, pixel(s, 5, 5)) // transparent
	assert.Same(t, s.Canvas(), s.Canvas())

	for _, size := range [][2]int{{0, 10}, {10, 0}, {-1, 10}, {1 << 16, 1 << 15}} {
		_, err := NewSurface(size[0], size[1])
		assert.True(t, errors.Is(err, ErrSurfaceSize), "%v", size)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := newTestSurface(t, 4, 4)
	snap := s.Snapshot()
	s.Canvas().Clear(black)
	assert.Equal(t, white, snap.RGBAAt(1, 1))
	assert.Equal(t, black, pixel(s, 1, 1))
}

func TestSaveRestore(t *testing.T) {
	s := newTestSurface(t, 10, 10)
	c := s.Canvas()

	c.Restore() // no-op on an empty stack
	assert.Equal(t, 0, c.SaveCount())

	assert.Equal(t, 0, c.Save())
	c.Translate(5, 5)
	assert.Equal(t, 1, c.Save())
	c.Scale(2, 2)
	c.Save()
	assert.Equal(t, 3, c.SaveCount())

	c.RestoreToCount(1)
	assert.Equal(t, 1, c.SaveCount())
	assert.Equal(t, svgpath.Identity.Translate(5, 5), c.Matrix())

	c.Restore()
	assert.True(t, c.Matrix().IsIdentity())
}

func TestScopeNesting(t *testing.T) {
	c := newTestSurface(t, 10, 10).Canvas()

	outer := c.Scope()
	c.Translate(1, 2)
	inner := c.Scope()
	c.Scale(3, 3)
	c.Save() // unbalanced, discarded by the scope
	inner.Exit()
	assert.Equal(t, svgpath.Identity.Translate(1, 2), c.Matrix())
	inner.Exit() // idempotent
	assert.Equal(t, svgpath.Identity.Translate(1, 2), c.Matrix())
	outer.Exit()
	assert.True(t, c.Matrix().IsIdentity())
	assert.Equal(t, 0, c.SaveCount())
}

func TestScopeRestoresOnPanic(t *testing.T) {
	c := newTestSurface(t, 10, 10).Canvas()
	assert.Panics(t, func() {
		defer c.Scope().Exit()
		c.Translate(100, 100)
		panic("boom")
	})
	assert.True(t, c.Matrix().IsIdentity())
	assert.Equal(t, 0, c.SaveCount())
}

func TestTransformsPostMultiply(t *testing.T) {
	c := newTestSurface(t, 10, 10).Canvas()
	c.Translate(12, 12)
	c.Scale(0.5, 0.5)
	x, y := c.Matrix().Transform(10, 20)
	assert.InDelta(t, 17, x, 1e-9)
	assert.InDelta(t, 22, y, 1e-9)

	c.SetMatrix(svgpath.Identity)
	c.Rotate(math.Pi / 2)
	x, y = c.Matrix().Transform(1, 0)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)

	c.SetMatrix(svgpath.Identity)
	c.Concat(svgpath.Identity.Translate(3, 4))
	x, y = c.Matrix().Transform(0, 0)
	assert.InDelta(t, 3, x, 1e-9)
	assert.InDelta(t, 4, y, 1e-9)
}

func TestFillPath(t *testing.T) {
	s := newTestSurface(t, 40, 40)
	c := s.Canvas()
	c.Translate(10, 10)
	c.FillPath(rectPath(0, 0, 10, 10), Paint{Color: red, AntiAlias: true})

	assertNear(t, red, pixel(s, 15, 15))
	assert.Equal(t, white, pixel(s, 5, 5))
	assert.Equal(t, white, pixel(s, 25, 25))

	// empty path: nothing happens
	c.FillPath(nil, Paint{Color: red, AntiAlias: true})
}

func TestFillPathAliased(t *testing.T) {
	s := newTestSurface(t, 40, 40)
	var p svgpath.Path
	p.AddEllipse(20, 20, 13.3, 9.7)
	s.Canvas().FillPath(p, Paint{Color: black})

	painted := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			px := pixel(s, x, y)
			require.True(t, px == white || px == black, "partial coverage at (%d,%d): %v", x, y, px)
			if px == black {
				painted++
			}
		}
	}
	// close to the ellipse area
	assert.InDelta(t, math.Pi*13.3*9.7, painted, 40)
}

func TestClearIgnoresMatrix(t *testing.T) {
	s := newTestSurface(t, 8, 8)
	c := s.Canvas()
	c.Translate(4, 4)
	c.Scale(0.1, 0.1)
	c.Clear(blue)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			require.Equal(t, blue, pixel(s, x, y))
		}
	}
}

func uniformImage(w, h int, col color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, col)
		}
	}
	return img
}

func TestDrawImageRect(t *testing.T) {
	img := uniformImage(200, 200, red)
	full := RectFromImage(img.Bounds())
	for _, sampling := range []Sampling{
		{FilterNearest, MipmapNone},
		{FilterLinear, MipmapNone},
		{FilterLinear, MipmapNearest},
		{FilterLinear, MipmapLinear},
	} {
		s := newTestSurface(t, 64, 64)
		c := s.Canvas()
		c.Translate(20, 20)
		c.Scale(0.05, 0.05) // 10x10 pixels on the device
		c.DrawImageRect(img, img.Bounds(), full, sampling, Paint{AntiAlias: true})

		assertNear(t, red, pixel(s, 25, 25), "%v", sampling)
		assert.Equal(t, white, pixel(s, 10, 10), "%v", sampling)
		assert.Equal(t, white, pixel(s, 40, 40), "%v", sampling)
	}
}

func TestDrawImageRectOpacity(t *testing.T) {
	img := uniformImage(10, 10, black)
	s := newTestSurface(t, 10, 10)
	s.Canvas().DrawImageRect(img, img.Bounds(), RectFromImage(img.Bounds()),
		Sampling{Filter: FilterNearest}, Paint{Color: color.NRGBA{A: 128}})
	px := pixel(s, 5, 5)
	assert.InDelta(t, 127, int(px.R), 2)
	assert.Equal(t, uint8(255), px.A)
}

func TestMipLevel(t *testing.T) {
	l, f := mipLevel(0.05, MipmapLinear)
	assert.Equal(t, 4, l)
	assert.InDelta(t, math.Log2(20)-4, f, 1e-9)

	l, f = mipLevel(0.05, MipmapNearest)
	assert.Equal(t, 4, l)
	assert.Zero(t, f)

	l, _ = mipLevel(0.05, MipmapNone)
	assert.Zero(t, l)
	l, _ = mipLevel(2, MipmapLinear)
	assert.Zero(t, l)

	chain := buildMipmaps(uniformImage(5, 3, red), image.Rect(0, 0, 5, 3), 10)
	last := chain[len(chain)-1]
	assert.Equal(t, image.Rect(0, 0, 1, 1), last.Rect)
	assertNear(t, red, last.RGBAAt(0, 0))
}

func TestDrawDocument(t *testing.T) {
	doc, err := svgdoc.Parse(strings.NewReader(`<svg viewBox="0 0 10 10" width="10" height="10">
	<defs>
		<linearGradient id="g"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
	</defs>
	<rect width="10" height="5" fill="url(#g)"/>
	<rect y="5" width="10" height="5" fill="none" stroke="black" stroke-width="1"/>
</svg>`), svgdoc.StrictErrorMode)
	require.NoError(t, err)

	s := newTestSurface(t, 40, 40)
	c := s.Canvas()
	c.Scale(4, 4)
	c.DrawDocument(doc, 1)

	left, right := pixel(s, 2, 5), pixel(s, 37, 5)
	assert.Greater(t, left.R, left.B)
	assert.Greater(t, right.B, right.R)

	// the stroke is drawn on the outline, not inside
	assert.Equal(t, white, pixel(s, 20, 30))
	edge := pixel(s, 20, 39)
	assert.Less(t, edge.R, uint8(255))
}
