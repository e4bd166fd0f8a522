package svgpath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"
)

func TestParseCommands(t *testing.T) {
	for _, d := range []string{
		"M10,10 L20,20 Z",
		"m10 10 l10 10 h5 v5 H0 V0 z",
		"M0,0 C10,0 20,10 20,20 S30,40 40,40",
		"M0,0 c10,0 20,10 20,20 s10,20 20,20",
		"M0,0 Q10,0 10,10 T20,20 t10,10",
		"M0,0 A10,10 0 0,1 20,0 a5 5 0 1 0 10 0",
		"M0,0 a5,5 0 0110,0", // packed flags
		"M1.5.5L-1-2",        // packed numbers
		"M1e1,2E-1 l.5,.5",
		"M0,0 10,10 20,0", // implicit line to
		"M0,0 Z L10,10 Z", // implicit start after close
		"",
	} {
		_, err := Parse(d)
		assert.NoError(t, err, d)
	}
}

func TestParseErrors(t *testing.T) {
	for _, d := range []string{
		"L10,10",
		"M10",
		"M10,10 X",
		"M0,0 A10,10 0 2 1 20,0",
		"hello",
		"M0,0 Z 10,10",
	} {
		_, err := Parse(d)
		assert.True(t, errors.Is(err, ErrSyntax), "%q: %v", d, err)
	}
}

func TestParseAbsoluteRelative(t *testing.T) {
	abs, err := Parse("M10,10 L20,10 L20,20 Z")
	require.NoError(t, err)
	rel, err := Parse("m10,10 l10,0 l0,10 z")
	require.NoError(t, err)
	assert.Equal(t, abs, rel)
	assert.Equal(t, "M10.000,10.000 L20.000,10.000 L20.000,20.000 Z", abs.String())
}

func TestParseImplicitCommands(t *testing.T) {
	p, err := Parse("M0,0 10,0 10,10")
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.IsType(t, MoveTo{}, p[0])
	assert.IsType(t, LineTo{}, p[1])
	assert.IsType(t, LineTo{}, p[2])
}

func TestSmoothCubicReflection(t *testing.T) {
	p, err := Parse("M0,0 C0,10 10,10 10,0 S20,-10 20,0")
	require.NoError(t, err)
	require.Len(t, p, 3)
	second := p[2].(CubicTo)
	// the first control point is the reflection of (10,10) around (10,0)
	assert.Equal(t, ToFixedP(10, -10), second[0])
}

func TestArcEndsOnTarget(t *testing.T) {
	p, err := Parse("M0,0 A10,10 0 0,1 20,0")
	require.NoError(t, err)
	last := p[len(p)-1].(CubicTo)
	assert.Equal(t, ToFixedP(20, 0), last[2])

	// zero radius degrades to a line
	p, err = Parse("M0,0 A0,10 0 0,1 20,0")
	require.NoError(t, err)
	assert.IsType(t, LineTo{}, p[1])
}

func TestBounds(t *testing.T) {
	p, err := Parse("M-5,2 L10,20 L3,-4 Z")
	require.NoError(t, err)
	b, ok := p.Bounds()
	require.True(t, ok)
	assert.Equal(t, fixed.Rectangle26_6{Min: ToFixedP(-5, -4), Max: ToFixedP(10, 20)}, b)

	_, ok = Path(nil).Bounds()
	assert.False(t, ok)
}

func TestTransform(t *testing.T) {
	p, err := Parse("M1,2 L3,4")
	require.NoError(t, err)
	q := p.Transform(Identity.Translate(10, 0).Scale(2, 2))
	assert.Equal(t, "M12.000,4.000 L16.000,8.000", q.String())
	// the source is untouched
	assert.Equal(t, "M1.000,2.000 L3.000,4.000", p.String())
}

func TestReadNumbers(t *testing.T) {
	nums, err := ReadNumbers("0 0, 512 -1.5e2")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 512, -150}, nums)

	_, err = ReadNumbers("1 2 x")
	assert.Error(t, err)
}

func TestMatrix(t *testing.T) {
	m := Identity.Translate(12, 12).Scale(0.5, 0.5)
	x, y := m.Transform(10, 20)
	assert.InDelta(t, 17, x, 1e-9)
	assert.InDelta(t, 22, y, 1e-9)

	ix, iy := m.Invert().Transform(x, y)
	assert.InDelta(t, 10, ix, 1e-9)
	assert.InDelta(t, 20, iy, 1e-9)

	sx, sy := Identity.Rotate(0.3).Scale(2, 3).ScaleFactors()
	assert.InDelta(t, 2, sx, 1e-9)
	assert.InDelta(t, 3, sy, 1e-9)
}

func TestExtent(t *testing.T) {
	p, err := Parse("M0,0 C0,10 10,10 10,0")
	require.NoError(t, err)
	ctrl, _ := p.Bounds()
	ext, ok := p.Extent()
	require.True(t, ok)
	assert.Equal(t, ToFixed(10), ctrl.Max.Y)
	assert.Equal(t, ToFixed(7.5), ext.Max.Y)
	assert.Equal(t, ToFixedP(0, 0), ext.Min)
	assert.Equal(t, ToFixed(10), ext.Max.X)

	p, err = Parse("M0,0 Q5,-10 10,0")
	require.NoError(t, err)
	ext, _ = p.Extent()
	assert.Equal(t, ToFixed(-5), ext.Min.Y)

	_, ok = Path(nil).Extent()
	assert.False(t, ok)
}
