package canvas

import (
	"github.com/benoitkugler/drawbench/svgdoc"
	"github.com/srwiley/rasterx"
)

// Implements the raster backend to render SVG documents,
// by wrapping rasterx.

var _ svgdoc.Driver = (*Canvas)(nil) // assert interface conformance

// DrawDocument renders the document through the CTM.
func (c *Canvas) DrawDocument(doc *svgdoc.Document, opacity float64) {
	doc.RenderTransformed(c, c.ctm, opacity)
}

// SetupDrawers implements svgdoc.Driver.
func (c *Canvas) SetupDrawers(willFill, willStroke bool) (svgdoc.Filler, svgdoc.Stroker) {
	var (
		f svgdoc.Filler
		s svgdoc.Stroker
	)
	if willFill {
		f = filler{c.filler}
	}
	if willStroke {
		s = stroker{c.dasher}
	}
	return f, s
}

type filler struct {
	*rasterx.Filler
}

func (f filler) SetColor(color svgdoc.Pattern, opacity float64) {
	setColorFromPattern(color, opacity, f.Filler.Scanner)
}

type stroker struct {
	*rasterx.Dasher
}

func (s stroker) SetColor(color svgdoc.Pattern, opacity float64) {
	setColorFromPattern(color, opacity, s.Dasher.Scanner)
}

func (s stroker) SetStrokeOptions(options svgdoc.StrokeOptions) {
	s.Dasher.SetStroke(
		options.LineWidth, options.Join.MiterLimit, capToFunc[options.Join.LeadLineCap],
		capToFunc[options.Join.TrailLineCap], gapToFunc[options.Join.LineGap],
		joinToJoin[options.Join.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
}

func toRasterxGradient(grad svgdoc.Gradient) rasterx.Gradient {
	var (
		points   [5]float64
		isRadial bool
	)
	switch dir := grad.Direction.(type) {
	case svgdoc.Linear:
		points[0], points[1], points[2], points[3] = dir[0], dir[1], dir[2], dir[3]
		isRadial = false
	case svgdoc.Radial:
		points[0], points[1], points[2], points[3], points[4] = dir[0], dir[1], dir[2], dir[3], dir[4] // in rasterx fr is ignored
		isRadial = true
	}
	stops := make([]rasterx.GradStop, len(grad.Stops))
	for i := range grad.Stops {
		stops[i] = rasterx.GradStop(grad.Stops[i])
	}
	return rasterx.Gradient{
		Points:   points,
		Stops:    stops,
		Bounds:   grad.Bounds,
		Matrix:   grad.Matrix.ToRasterx(),
		Spread:   rasterx.SpreadMethod(grad.Spread),
		Units:    rasterx.GradientUnits(grad.Units),
		IsRadial: isRadial,
	}
}

// resolve gradient color
func setColorFromPattern(color svgdoc.Pattern, opacity float64, scanner rasterx.Scanner) {
	switch fillerColor := color.(type) {
	case svgdoc.PlainColor:
		scanner.SetColor(rasterx.ApplyOpacity(fillerColor, opacity))
	case svgdoc.Gradient:
		// the extent is normally provided by the document
		if fillerColor.Units == svgdoc.ObjectBoundingBox && fillerColor.Bounds.W == 0 && fillerColor.Bounds.H == 0 {
			fRect := scanner.GetPathExtent()
			mnx, mny := float64(fRect.Min.X)/64, float64(fRect.Min.Y)/64
			mxx, mxy := float64(fRect.Max.X)/64, float64(fRect.Max.Y)/64
			fillerColor.Bounds.X, fillerColor.Bounds.Y = mnx, mny
			fillerColor.Bounds.W, fillerColor.Bounds.H = mxx-mnx, mxy-mny
		}
		rasterxGradient := toRasterxGradient(fillerColor)
		scanner.SetColor(rasterxGradient.GetColorFunction(opacity))
	}
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgdoc.Round:     rasterx.Round,
		svgdoc.Bevel:     rasterx.Bevel,
		svgdoc.Miter:     rasterx.Miter,
		svgdoc.MiterClip: rasterx.MiterClip,
		svgdoc.Arc:       rasterx.Arc,
		svgdoc.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgdoc.ButtCap:      rasterx.ButtCap,
		svgdoc.SquareCap:    rasterx.SquareCap,
		svgdoc.RoundCap:     rasterx.RoundCap,
		svgdoc.CubicCap:     rasterx.CubicCap,
		svgdoc.QuadraticCap: rasterx.QuadraticCap,
	}

	gapToFunc = [...]rasterx.GapFunc{
		svgdoc.FlatGap:      rasterx.FlatGap,
		svgdoc.RoundGap:     rasterx.RoundGap,
		svgdoc.CubicGap:     rasterx.CubicGap,
		svgdoc.QuadraticGap: rasterx.QuadraticGap,
	}
)
