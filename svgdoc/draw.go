package svgdoc

import (
	"fmt"
	"math"

	"github.com/benoitkugler/drawbench/svgpath"
	"golang.org/x/image/math/fixed"
)

// Drawer receives the outline of one path, already mapped to the
// device space, and paints it.
type Drawer interface {
	// Clear discards the accumulated outline.
	Clear()

	Start(a fixed.Point26_6)
	Line(b fixed.Point26_6)
	QuadBezier(b, c fixed.Point26_6)
	CubeBezier(b, c, d fixed.Point26_6)
	// Stop ends the current sub-path, closing it if closeLoop is true.
	Stop(closeLoop bool)

	// SetColor sets the paint of the outline. Gradients are
	// expressed in device space.
	SetColor(color Pattern, opacity float64)

	// Draw paints the accumulated outline.
	Draw()
}

// Filler fills outlines.
type Filler interface {
	Drawer
	SetWinding(useNonZeroWinding bool)
}

// Stroker strokes outlines.
type Stroker interface {
	Drawer
	SetStrokeOptions(options StrokeOptions)
}

// Driver is a rendering backend.
type Driver interface {
	// SetupDrawers is called before each path. Drawers not needed
	// (as indicated by the booleans) may be nil. When both are requested,
	// the same outline is sent to the Filler, then to the Stroker.
	SetupDrawers(willFill, willStroke bool) (Filler, Stroker)
}

// DashOptions describes a dash pattern, in device space.
// An empty Dash means a solid line.
type DashOptions struct {
	Dash       []float64
	DashOffset float64
}

// JoinMode selects the shape of stroke joins.
// Arc and MiterClip come from SVG 2; ArcClip is an extension.
type JoinMode uint8

const (
	Arc JoinMode = iota
	Round
	Bevel
	Miter
	MiterClip
	ArcClip
)

var joinNames = [...]string{
	Arc: "Arc", Round: "Round", Bevel: "Bevel", Miter: "Miter", MiterClip: "MiterClip", ArcClip: "ArcClip",
}

func (s JoinMode) String() string {
	if int(s) < len(joinNames) {
		return joinNames[s]
	}
	return fmt.Sprintf("<JoinMode %d>", s)
}

// CapMode selects the shape of line ends.
// CubicCap and QuadraticCap are extensions.
type CapMode uint8

const (
	NilCap CapMode = iota // unset
	ButtCap
	SquareCap
	RoundCap
	CubicCap
	QuadraticCap
)

// GapMode selects how the outer side of a join is filled when
// the miter limit is exceeded (an extension to SVG).
type GapMode uint8

const (
	NilGap GapMode = iota // unset
	FlatGap
	RoundGap
	CubicGap
	QuadraticGap
)

// JoinOptions groups the join and cap settings of a stroke.
// When only one of LeadLineCap and TrailLineCap is set,
// it is used at both ends.
type JoinOptions struct {
	MiterLimit   fixed.Int26_6
	LineJoin     JoinMode
	TrailLineCap CapMode
	LeadLineCap  CapMode
	LineGap      GapMode
}

// StrokeOptions are the stroke settings of a path, in device space.
type StrokeOptions struct {
	LineWidth fixed.Int26_6
	Join      JoinOptions
	Dash      DashOptions
}

// Render draws the compiled document into the driver `d`, using
// its own Transform.
func (s *Document) Render(d Driver, opacity float64) {
	s.RenderTransformed(d, svgpath.Identity, opacity)
}

// RenderTransformed draws the compiled document into the driver `d`,
// mapping the document space (after its own Transform) with `m`.
func (s *Document) RenderTransformed(d Driver, m svgpath.Matrix2D, opacity float64) {
	t := m.Mult(s.Transform)
	for i := range s.Paths {
		s.Paths[i].drawTransformed(d, opacity, t)
	}
}

// drawTransformed draws the compiled StyledPath into the driver while applying transform t.
func (svgp *StyledPath) drawTransformed(d Driver, opacity float64, t svgpath.Matrix2D) {
	if svgp.Style.Hidden {
		return
	}
	m := t.Mult(svgp.Style.transform)

	filler, stroker := d.SetupDrawers(svgp.Style.FillerColor != nil, svgp.Style.LinerColor != nil)
	if filler != nil { // nil color disable filling
		filler.Clear()
		filler.SetWinding(svgp.Style.UseNonZeroWinding)

		svgp.Path.AddTo(filler, m)

		filler.SetColor(devicePattern(svgp.Style.FillerColor, svgp.Path, m), svgp.Style.FillOpacity*opacity)
		filler.Draw()
		filler.SetWinding(true) // default is true
	}

	if stroker != nil { // nil color disable lining
		stroker.Clear()

		lineGap := svgp.Style.Join.LineGap
		if lineGap == NilGap {
			lineGap = DefaultStyle.Join.LineGap
		}
		lineCap := svgp.Style.Join.TrailLineCap
		if lineCap == NilCap {
			lineCap = DefaultStyle.Join.TrailLineCap
		}
		leadLineCap := lineCap
		if svgp.Style.Join.LeadLineCap != NilCap {
			leadLineCap = svgp.Style.Join.LeadLineCap
		}
		// widths are expressed in user space
		sx, sy := m.ScaleFactors()
		scale := math.Sqrt(sx * sy)
		dash := svgp.Style.Dash
		if len(dash.Dash) != 0 {
			scaled := make([]float64, len(dash.Dash))
			for i, v := range dash.Dash {
				scaled[i] = v * scale
			}
			dash = DashOptions{Dash: scaled, DashOffset: dash.DashOffset * scale}
		}
		stroker.SetStrokeOptions(StrokeOptions{
			LineWidth: svgpath.ToFixed(svgp.Style.LineWidth * scale),
			Join: JoinOptions{
				MiterLimit:   svgp.Style.Join.MiterLimit,
				LineJoin:     svgp.Style.Join.LineJoin,
				LeadLineCap:  leadLineCap,
				TrailLineCap: lineCap,
				LineGap:      lineGap,
			},
			Dash: dash,
		})

		svgp.Path.AddTo(stroker, m)

		stroker.SetColor(devicePattern(svgp.Style.LinerColor, svgp.Path, m), svgp.Style.LineOpacity*opacity)
		stroker.Draw()
	}
}

// devicePattern maps gradients to the device space, where the drivers
// evaluate them: user space gradients are transformed, and bounding box
// gradients receive the device extent of the path.
func devicePattern(p Pattern, path svgpath.Path, m svgpath.Matrix2D) Pattern {
	g, ok := p.(Gradient)
	if !ok {
		return p
	}
	switch g.Units {
	case UserSpaceOnUse:
		g.Matrix = m.Mult(g.Matrix)
	case ObjectBoundingBox:
		if r, ok := path.Transform(m).Extent(); ok {
			g.Bounds = Bounds{
				X: float64(r.Min.X) / 64, Y: float64(r.Min.Y) / 64,
				W: float64(r.Max.X-r.Min.X) / 64, H: float64(r.Max.Y-r.Min.Y) / 64,
			}
		}
	}
	return g
}

// Transform returns the user space to document space matrix
// of the path (not including the Document.Transform).
func (svgp *StyledPath) Transform() svgpath.Matrix2D { return svgp.Style.transform }
