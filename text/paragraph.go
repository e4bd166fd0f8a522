package text

import (
	"image/color"
	"math"
	"strings"
	"unicode"

	"github.com/benoitkugler/drawbench/canvas"
	"github.com/benoitkugler/drawbench/svgpath"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// Style is the text style of a run. Zero fields are
// inherited from the paragraph base style.
type Style struct {
	Family string
	Size   float64
	Color  color.Color
}

func (s Style) inherit(base Style) Style {
	if s.Family == "" {
		s.Family = base.Family
	}
	if s.Size <= 0 {
		s.Size = base.Size
	}
	if s.Color == nil {
		s.Color = base.Color
	}
	if s.Color == nil {
		s.Color = color.Black
	}
	return s
}

// Run is a piece of text with a uniform style.
type Run struct {
	Text  string
	Style Style
}

// Glyph is a positioned glyph, relative to the start
// of its line and to its baseline (Y pointing down).
type Glyph struct {
	ID      sfnt.GlyphIndex
	X, Y    float64
	Advance float64
	Run     int // index of the run the glyph belongs to
}

// Line is a laid out line of a paragraph.
type Line struct {
	Glyphs   []Glyph
	Width    float64 // trailing whitespace excluded
	Baseline float64 // from the top of the paragraph
}

type resolvedRun struct {
	style      Style
	face       *Typeface
	start, end int // rune range in the normalized text
}

// Paragraph is a sequence of styled runs, laid out as
// a block of lines wrapped to a maximum width.
type Paragraph struct {
	runs  []resolvedRun
	text  []rune // NFC normalized
	plain string // as given

	base    Style
	metrics Metrics

	wrapper shaping.LineWrapper
	shaper  shaping.HarfbuzzShaper

	laidOut bool
	width   float64
	lines   []Line
}

// NewParagraph resolves the run styles against base and the
// font collection. The runs are kept in order.
func NewParagraph(fc *FontCollection, base Style, runs []Run) *Paragraph {
	base = base.inherit(Style{Size: 12})
	baseFace, _ := fc.Lookup(base.Family)
	p := &Paragraph{base: base, metrics: baseFace.Metrics(base.Size)}

	var plain strings.Builder
	for _, run := range runs {
		plain.WriteString(run.Text)
		st := run.Style.inherit(base)
		face, _ := fc.Lookup(st.Family)
		start := len(p.text)
		p.text = append(p.text, []rune(norm.NFC.String(run.Text))...)
		p.runs = append(p.runs, resolvedRun{style: st, face: face, start: start, end: len(p.text)})
	}
	p.plain = plain.String()
	return p
}

// Text returns the concatenated text of the runs.
func (p *Paragraph) Text() string { return p.plain }

// maxWrapWidth avoids overflowing the fixed point representation.
const maxWrapWidth = 1 << 24

// Layout breaks the paragraph into lines no wider than width,
// except for words which don't fit on a line on their own.
// A new line is also started after each '\n'.
func (p *Paragraph) Layout(width float64) {
	p.width = width
	p.lines = p.lines[:0]
	p.laidOut = true

	wrapWidth := maxWrapWidth
	if width < maxWrapWidth {
		wrapWidth = int(math.Max(0, math.Floor(width)))
	}

	lineHeight := p.metrics.LineHeight()
	start := 0
	for i := 0; i <= len(p.text); i++ {
		if i < len(p.text) && p.text[i] != '\n' {
			continue
		}
		p.layoutHardLine(start, i, wrapWidth)
		start = i + 1
	}
	for i := range p.lines {
		p.lines[i].Baseline = float64(i)*lineHeight + p.metrics.Ascent
	}
}

// layoutHardLine shapes and wraps text[start:end], which contains no line break.
func (p *Paragraph) layoutHardLine(start, end, wrapWidth int) {
	text := p.text[start:end]
	var (
		outs    []shaping.Output
		runOfIn []int
	)
	for ri, run := range p.runs {
		rs, re := max(run.start, start), min(run.end, end)
		if rs >= re {
			continue
		}
		input := shaping.Input{
			Text:      text,
			RunStart:  rs - start,
			RunEnd:    re - start,
			Direction: di.DirectionLTR,
			Face:      run.face.face,
			Size:      floatToFixed(run.style.Size),
			Script:    detectScript(p.text[rs:re]),
			Language:  language.NewLanguage("en"),
		}
		outs = append(outs, p.shaper.Shape(input))
		runOfIn = append(runOfIn, ri)
	}
	if len(outs) == 0 {
		p.lines = append(p.lines, Line{})
		return
	}

	cfg := shaping.WrapConfig{BreakPolicy: shaping.WhenNecessary}
	wrapped, _ := p.wrapper.WrapParagraph(cfg, wrapWidth, text, shaping.NewSliceIterator(outs))
	for _, wl := range wrapped {
		var (
			line Line
			pen  fixed.Int26_6
		)
		for _, out := range wl {
			ri := p.runAt(start + out.Runes.Offset)
			for _, g := range out.Glyphs {
				x := fixedToFloat(pen + g.XOffset)
				adv := fixedToFloat(g.Advance)
				line.Glyphs = append(line.Glyphs, Glyph{
					ID:      sfnt.GlyphIndex(g.GlyphID),
					X:       x,
					Y:       -fixedToFloat(g.YOffset),
					Advance: adv,
					Run:     ri,
				})
				if idx := g.TextIndex(); idx < 0 || idx >= len(text) || !unicode.IsSpace(text[idx]) {
					line.Width = math.Max(line.Width, fixedToFloat(pen)+adv)
				}
				pen += g.Advance
			}
		}
		p.lines = append(p.lines, line)
	}
}

// runAt returns the index of the run containing the rune at index i.
func (p *Paragraph) runAt(i int) int {
	for ri, run := range p.runs {
		if i >= run.start && i < run.end {
			return ri
		}
	}
	return len(p.runs) - 1
}

func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// Lines returns the lines computed by the last Layout.
func (p *Paragraph) Lines() []Line { return p.lines }

// LineCount returns the number of lines, including an empty
// last line after a trailing '\n'.
func (p *Paragraph) LineCount() int { return len(p.lines) }

// Height returns the height of the laid out block.
func (p *Paragraph) Height() float64 {
	return float64(len(p.lines)) * p.metrics.LineHeight()
}

// MaxLineWidth returns the width of the widest line.
func (p *Paragraph) MaxLineWidth() float64 {
	var w float64
	for _, l := range p.lines {
		w = math.Max(w, l.Width)
	}
	return w
}

// Paint draws the paragraph with its top left corner at (x, y), in the
// local coordinates of c. If Layout has not been called, the paragraph
// is laid out without width constraint.
func (p *Paragraph) Paint(c *canvas.Canvas, x, y float64) {
	if !p.laidOut {
		p.Layout(math.Inf(1))
	}
	defer c.Scope().Exit()
	c.Translate(x, y)

	cache := map[glyphKey][]sfnt.Segment{}
	for _, line := range p.lines {
		// one path per run and line, to keep the paint order of the runs
		var (
			path   svgpath.Path
			curRun = -1
		)
		flush := func() {
			if curRun >= 0 && len(path) != 0 {
				c.FillPath(path, canvas.Paint{Color: p.runs[curRun].style.Color, AntiAlias: true})
			}
			path = path[:0]
		}
		for _, g := range line.Glyphs {
			if g.Run != curRun {
				flush()
				curRun = g.Run
			}
			run := p.runs[g.Run]
			key := glyphKey{run.face, g.ID, run.style.Size}
			segments, ok := cache[key]
			if !ok {
				segments, _ = run.face.loadGlyph(g.ID, run.style.Size) // missing outlines are not drawn
				cache[key] = segments
			}
			appendOutline(&path, segments, svgpath.ToFixedP(g.X, line.Baseline+g.Y))
		}
		flush()
	}
}

type glyphKey struct {
	face *Typeface
	id   sfnt.GlyphIndex
	size float64
}

// appendOutline adds the glyph segments, translated by off, to path.
func appendOutline(path *svgpath.Path, segments []sfnt.Segment, off fixed.Point26_6) {
	open := false
	for _, seg := range segments {
		a := seg.Args
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				path.Stop(true)
			}
			path.Start(a[0].Add(off))
			open = true
		case sfnt.SegmentOpLineTo:
			path.Line(a[0].Add(off))
		case sfnt.SegmentOpQuadTo:
			path.QuadBezier(a[0].Add(off), a[1].Add(off))
		case sfnt.SegmentOpCubeTo:
			path.CubeBezier(a[0].Add(off), a[1].Add(off), a[2].Add(off))
		}
	}
	if open {
		path.Stop(true)
	}
}
