package svgdoc

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/benoitkugler/drawbench/svgpath"
)

var (
	errParamMismatch = fmt.Errorf("%w: wrong number of parameters", svgpath.ErrSyntax)
	errZeroLengthID  = fmt.Errorf("%w: zero length id", ErrInvalidDocument)
)

// docParser is used while parsing SVG files
type docParser struct {
	doc       *Document
	errorMode ErrorMode
	logger    *slog.Logger

	path             svgpath.Path // path built by the current element
	points           []float64    // numbers of the current list attribute
	offsetX, offsetY float64      // offset applied by the <use> element being expanded

	styleStack                              []Style
	grad                                    *Gradient
	inTitleText, inDescText, inGrad, inDefs bool
	currentDef                              []definition

	// > 0 while inside an element whose content is never rendered
	skipDepth int
}

// definition is used to store what's given in a def tag
type definition struct {
	ID, Tag string
	Attrs   []xml.Attr
}

// DefaultStyle sets the default Style to fill black, winding rule,
// full opacity, no stroke, ButtCap line end and Bevel line connect.
var DefaultStyle = Style{
	FillOpacity:       1.0,
	LineOpacity:       1.0,
	LineWidth:         2.0,
	UseNonZeroWinding: true,
	Join: JoinOptions{
		MiterLimit:   svgpath.ToFixed(4),
		LineJoin:     Bevel,
		TrailLineCap: ButtCap,
	},
	FillerColor: NewPlainColor(0x00, 0x00, 0x00, 0xff),
	transform:   svgpath.Identity,
}

// nonRendered lists the containers whose children are never drawn directly.
var nonRendered = map[string]bool{
	"clipPath": true,
	"mask":     true,
	"pattern":  true,
	"marker":   true,
	"symbol":   true,
	"filter":   true,
	"metadata": true,
	"style":    true,
	"script":   true,
	"font":     true,
}

// handleError reports an unsupported feature, according to the error mode.
func (c *docParser) handleError(format string, args ...any) error {
	switch c.errorMode {
	case StrictErrorMode:
		return fmt.Errorf("svgdoc: "+format, args...)
	case WarnErrorMode:
		c.logger.Warn("svgdoc: unsupported content", "detail", fmt.Sprintf(format, args...))
	}
	return nil
}

func (c *docParser) getPoints(v string) (err error) {
	c.points, err = svgpath.ReadNumbers(v)
	return err
}

// applyTransform post-multiplies m by the transform function name(args...).
// Angles are in degrees.
func applyTransform(m svgpath.Matrix2D, name string, args []float64) (svgpath.Matrix2D, error) {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	switch n := len(args); {
	case name == "matrix" && n == 6:
		return m.Mult(svgpath.Matrix2D{A: args[0], B: args[1], C: args[2], D: args[3], E: args[4], F: args[5]}), nil
	case name == "translate" && (n == 1 || n == 2):
		ty := 0.
		if n == 2 {
			ty = args[1]
		}
		return m.Translate(args[0], ty), nil
	case name == "scale" && (n == 1 || n == 2):
		sy := args[0]
		if n == 2 {
			sy = args[1]
		}
		return m.Scale(args[0], sy), nil
	case name == "rotate" && n == 1:
		return m.Rotate(rad(args[0])), nil
	case name == "rotate" && n == 3: // around (cx, cy)
		return m.Translate(args[1], args[2]).Rotate(rad(args[0])).Translate(-args[1], -args[2]), nil
	case name == "skewx" && n == 1:
		return m.SkewX(rad(args[0])), nil
	case name == "skewy" && n == 1:
		return m.SkewY(rad(args[0])), nil
	}
	return m, fmt.Errorf("%w: %s with %d arguments", errParamMismatch, name, len(args))
}

// parseTransform applies the transform list v, such as
// "translate(10) scale(2, 3)", on top of m.
func (c *docParser) parseTransform(m svgpath.Matrix2D, v string) (svgpath.Matrix2D, error) {
	for _, fn := range strings.Split(v, ")") {
		fn = strings.Trim(fn, " \t\n\r,")
		if fn == "" {
			continue
		}
		name, args, ok := strings.Cut(fn, "(")
		if !ok || args == "" {
			return m, fmt.Errorf("%w: invalid transform %q", errParamMismatch, fn)
		}
		if err := c.getPoints(args); err != nil {
			return m, err
		}
		var err error
		m, err = applyTransform(m, strings.ToLower(strings.TrimSpace(name)), c.points)
		if err != nil {
			return m, err
		}
	}
	return m, nil
}

var (
	capKeywords = map[string]CapMode{
		"butt": ButtCap, "round": RoundCap, "square": SquareCap, "cubic": CubicCap, "quadratic": QuadraticCap,
	}
	joinKeywords = map[string]JoinMode{
		"miter": Miter, "miter-clip": MiterClip, "arc-clip": ArcClip, "round": Round, "arc": Arc, "bevel": Bevel,
	}
	gapKeywords = map[string]GapMode{
		"flat": FlatGap, "round": RoundGap, "cubic": CubicGap, "quadratic": QuadraticGap,
	}
)

// setKeyword sets *dst to the value of v in table, if any.
// Unknown keywords are ignored.
func setKeyword[T any](dst *T, table map[string]T, v string) {
	if mode, ok := table[v]; ok {
		*dst = mode
	}
}

// readPaint parses the value of a fill or stroke property.
func (c *docParser) readPaint(v string) (Pattern, error) {
	if gradient, ok := c.readGradURL(v); ok {
		return gradient, nil
	}
	col, err := parseSVGColor(v)
	if err != nil {
		return nil, err
	}
	return asPattern(col), nil
}

func readDashArray(v string) ([]float64, error) {
	if v == "none" {
		return nil, nil
	}
	fields := splitOnCommaOrSpace(v)
	out := make([]float64, len(fields))
	for i, f := range fields {
		d, err := svgpath.ParseFloat(f)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// readStyleAttr updates st with the property k.
// Unsupported properties are ignored.
func (c *docParser) readStyleAttr(st *Style, k, v string) (err error) {
	switch k {
	case "fill":
		st.FillerColor, err = c.readPaint(v)
	case "stroke":
		st.LinerColor, err = c.readPaint(v)
	case "fill-rule":
		if v == "evenodd" || v == "nonzero" {
			st.UseNonZeroWinding = v == "nonzero"
		}
	case "display":
		st.Hidden = v == "none"
	case "visibility":
		st.Hidden = v == "hidden" || v == "collapse"
	case "stroke-linegap":
		setKeyword(&st.Join.LineGap, gapKeywords, v)
	case "stroke-leadlinecap":
		setKeyword(&st.Join.LeadLineCap, capKeywords, v)
	case "stroke-linecap":
		setKeyword(&st.Join.TrailLineCap, capKeywords, v)
	case "stroke-linejoin":
		setKeyword(&st.Join.LineJoin, joinKeywords, v)
	case "stroke-miterlimit":
		var limit float64
		limit, err = svgpath.ParseFloat(v)
		st.Join.MiterLimit = svgpath.ToFixed(limit)
	case "stroke-width":
		st.LineWidth, err = c.parseUnit(v, diagPercentage)
	case "stroke-dashoffset":
		st.Dash.DashOffset, err = svgpath.ParseFloat(v)
	case "stroke-dasharray":
		st.Dash.Dash, err = readDashArray(v)
	case "opacity", "stroke-opacity", "fill-opacity":
		var op float64
		if op, err = readFraction(v); err != nil {
			return err
		}
		// opacity applies to both
		if k != "stroke-opacity" {
			st.FillOpacity *= op
		}
		if k != "fill-opacity" {
			st.LineOpacity *= op
		}
	case "transform":
		st.transform, err = c.parseTransform(st.transform, v)
	}
	return err
}

// styleDeclarations returns the "key:value" declarations of attrs,
// where the style attribute is expanded.
func styleDeclarations(attrs []xml.Attr) []string {
	var decls []string
	for _, attr := range attrs {
		if strings.EqualFold(attr.Name.Local, "style") {
			decls = append(decls, strings.Split(attr.Value, ";")...)
		} else {
			decls = append(decls, attr.Name.Local+":"+attr.Value)
		}
	}
	return decls
}

// pushStyle pushes on the stack the current style, updated by
// the presentation attributes and the style attribute of the element.
// An invalid value is reported through handleError, so that
// it is skipped except in strict mode.
func (c *docParser) pushStyle(attrs []xml.Attr) error {
	st := c.styleStack[len(c.styleStack)-1]
	for _, decl := range styleDeclarations(attrs) {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k, v = strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(v)
		// on error, st keeps a valid value for k
		saved := st
		if err := c.readStyleAttr(&st, k, v); err != nil {
			st = saved
			if err = c.handleError("invalid attribute %s=%q: %s", k, v, err); err != nil {
				return err
			}
		}
	}
	c.styleStack = append(c.styleStack, st)
	return nil
}

func (c *docParser) popStyle() {
	c.styleStack = c.styleStack[:len(c.styleStack)-1]
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
}

// readFraction parses a number or a percentage, such as "0.5" or "50%"
func readFraction(v string) (f float64, err error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err = svgpath.ParseFloat(v)
	f /= d
	return
}

// percentageReference selects the view box dimension a percentage refers to
type percentageReference uint8

const (
	widthPercentage percentageReference = iota
	heightPercentage
	diagPercentage
)

// parseUnit parses a length attribute, resolving percentages
// against the view box.
func (c *docParser) parseUnit(v string, ref percentageReference) (float64, error) {
	v = strings.TrimSpace(v)
	if !strings.HasSuffix(v, "%") {
		return parseLength(v)
	}
	f, err := readFraction(v)
	if err != nil {
		return 0, err
	}
	vb := c.doc.ViewBox
	switch ref {
	case widthPercentage:
		return f * vb.W, nil
	case heightPercentage:
		return f * vb.H, nil
	default:
		return f * math.Sqrt(vb.W*vb.W+vb.H*vb.H) / math.Sqrt2, nil
	}
}

// startElement handles an opening tag: style push, definition
// recording and element drawing.
func (c *docParser) startElement(se xml.StartElement) error {
	if c.skipDepth > 0 || nonRendered[se.Name.Local] {
		if c.skipDepth == 0 {
			if err := c.handleError("cannot process svg element %s", se.Name.Local); err != nil {
				return err
			}
		}
		c.skipDepth++
		return nil
	}
	// Reads all recognized style attributes from the start element
	// and places it on top of the styleStack
	if err := c.pushStyle(se.Attr); err != nil {
		return err
	}
	return c.readStartElement(se)
}

func (c *docParser) endElement(se xml.EndElement) {
	if c.skipDepth > 0 {
		c.skipDepth--
		return
	}
	c.popStyle()
	switch se.Name.Local {
	case "g":
		if c.inDefs {
			c.currentDef = append(c.currentDef, definition{
				Tag: "endg",
			})
		}
	case "title":
		c.inTitleText = false
	case "desc":
		c.inDescText = false
	case "defs":
		c.flushDef()
		c.inDefs = false
	case "radialGradient", "linearGradient":
		c.inGrad = false
	}
}

func (c *docParser) flushDef() {
	if len(c.currentDef) > 0 {
		c.doc.defs[c.currentDef[0].ID] = c.currentDef
		c.currentDef = nil
	}
}

func (c *docParser) readStartElement(se xml.StartElement) (err error) {
	var skipDef bool
	if se.Name.Local == "radialGradient" || se.Name.Local == "linearGradient" || c.inGrad {
		skipDef = true
	}
	if c.inDefs && !skipDef {
		ID := ""
		for _, attr := range se.Attr {
			if attr.Name.Local == "id" {
				ID = attr.Value
			}
		}
		if ID != "" && len(c.currentDef) > 0 {
			c.flushDef()
		}
		c.currentDef = append(c.currentDef, definition{
			ID:    ID,
			Tag:   se.Name.Local,
			Attrs: se.Attr,
		})
		return nil
	}
	df, ok := elementHandlers[se.Name.Local]
	if !ok {
		return c.handleError("cannot process svg element %s", se.Name.Local)
	}
	if err = df(c, se.Attr); err != nil {
		return err
	}
	c.emitPath()
	return nil
}

// emitPath stores the path parsed from the current element, if any.
func (c *docParser) emitPath() {
	if len(c.path) == 0 {
		return
	}
	pathCopy := append(svgpath.Path{}, c.path...)
	c.doc.Paths = append(c.doc.Paths,
		StyledPath{Path: pathCopy, Style: c.styleStack[len(c.styleStack)-1]})
	c.path = c.path[:0]
}
