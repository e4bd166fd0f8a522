package svgdoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/benoitkugler/drawbench/svgpath"
	"golang.org/x/image/colornames"
)

// Pattern is either a PlainColor or a Gradient.
type Pattern interface {
	isPattern()
}

// PlainColor is a solid color paint.
type PlainColor struct {
	color.NRGBA
}

func (PlainColor) isPattern() {}
func (Gradient) isPattern()   {}

// NewPlainColor returns a solid paint.
func NewPlainColor(r, g, b, a uint8) PlainColor {
	return PlainColor{color.NRGBA{R: r, G: g, B: b, A: a}}
}

// GradientUnits is the type for gradient units
type GradientUnits byte

// SVG bounds parameter constants
const (
	ObjectBoundingBox GradientUnits = iota
	UserSpaceOnUse
)

// SpreadMethod is the type for spread parameters
type SpreadMethod byte

// SVG spread parameter constants
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// GradStop represents a stop in the SVG 2.0 gradient specification
type GradStop struct {
	StopColor color.Color
	Offset    float64
	Opacity   float64
}

// Gradient holds a description of an SVG 2.0 gradient
type Gradient struct {
	Direction gradientDirecter
	Stops     []GradStop
	Bounds    Bounds
	Matrix    svgpath.Matrix2D
	Spread    SpreadMethod
	Units     GradientUnits
}

// radial or linear
type gradientDirecter interface {
	isRadial() bool
}

// Linear stores x1, y1, x2, y2
type Linear [4]float64

func (Linear) isRadial() bool { return false }

// Radial stores cx, cy, fx, fy, r, fr
type Radial [6]float64

func (Radial) isRadial() bool { return true }

// optionalColor is nil for "none"
type optionalColor *color.NRGBA

func asPattern(c optionalColor) Pattern {
	if c == nil {
		return nil
	}
	return PlainColor{*c}
}

func asColor(c optionalColor) color.Color {
	if c == nil {
		return color.NRGBA{}
	}
	return *c
}

var errColor = errors.New("svgdoc: invalid color")

// parseSVGColor parses a paint value. It returns nil for "none".
// currentColor resolves to black.
func parseSVGColor(v string) (optionalColor, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "none", "transparent":
		return nil, nil
	case "currentcolor":
		return &color.NRGBA{A: 0xff}, nil
	}
	if c, ok := colornames.Map[v]; ok {
		return &color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}
	switch {
	case strings.HasPrefix(v, "#"):
		return parseHexColor(v[1:])
	case strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba("):
		return parseFunctionalColor(v)
	}
	return nil, fmt.Errorf("%w: %q", errColor, v)
}

func parseHexColor(h string) (optionalColor, error) {
	switch len(h) {
	case 3, 4:
		// each digit is doubled
		var expanded []byte
		for i := range h {
			expanded = append(expanded, h[i], h[i])
		}
		h = string(expanded)
	case 6, 8:
	default:
		return nil, fmt.Errorf("%w: #%s", errColor, h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: #%s", errColor, h)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return &color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// parseFunctionalColor handles rgb(r,g,b) and rgba(r,g,b,a),
// with integer or percentage components
func parseFunctionalColor(v string) (optionalColor, error) {
	lp, rp := strings.IndexByte(v, '('), strings.IndexByte(v, ')')
	if rp < lp {
		return nil, fmt.Errorf("%w: %q", errColor, v)
	}
	fields := splitOnCommaOrSpace(v[lp+1 : rp])
	if len(fields) != 3 && len(fields) != 4 {
		return nil, fmt.Errorf("%w: %q", errColor, v)
	}
	var out [4]uint8
	out[3] = 0xff
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if i == 3 { // alpha is a fraction
			a, err := readFraction(f)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", errColor, v)
			}
			out[3] = clampByte(a * 255)
			continue
		}
		var (
			c   float64
			err error
		)
		if strings.HasSuffix(f, "%") {
			c, err = readFraction(f)
			c *= 255
		} else {
			c, err = strconv.ParseFloat(f, 64)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errColor, v)
		}
		out[i] = clampByte(c)
	}
	return &color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}, nil
}

func clampByte(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return uint8(f + 0.5)
}

// readGradURL resolves a url(#id) reference to a parsed gradient.
// It returns false if v is not a reference, or an unknown one.
func (c *docParser) readGradURL(v string) (Gradient, bool) {
	if !strings.HasPrefix(v, "url(") || !strings.HasSuffix(v, ")") {
		return Gradient{}, false
	}
	urlStr := strings.TrimSpace(v[4 : len(v)-1])
	if !strings.HasPrefix(urlStr, "#") {
		return Gradient{}, false
	}
	grad, ok := c.doc.grads[urlStr[1:]]
	if !ok {
		return Gradient{}, false
	}
	return *grad, true
}

// readGradAttr reads the attributes shared by linear and radial gradients
func (c *docParser) readGradAttr(attr xml.Attr) (err error) {
	switch attr.Name.Local {
	case "gradientTransform":
		c.grad.Matrix, err = c.parseTransform(svgpath.Identity, attr.Value)
	case "gradientUnits":
		switch strings.TrimSpace(attr.Value) {
		case "userSpaceOnUse":
			c.grad.Units = UserSpaceOnUse
		case "objectBoundingBox":
			c.grad.Units = ObjectBoundingBox
		}
	case "spreadMethod":
		switch strings.TrimSpace(attr.Value) {
		case "pad":
			c.grad.Spread = PadSpread
		case "reflect":
			c.grad.Spread = ReflectSpread
		case "repeat":
			c.grad.Spread = RepeatSpread
		}
	case "href":
		// inherit the stops of the referenced gradient
		id := strings.TrimPrefix(strings.TrimSpace(attr.Value), "#")
		if ref, ok := c.doc.grads[id]; ok && len(c.grad.Stops) == 0 {
			c.grad.Stops = append([]GradStop(nil), ref.Stops...)
		}
	}
	return err
}
