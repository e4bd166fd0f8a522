package svgdoc

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/benoitkugler/drawbench/svgpath"
)

type elementHandler func(c *docParser, attrs []xml.Attr) error

var elementHandlers map[string]elementHandler

func init() {
	// set at init since handleUse refers to the table
	elementHandlers = map[string]elementHandler{
		"svg":            handleSVG,
		"g":              handleNoop,
		"defs":           handleDefs,
		"title":          handleTitle,
		"desc":           handleDesc,
		"line":           handleLine,
		"rect":           handleRect,
		"circle":         handleEllipse,
		"ellipse":        handleEllipse,
		"polyline":       handlePolyline,
		"polygon":        handlePolygon,
		"path":           handlePath,
		"linearGradient": handleLinearGradient,
		"radialGradient": handleRadialGradient,
		"stop":           handleStop,
		"use":            handleUse,
	}
}

// lengthAttrs maps attribute names to the value they set,
// and the dimension used to resolve percentages.
type lengthAttrs map[string]struct {
	dst *float64
	ref percentageReference
}

// readLengths sets the values of the attributes listed in fields.
// Other attributes are ignored.
func (c *docParser) readLengths(attrs []xml.Attr, fields lengthAttrs) error {
	for _, attr := range attrs {
		field, ok := fields[attr.Name.Local]
		if !ok {
			continue
		}
		v, err := c.parseUnit(attr.Value, field.ref)
		if err != nil {
			return err
		}
		*field.dst = v
	}
	return nil
}

func handleNoop(*docParser, []xml.Attr) error { return nil }

// handleSVG reads the viewport of the outermost svg element;
// nested elements only act as groups.
func handleSVG(c *docParser, attrs []xml.Attr) error {
	if c.doc.Width != "" || c.doc.ViewBox != (Bounds{}) {
		return nil
	}
	var width, height float64
	for _, attr := range attrs {
		var err error
		switch attr.Name.Local {
		case "viewBox":
			if err = c.getPoints(attr.Value); err == nil && len(c.points) != 4 {
				return errParamMismatch
			}
			if err == nil {
				c.doc.ViewBox = Bounds{X: c.points[0], Y: c.points[1], W: c.points[2], H: c.points[3]}
			}
		case "width":
			c.doc.Width = attr.Value
			width, err = parseLength(attr.Value)
		case "height":
			c.doc.Height = attr.Value
			height, err = parseLength(attr.Value)
		}
		if err != nil {
			if err = c.handleError("invalid svg attribute %s=%q", attr.Name.Local, attr.Value); err != nil {
				return err
			}
		}
	}
	if c.doc.ViewBox.W == 0 {
		c.doc.ViewBox.W = width
	}
	if c.doc.ViewBox.H == 0 {
		c.doc.ViewBox.H = height
	}
	return nil
}

func handleDefs(c *docParser, _ []xml.Attr) error {
	c.inDefs = true
	return nil
}

func handleTitle(c *docParser, _ []xml.Attr) error {
	c.inTitleText = true
	c.doc.Titles = append(c.doc.Titles, "")
	return nil
}

func handleDesc(c *docParser, _ []xml.Attr) error {
	c.inDescText = true
	c.doc.Descriptions = append(c.doc.Descriptions, "")
	return nil
}

// offsetPoint shifts (x, y) by the offset of the current use element.
func (c *docParser) offsetPoint(x, y float64) (fx, fy float64) {
	return x + c.offsetX, y + c.offsetY
}

func handleRect(c *docParser, attrs []xml.Attr) error {
	var x, y, w, h, rx, ry float64
	err := c.readLengths(attrs, lengthAttrs{
		"x":      {&x, widthPercentage},
		"y":      {&y, heightPercentage},
		"width":  {&w, widthPercentage},
		"height": {&h, heightPercentage},
		"rx":     {&rx, widthPercentage},
		"ry":     {&ry, heightPercentage},
	})
	if err != nil || w <= 0 || h <= 0 {
		return err
	}
	// a single radius applies to both axis
	switch {
	case rx == 0:
		rx = ry
	case ry == 0:
		ry = rx
	}
	x, y = c.offsetPoint(x, y)
	c.path.AddRoundRect(x, y, x+w, y+h, rx, ry, 0)
	return nil
}

// handleEllipse handles both circle and ellipse
func handleEllipse(c *docParser, attrs []xml.Attr) error {
	var cx, cy, r, rx, ry float64
	err := c.readLengths(attrs, lengthAttrs{
		"cx": {&cx, widthPercentage},
		"cy": {&cy, heightPercentage},
		"r":  {&r, diagPercentage},
		"rx": {&rx, widthPercentage},
		"ry": {&ry, heightPercentage},
	})
	if err != nil {
		return err
	}
	if r != 0 {
		rx, ry = r, r
	}
	if rx <= 0 || ry <= 0 { // not drawn, but valid
		return nil
	}
	cx, cy = c.offsetPoint(cx, cy)
	c.path.AddEllipse(cx, cy, rx, ry)
	return nil
}

func handleLine(c *docParser, attrs []xml.Attr) error {
	var x1, y1, x2, y2 float64
	err := c.readLengths(attrs, lengthAttrs{
		"x1": {&x1, widthPercentage},
		"y1": {&y1, heightPercentage},
		"x2": {&x2, widthPercentage},
		"y2": {&y2, heightPercentage},
	})
	if err != nil {
		return err
	}
	x1, y1 = c.offsetPoint(x1, y1)
	x2, y2 = c.offsetPoint(x2, y2)
	c.path.Start(svgpath.ToFixedP(x1, y1))
	c.path.Line(svgpath.ToFixedP(x2, y2))
	return nil
}

// readPolyline adds the points as an open path and
// returns false if there are less than two points.
func (c *docParser) readPolyline(attrs []xml.Attr) (bool, error) {
	c.points = c.points[:0]
	for _, attr := range attrs {
		if attr.Name.Local != "points" {
			continue
		}
		if err := c.getPoints(attr.Value); err != nil {
			return false, err
		}
		if len(c.points)%2 != 0 {
			return false, fmt.Errorf("%w: odd number of coordinates in points", svgpath.ErrSyntax)
		}
	}
	if len(c.points) < 4 {
		return false, nil
	}
	for i := 0; i+1 < len(c.points); i += 2 {
		x, y := c.offsetPoint(c.points[i], c.points[i+1])
		if i == 0 {
			c.path.Start(svgpath.ToFixedP(x, y))
		} else {
			c.path.Line(svgpath.ToFixedP(x, y))
		}
	}
	return true, nil
}

func handlePolyline(c *docParser, attrs []xml.Attr) error {
	_, err := c.readPolyline(attrs)
	return err
}

func handlePolygon(c *docParser, attrs []xml.Attr) error {
	ok, err := c.readPolyline(attrs)
	if ok {
		c.path.Stop(true)
	}
	return err
}

func handlePath(c *docParser, attrs []xml.Attr) error {
	for _, attr := range attrs {
		if attr.Name.Local != "d" {
			continue
		}
		p, err := svgpath.Parse(attr.Value)
		if err != nil {
			return c.handleError("invalid path data: %s", err)
		}
		if c.offsetX != 0 || c.offsetY != 0 {
			p = p.Transform(svgpath.Identity.Translate(c.offsetX, c.offsetY))
		}
		c.path = append(c.path, p...)
	}
	return nil
}

// startGradient registers a new gradient, and returns the
// attributes not shared by linear and radial gradients.
func (c *docParser) startGradient(direction gradientDirecter, attrs []xml.Attr) ([]xml.Attr, error) {
	c.inGrad = true
	c.grad = &Gradient{Direction: direction, Bounds: c.doc.ViewBox, Matrix: svgpath.Identity}
	var own []xml.Attr
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "id":
			if attr.Value == "" {
				return nil, errZeroLengthID
			}
			c.doc.grads[attr.Value] = c.grad
		case "gradientTransform", "gradientUnits", "spreadMethod", "href":
			if err := c.readGradAttr(attr); err != nil {
				return nil, err
			}
		default:
			own = append(own, attr)
		}
	}
	return own, nil
}

// readFractions sets the values of the attributes listed in fields.
func readFractions(attrs []xml.Attr, fields map[string]*float64) error {
	for _, attr := range attrs {
		dst, ok := fields[attr.Name.Local]
		if !ok {
			continue
		}
		v, err := readFraction(attr.Value)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

func handleLinearGradient(c *docParser, attrs []xml.Attr) error {
	dir := Linear{0, 0, 1, 0}
	own, err := c.startGradient(dir, attrs)
	if err != nil {
		return err
	}
	err = readFractions(own, map[string]*float64{
		"x1": &dir[0], "y1": &dir[1], "x2": &dir[2], "y2": &dir[3],
	})
	c.grad.Direction = dir
	return err
}

func handleRadialGradient(c *docParser, attrs []xml.Attr) error {
	dir := Radial{0.5, 0.5, 0.5, 0.5, 0.5, 0}
	own, err := c.startGradient(dir, attrs)
	if err != nil {
		return err
	}
	// the focus defaults to the center
	fx, fy := -1.0, -1.0
	err = readFractions(own, map[string]*float64{
		"cx": &dir[0], "cy": &dir[1], "fx": &fx, "fy": &fy, "r": &dir[4], "fr": &dir[5],
	})
	dir[2], dir[3] = dir[0], dir[1]
	if hasAttr(own, "fx") {
		dir[2] = fx
	}
	if hasAttr(own, "fy") {
		dir[3] = fy
	}
	c.grad.Direction = dir
	return err
}

func hasAttr(attrs []xml.Attr, name string) bool {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return true
		}
	}
	return false
}

// DefaultStopColor is used by gradient stops without stop-color
var DefaultStopColor = NewPlainColor(0, 0, 0, 0xff).NRGBA

// readStopProperty handles the properties of a stop element,
// given as attribute or in the style attribute.
func readStopProperty(stop *GradStop, name, value string) (err error) {
	switch name {
	case "offset":
		stop.Offset, err = readFraction(value)
	case "stop-color":
		var col optionalColor
		col, err = parseSVGColor(value)
		stop.StopColor = asColor(col)
	case "stop-opacity":
		stop.Opacity, err = readFraction(value)
	}
	return err
}

func handleStop(c *docParser, attrs []xml.Attr) error {
	if !c.inGrad {
		return nil
	}
	stop := GradStop{Opacity: 1, StopColor: asColor(&DefaultStopColor)}
	for _, attr := range attrs {
		if attr.Name.Local != "style" {
			if err := readStopProperty(&stop, attr.Name.Local, attr.Value); err != nil {
				return err
			}
			continue
		}
		for _, decl := range strings.Split(attr.Value, ";") {
			k, v, ok := strings.Cut(decl, ":")
			if !ok || strings.TrimSpace(k) == "offset" {
				continue
			}
			if err := readStopProperty(&stop, strings.TrimSpace(k), strings.TrimSpace(v)); err != nil {
				return err
			}
		}
	}
	c.grad.Stops = append(c.grad.Stops, stop)
	return nil
}

// handleUse replays the elements saved under the referenced
// definition, shifted by the x and y attributes.
func handleUse(c *docParser, attrs []xml.Attr) error {
	var x, y float64
	if err := c.readLengths(attrs, lengthAttrs{
		"x": {&x, widthPercentage},
		"y": {&y, heightPercentage},
	}); err != nil {
		return err
	}
	var href string
	for _, attr := range attrs {
		if attr.Name.Local == "href" {
			href = attr.Value
		}
	}
	id, isID := strings.CutPrefix(href, "#")
	switch {
	case href == "":
		return c.handleError("use element without href")
	case !isID:
		return c.handleError("unsupported reference %q in use element", href)
	}
	def, ok := c.doc.defs[id]
	if !ok {
		return c.handleError("unknown definition %q in use element", id)
	}

	c.offsetX, c.offsetY = x, y
	depth := len(c.styleStack)
	defer func() {
		c.offsetX, c.offsetY = 0, 0
		// unbalanced groups in the definition must not leak
		c.styleStack = c.styleStack[:depth]
	}()
	for _, el := range def {
		if el.Tag == "endg" {
			if len(c.styleStack) > depth {
				c.popStyle()
			}
			continue
		}
		if err := c.pushStyle(el.Attrs); err != nil {
			return err
		}
		handler, ok := elementHandlers[el.Tag]
		if !ok || el.Tag == "use" { // nested references could loop
			if err := c.handleError("unsupported element %s in definition", el.Tag); err != nil {
				return err
			}
			c.popStyle()
			continue
		}
		if err := handler(c, el.Attrs); err != nil {
			return err
		}
		c.emitPath()
		if el.Tag != "g" {
			c.popStyle()
		}
	}
	return nil
}
