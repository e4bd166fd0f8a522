// Package svgdoc provides parsing and rendering of SVG documents.
// SVG files are parsed into an abstract representation (a list of
// styled paths), which can then be consumed by a painting [Driver],
// such as the rasterizer of the canvas package.
//
// Only a sub-set of SVG is supported, but it is enough to draw most
// icons and illustrations.
package svgdoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/benoitkugler/drawbench/svgpath"
	"golang.org/x/net/html/charset"
)

// ErrorMode is the for setting how the parser reacts to unparsed elements
type ErrorMode uint8

const (
	// IgnoreErrorMode skips un-handled SVG elements and attributes
	IgnoreErrorMode ErrorMode = iota

	// WarnErrorMode logs a warning for un-handled SVG elements and attributes
	WarnErrorMode

	// StrictErrorMode returns an error for un-handled SVG elements and attributes
	StrictErrorMode
)

// ErrInvalidDocument is returned (wrapped) when the input is not a usable SVG document.
var ErrInvalidDocument = errors.New("svgdoc: invalid svg document")

// Style holds the state of the SVG style
type Style struct {
	FillOpacity, LineOpacity float64
	LineWidth                float64
	UseNonZeroWinding        bool
	Hidden                   bool // display:none or visibility:hidden

	Join                    JoinOptions
	Dash                    DashOptions
	FillerColor, LinerColor Pattern // either PlainColor or Gradient

	transform svgpath.Matrix2D // current transform
}

// StyledPath binds a style to a path
type StyledPath struct {
	Path  svgpath.Path
	Style Style
}

// Bounds defines a bounding box, such as a viewport
// or a path extent.
type Bounds struct{ X, Y, W, H float64 }

// Document holds data from a parsed SVG file.
// See the `Render` method to use it.
type Document struct {
	ViewBox      Bounds
	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here
	Paths        []StyledPath
	Transform    svgpath.Matrix2D

	Width, Height string // top level width and height attributes

	grads map[string]*Gradient
	defs  map[string][]definition
}

// Options tunes the parser.
type Options struct {
	ErrorMode ErrorMode
	// Logger receives the warnings in WarnErrorMode.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Parse reads a document from the given io.Reader,
// using the given error mode, and logging to slog.Default().
func Parse(stream io.Reader, errMode ErrorMode) (*Document, error) {
	return ParseWithOptions(stream, Options{ErrorMode: errMode})
}

// ParseWithOptions reads a document from the given io.Reader.
// The returned document has its Transform set to map the view box
// onto the intrinsic size, see [Document.ViewportTransform].
func ParseWithOptions(stream io.Reader, opts Options) (*Document, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	doc := &Document{defs: make(map[string][]definition), grads: make(map[string]*Gradient), Transform: svgpath.Identity}
	cursor := &docParser{styleStack: []Style{DefaultStyle}, doc: doc, errorMode: opts.ErrorMode, logger: logger}
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	seenTag := false
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, err)
		}
		// Inspect the type of the XML token
		switch se := t.(type) {
		case xml.StartElement:
			if !seenTag && se.Name.Local != "svg" {
				return nil, fmt.Errorf("%w: root element is <%s>", ErrInvalidDocument, se.Name.Local)
			}
			seenTag = true
			if err = cursor.startElement(se); err != nil {
				return nil, err
			}
		case xml.EndElement:
			cursor.endElement(se)
		case xml.CharData:
			if cursor.skipDepth > 0 {
				continue
			}
			if cursor.inTitleText {
				doc.Titles[len(doc.Titles)-1] += string(se)
			}
			if cursor.inDescText {
				doc.Descriptions[len(doc.Descriptions)-1] += string(se)
			}
		}
	}
	if !seenTag {
		return nil, fmt.Errorf("%w: no svg element", ErrInvalidDocument)
	}
	doc.Transform = doc.ViewportTransform()
	return doc, nil
}

// Open reads the document from the named file.
func Open(filename string, opts Options) (*Document, error) {
	fin, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	return ParseWithOptions(fin, opts)
}

// lengthUnits maps absolute CSS units to user units (px).
var lengthUnits = map[string]float64{
	"px": 1,
	"pt": 4. / 3,
	"pc": 16,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
}

// parseLength parses an absolute length, such as "12", "12px" or "3.5cm".
// Relative units (%, em) are not supported.
func parseLength(v string) (float64, error) {
	v = strings.TrimSpace(v)
	factor := 1.
	for unit, f := range lengthUnits {
		if strings.HasSuffix(v, unit) {
			v, factor = strings.TrimSuffix(v, unit), f
			break
		}
	}
	f, err := svgpath.ParseFloat(v)
	return f * factor, err
}

// IntrinsicSize returns the size defined by the width and height
// attributes of the root element, if both are usable.
func (s *Document) IntrinsicSize() (w, h float64, ok bool) {
	if s.Width == "" || s.Height == "" {
		return 0, 0, false
	}
	w, errW := parseLength(s.Width)
	h, errH := parseLength(s.Height)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// ViewportTransform returns the matrix mapping the view box
// onto the intrinsic size, preserving the aspect ratio and centering
// the content (the default "xMidYMid meet" behavior).
// Without intrinsic size, the view box origin is simply moved to (0,0).
func (s *Document) ViewportTransform() svgpath.Matrix2D {
	vb := s.ViewBox
	w, h, ok := s.IntrinsicSize()
	if !ok || vb.W <= 0 || vb.H <= 0 {
		return svgpath.Identity.Translate(-vb.X, -vb.Y)
	}
	scale := min(w/vb.W, h/vb.H)
	tx, ty := (w-vb.W*scale)/2, (h-vb.H*scale)/2
	return svgpath.Identity.Translate(tx, ty).Scale(scale, scale).Translate(-vb.X, -vb.Y)
}
