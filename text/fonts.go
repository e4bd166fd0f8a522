// Package text lays out and paints paragraphs of styled text runs.
//
// Shaping and line breaking are delegated to go-text/typesetting, while
// glyph outlines and font metrics are read with golang.org/x/image/font/sfnt,
// so that glyphs are filled as regular paths through a canvas.
package text

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrInvalidFont is returned (wrapped) when font data can't be parsed.
var ErrInvalidFont = errors.New("text: invalid font data")

// Typeface is a font file parsed for shaping (go-text)
// and for outlines and metrics (sfnt).
type Typeface struct {
	face     *font.Face
	outlines *sfnt.Font
	buf      sfnt.Buffer
}

// ParseTypeface parses TrueType or OpenType data.
func ParseTypeface(data []byte) (*Typeface, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFont, err)
	}
	outlines, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFont, err)
	}
	return &Typeface{face: face, outlines: outlines}, nil
}

// Name returns the family name stored in the font, or an empty string.
func (tf *Typeface) Name() string {
	name, err := tf.outlines.Name(&tf.buf, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

// Metrics holds the vertical metrics of a face at a given size, in pixels.
// Ascent and Descent are positive.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// LineHeight is the distance between two consecutive baselines.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// Metrics returns the metrics of the face at the given size.
func (tf *Typeface) Metrics(size float64) Metrics {
	m, err := tf.outlines.Metrics(&tf.buf, fixed.Int26_6(size*64), xfont.HintingNone)
	if err != nil {
		return Metrics{Ascent: size * 0.8, Descent: size * 0.2}
	}
	asc, desc := fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
	return Metrics{
		Ascent:  asc,
		Descent: desc,
		LineGap: max(0, fixedToFloat(m.Height)-asc-desc),
	}
}

// loadGlyph returns the outline of the glyph, scaled to size, with
// the origin on the baseline and the Y axis pointing down.
// The returned segments are not shared.
func (tf *Typeface) loadGlyph(gid sfnt.GlyphIndex, size float64) ([]sfnt.Segment, error) {
	segments, err := tf.outlines.LoadGlyph(&tf.buf, gid, fixed.Int26_6(size*64), nil)
	if err != nil {
		return nil, err
	}
	return append([]sfnt.Segment(nil), segments...), nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

func floatToFixed(f float64) fixed.Int26_6 { return fixed.Int26_6(f * 64) }

// DefaultFamily is the family name of the fallback typeface.
const DefaultFamily = "Go Regular"

// FontCollection maps family names to typefaces.
// Unknown families resolve to the default typeface (Go Regular).
type FontCollection struct {
	families map[string]*Typeface
	fallback *Typeface
}

// NewFontCollection returns a collection with only the default typeface.
func NewFontCollection() *FontCollection {
	fallback, err := ParseTypeface(goregular.TTF)
	if err != nil {
		// embedded data: can't happen
		panic(err)
	}
	return &FontCollection{
		families: map[string]*Typeface{DefaultFamily: fallback},
		fallback: fallback,
	}
}

// RegisterTypeface parses data and registers it under family.
// On failure the collection is unchanged.
func (fc *FontCollection) RegisterTypeface(data []byte, family string) error {
	tf, err := ParseTypeface(data)
	if err != nil {
		return fmt.Errorf("registering %q: %w", family, err)
	}
	fc.families[family] = tf
	return nil
}

// Lookup returns the typeface registered for family, falling
// back to the default one. The boolean is false for the fallback.
func (fc *FontCollection) Lookup(family string) (*Typeface, bool) {
	if tf, ok := fc.families[family]; ok {
		return tf, true
	}
	return fc.fallback, false
}

// Families returns the registered family names, sorted.
func (fc *FontCollection) Families() []string {
	out := make([]string, 0, len(fc.families))
	for name := range fc.families {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
