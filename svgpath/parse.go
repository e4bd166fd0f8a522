package svgpath

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrSyntax is returned (wrapped) for malformed path data.
	ErrSyntax = errors.New("svgpath: invalid path data")

	errParamMismatch = fmt.Errorf("%w: wrong number of parameters", ErrSyntax)
)

// scanner splits path data into numbers and command letters.
// Numbers may be packed, as in "1.5.5" or "10-20".
type scanner struct {
	s   string
	pos int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func (sc *scanner) skipSpaces() {
	for sc.pos < len(sc.s) && isSpace(sc.s[sc.pos]) {
		sc.pos++
	}
}

// skipSeparator skips white spaces and at most one comma.
func (sc *scanner) skipSeparator() {
	sc.skipSpaces()
	if sc.pos < len(sc.s) && sc.s[sc.pos] == ',' {
		sc.pos++
		sc.skipSpaces()
	}
}

func (sc *scanner) done() bool { return sc.pos >= len(sc.s) }

// startsNumber returns true if a number starts at the current position.
func (sc *scanner) startsNumber() bool {
	if sc.done() {
		return false
	}
	c := sc.s[sc.pos]
	return isDigit(c) || c == '.' || c == '-' || c == '+'
}

// number reads a floating point value.
func (sc *scanner) number() (float64, error) {
	sc.skipSeparator()
	start := sc.pos
	i := sc.pos
	if i < len(sc.s) && (sc.s[i] == '-' || sc.s[i] == '+') {
		i++
	}
	digits, dot := 0, false
	for ; i < len(sc.s); i++ {
		c := sc.s[i]
		if isDigit(c) {
			digits++
		} else if c == '.' && !dot {
			dot = true
		} else {
			break
		}
	}
	if digits == 0 {
		return 0, fmt.Errorf("%w: expected number at offset %d", ErrSyntax, start)
	}
	// exponent, only if followed by digits
	if i < len(sc.s) && (sc.s[i] == 'e' || sc.s[i] == 'E') {
		j := i + 1
		if j < len(sc.s) && (sc.s[j] == '-' || sc.s[j] == '+') {
			j++
		}
		if j < len(sc.s) && isDigit(sc.s[j]) {
			for j < len(sc.s) && isDigit(sc.s[j]) {
				j++
			}
			i = j
		}
	}
	sc.pos = i
	f, err := strconv.ParseFloat(sc.s[start:i], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrSyntax, err)
	}
	return f, nil
}

// flag reads an arc flag, which may be packed without separator.
func (sc *scanner) flag() (bool, error) {
	sc.skipSeparator()
	if sc.done() {
		return false, fmt.Errorf("%w: expected flag", ErrSyntax)
	}
	switch sc.s[sc.pos] {
	case '0':
		sc.pos++
		return false, nil
	case '1':
		sc.pos++
		return true, nil
	}
	return false, fmt.Errorf("%w: invalid flag at offset %d", ErrSyntax, sc.pos)
}

// pathCursor is used to compile a path description.
type pathCursor struct {
	sc                     scanner
	path                   Path
	placeX, placeY         float64 // current point
	cntlPtX, cntlPtY       float64 // last control point, for smooth curves
	pathStartX, pathStartY float64
	lastKey                byte
	inPath                 bool
}

// Parse compiles a path description, expressed in the SVG path mini-language
// (M, L, H, V, C, S, Q, T, A, Z and their relative variants).
// An empty description yields an empty path.
func Parse(d string) (Path, error) {
	c := pathCursor{sc: scanner{s: d}}
	if err := c.compile(); err != nil {
		return nil, err
	}
	return c.path, nil
}

func isCommand(c byte) bool {
	return strings.IndexByte("MmLlHhVvCcSsQqTtAaZz", c) != -1
}

func (c *pathCursor) compile() error {
	for {
		c.sc.skipSeparator()
		if c.sc.done() {
			return nil
		}
		key := c.sc.s[c.sc.pos]
		switch {
		case isCommand(key):
			c.sc.pos++
		case c.lastKey != 0 && c.lastKey != 'Z' && c.lastKey != 'z' && c.sc.startsNumber():
			// implicit repetition of the previous command
			key = c.lastKey
			switch key {
			case 'M':
				key = 'L'
			case 'm':
				key = 'l'
			}
		default:
			return fmt.Errorf("%w: unexpected character %q at offset %d", ErrSyntax, key, c.sc.pos)
		}
		if c.lastKey == 0 && key != 'M' && key != 'm' {
			return fmt.Errorf("%w: path must start with a move command", ErrSyntax)
		}
		if err := c.command(key); err != nil {
			return err
		}
		c.lastKey = key
	}
}

// readPair reads a point, relative to the current point if rel is true.
func (c *pathCursor) readPair(rel bool) (x, y float64, err error) {
	if x, err = c.sc.number(); err != nil {
		return
	}
	if y, err = c.sc.number(); err != nil {
		return
	}
	if rel {
		x += c.placeX
		y += c.placeY
	}
	return
}

// reflectControl returns the reflection of the previous control point,
// when the previous command was one of the given curve kinds,
// or the current point otherwise.
func (c *pathCursor) reflectControl(kinds string) (float64, float64) {
	if strings.IndexByte(kinds, c.lastKey) != -1 {
		return 2*c.placeX - c.cntlPtX, 2*c.placeY - c.cntlPtY
	}
	return c.placeX, c.placeY
}

func (c *pathCursor) command(key byte) error {
	rel := 'a' <= key && key <= 'z'
	switch key {
	case 'Z', 'z':
		c.path.Stop(true)
		c.placeX, c.placeY = c.pathStartX, c.pathStartY
		c.inPath = false
	case 'M', 'm':
		x, y, err := c.readPair(rel)
		if err != nil {
			return err
		}
		c.path.Start(ToFixedP(x, y))
		c.placeX, c.placeY = x, y
		c.pathStartX, c.pathStartY = x, y
		c.inPath = true
	case 'L', 'l':
		x, y, err := c.readPair(rel)
		if err != nil {
			return err
		}
		c.lineTo(x, y)
	case 'H', 'h':
		x, err := c.sc.number()
		if err != nil {
			return err
		}
		if rel {
			x += c.placeX
		}
		c.lineTo(x, c.placeY)
	case 'V', 'v':
		y, err := c.sc.number()
		if err != nil {
			return err
		}
		if rel {
			y += c.placeY
		}
		c.lineTo(c.placeX, y)
	case 'C', 'c':
		var pts [6]float64
		for i := 0; i < 3; i++ {
			x, y, err := c.readPair(rel)
			if err != nil {
				return err
			}
			pts[2*i], pts[2*i+1] = x, y
		}
		c.cubicTo(pts)
	case 'S', 's':
		x1, y1 := c.reflectControl("CcSs")
		var pts [6]float64
		pts[0], pts[1] = x1, y1
		for i := 1; i < 3; i++ {
			x, y, err := c.readPair(rel)
			if err != nil {
				return err
			}
			pts[2*i], pts[2*i+1] = x, y
		}
		c.cubicTo(pts)
	case 'Q', 'q':
		x1, y1, err := c.readPair(rel)
		if err != nil {
			return err
		}
		x, y, err := c.readPair(rel)
		if err != nil {
			return err
		}
		c.quadTo(x1, y1, x, y)
	case 'T', 't':
		x1, y1 := c.reflectControl("QqTt")
		x, y, err := c.readPair(rel)
		if err != nil {
			return err
		}
		c.quadTo(x1, y1, x, y)
	case 'A', 'a':
		return c.arc(rel)
	}
	return nil
}

// ensureStarted opens an implicit sub-path after a close command.
func (c *pathCursor) ensureStarted() {
	if !c.inPath {
		c.path.Start(ToFixedP(c.placeX, c.placeY))
		c.pathStartX, c.pathStartY = c.placeX, c.placeY
		c.inPath = true
	}
}

func (c *pathCursor) lineTo(x, y float64) {
	c.ensureStarted()
	c.path.Line(ToFixedP(x, y))
	c.placeX, c.placeY = x, y
}

func (c *pathCursor) cubicTo(pts [6]float64) {
	c.ensureStarted()
	c.path.CubeBezier(ToFixedP(pts[0], pts[1]), ToFixedP(pts[2], pts[3]), ToFixedP(pts[4], pts[5]))
	c.cntlPtX, c.cntlPtY = pts[2], pts[3]
	c.placeX, c.placeY = pts[4], pts[5]
}

func (c *pathCursor) quadTo(x1, y1, x, y float64) {
	c.ensureStarted()
	c.path.QuadBezier(ToFixedP(x1, y1), ToFixedP(x, y))
	c.cntlPtX, c.cntlPtY = x1, y1
	c.placeX, c.placeY = x, y
}

func (c *pathCursor) arc(rel bool) error {
	var (
		a   arcParams
		err error
	)
	if a.rx, err = c.sc.number(); err != nil {
		return err
	}
	if a.ry, err = c.sc.number(); err != nil {
		return err
	}
	if a.rotation, err = c.sc.number(); err != nil {
		return err
	}
	if a.largeArc, err = c.sc.flag(); err != nil {
		return err
	}
	if a.sweep, err = c.sc.flag(); err != nil {
		return err
	}
	if a.x, a.y, err = c.readPair(rel); err != nil {
		return err
	}
	a.rx, a.ry = math.Abs(a.rx), math.Abs(a.ry)
	if a.rx == 0 || a.ry == 0 {
		c.lineTo(a.x, a.y)
		return nil
	}
	if a.x == c.placeX && a.y == c.placeY {
		return nil // zero length arc is omitted
	}
	c.ensureStarted()
	cx, cy := findEllipseCenter(&a.rx, &a.ry, a.rotation*math.Pi/180, c.placeX, c.placeY,
		a.x, a.y, a.sweep, !a.largeArc)
	c.placeX, c.placeY = c.path.addArc(a, cx, cy, c.placeX, c.placeY)
	return nil
}

// ParseFloat parses a number, accepting surrounding white spaces
// and a trailing "px" unit.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	return strconv.ParseFloat(s, 64)
}

// ReadNumbers parses a list of numbers separated by commas or
// white spaces, such as SVG viewBox or points attributes.
func ReadNumbers(s string) ([]float64, error) {
	sc := scanner{s: s}
	var out []float64
	for {
		sc.skipSeparator()
		if sc.done() {
			return out, nil
		}
		f, err := sc.number()
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
}
