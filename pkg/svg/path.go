package svg

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// ParsePathData parses an SVG path "d" attribute into contours. Subpaths are
// implicitly closed, and subpaths without segments are dropped.
func ParsePathData(d string) ([]Contour, error) {
	var b contourBuilder
	if err := addPathData(d, &b); err != nil {
		return nil, err
	}
	return b.finish(), nil
}

// addPathData compiles d with oksvg and replays it into a.
func addPathData(d string, a rasterx.Adder) error {
	norm, err := normalizePathData(d)
	if err != nil {
		return err
	}
	pc := oksvg.PathCursor{ErrorMode: oksvg.StrictErrorMode}
	if err := pc.CompilePath(norm); err != nil {
		return fmt.Errorf("path data: %w", err)
	}
	pc.Path.AddTo(a)
	return nil
}

// =============================================================================
// Normalisation
// =============================================================================

// pathArity is the number of arguments per command.
var pathArity = map[byte]int{
	'M': 2, 'L': 2, 'T': 2, 'H': 1, 'V': 1,
	'C': 6, 'S': 4, 'Q': 4, 'A': 7, 'Z': 0,
}

// normalizePathData validates d and rewrites it into the subset oksvg reads
// reliably: one command letter per argument group, plain decimal numbers,
// separated arc flags and absolute arc radii. Zero-radius arcs become lines
// and zero-length arcs are dropped.
func normalizePathData(d string) (string, error) {
	var b strings.Builder
	var cmd byte
	var cur, start Point

	i := 0
	for {
		i = skipSeparators(d, i)
		if i >= len(d) {
			break
		}
		c := d[i]
		switch {
		case isCommand(c):
			if cmd == 0 && c != 'M' && c != 'm' {
				return "", fmt.Errorf("path data must start with a moveto, got %q", c)
			}
			cmd = c
			i++
		case cmd == 0:
			return "", fmt.Errorf("path data must start with a command at offset %d", i)
		case cmd == 'Z' || cmd == 'z':
			return "", fmt.Errorf("unexpected %q after closepath at offset %d", c, i)
		}

		upper := cmd &^ 0x20
		if upper == 'Z' {
			b.WriteString("Z ")
			cur = start
			continue
		}

		args := make([]float64, pathArity[upper])
		for k := range args {
			i = skipSeparators(d, i)
			if upper == 'A' && (k == 3 || k == 4) {
				if i >= len(d) || (d[i] != '0' && d[i] != '1') {
					return "", fmt.Errorf("invalid arc flag at offset %d", i)
				}
				args[k] = float64(d[i] - '0')
				i++
				continue
			}
			v, end := scanNumber(d, i)
			if end == i {
				return "", fmt.Errorf("expected number at offset %d", i)
			}
			args[k] = v
			i = end
		}

		rel := cmd != upper
		to := endpoint(upper, args, cur, rel)
		out := cmd
		switch {
		case upper != 'A':
		case to == cur:
			continue
		case args[0] == 0 || args[1] == 0:
			out = 'L' | (cmd & 0x20)
			args = args[5:]
		default:
			args[0], args[1] = math.Abs(args[0]), math.Abs(args[1])
		}

		b.WriteByte(out)
		for _, v := range args {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		}
		b.WriteByte(' ')

		cur = to
		// Coordinates following a moveto are implicit linetos.
		switch cmd {
		case 'M':
			start, cmd = to, 'L'
		case 'm':
			start, cmd = to, 'l'
		}
	}
	return b.String(), nil
}

// endpoint returns where a command with args leaves the current point.
func endpoint(upper byte, args []float64, cur Point, rel bool) Point {
	var to Point
	switch upper {
	case 'H':
		to = Point{args[0], cur.Y}
		if rel {
			to.X += cur.X
		}
	case 'V':
		to = Point{cur.X, args[0]}
		if rel {
			to.Y += cur.Y
		}
	default:
		n := len(args)
		to = Point{args[n-2], args[n-1]}
		if rel {
			to = to.add(cur)
		}
	}
	return to
}

// =============================================================================
// Contour collection
// =============================================================================

// contourBuilder is a rasterx.Adder that records what it is given as
// contours in float coordinates.
type contourBuilder struct {
	contours []Contour
	cur      *Contour
	last     Point
}

func fromFixed(p fixed.Point26_6) Point {
	return Point{float64(p.X) / 64, float64(p.Y) / 64}
}

func (b *contourBuilder) Start(a fixed.Point26_6) {
	b.Stop(false)
	b.last = fromFixed(a)
	b.cur = &Contour{Start: b.last}
}

func (b *contourBuilder) Line(p fixed.Point26_6) {
	b.add(Segment{Kind: LineTo, To: fromFixed(p)})
}

func (b *contourBuilder) QuadBezier(c, p fixed.Point26_6) {
	b.add(Segment{Kind: QuadTo, Ctrl: [2]Point{fromFixed(c)}, To: fromFixed(p)})
}

func (b *contourBuilder) CubeBezier(c1, c2, p fixed.Point26_6) {
	b.add(Segment{Kind: CubicTo, Ctrl: [2]Point{fromFixed(c1), fromFixed(c2)}, To: fromFixed(p)})
}

func (b *contourBuilder) add(s Segment) {
	if b.cur == nil {
		b.cur = &Contour{Start: b.last}
	}
	b.cur.Segments = append(b.cur.Segments, s)
	b.last = s.To
}

// Stop ends the current contour. Contours always close, so a trailing line
// back to the start is dropped.
func (b *contourBuilder) Stop(bool) {
	if b.cur == nil {
		return
	}
	c := *b.cur
	b.cur = nil
	b.last = c.Start
	if n := len(c.Segments); n > 0 && c.Segments[n-1].Kind == LineTo && c.Segments[n-1].To == c.Start {
		c.Segments = c.Segments[:n-1]
	}
	if len(c.Segments) > 0 {
		b.contours = append(b.contours, c)
	}
}

func (b *contourBuilder) finish() []Contour {
	b.Stop(false)
	return b.contours
}

// =============================================================================
// Tokens
// =============================================================================

func isCommand(c byte) bool {
	_, ok := pathArity[c&^0x20]
	return ok
}

func skipSeparators(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			i++
		default:
			return i
		}
	}
	return i
}

// scanNumber parses a number starting at i and returns it with the end
// offset. end == i means no number was found. "1.5.5" yields 1.5 then .5
// and "1-2" yields 1 then -2.
func scanNumber(s string, i int) (float64, int) {
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, start
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	v, err := strconv.ParseFloat(s[start:i], 64)
	if err != nil {
		return 0, start
	}
	return v, i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
