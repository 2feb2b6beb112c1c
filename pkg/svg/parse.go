package svg

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"

	"github.com/matzehuels/iconfont/pkg/errors"
)

// Shape is the filled outline of one element. EvenOdd records the element's
// fill rule.
type Shape struct {
	Contours []Contour
	EvenOdd  bool
}

// Icon is a parsed SVG document reduced to its filled geometry.
type Icon struct {
	// ViewBox is the user-space rectangle the icon is drawn in. It falls back
	// to width/height and then to the bounds of the geometry.
	ViewBox Rect

	Shapes []Shape
}

// Contours returns all contours of the icon in document order.
func (ic *Icon) Contours() []Contour {
	var out []Contour
	for _, s := range ic.Shapes {
		out = append(out, s.Contours...)
	}
	return out
}

// skipped elements never contribute fill, nor do their descendants.
var skipped = map[string]bool{
	"defs": true, "clipPath": true, "mask": true, "symbol": true,
	"title": true, "desc": true, "metadata": true, "style": true,
	"linearGradient": true, "radialGradient": true, "pattern": true,
	"marker": true, "filter": true, "text": true, "script": true,
}

// state is the inherited rendering state of an element.
type state struct {
	m       Matrix
	noFill  bool
	evenOdd bool
	skip    bool
}

// Parse reads an SVG document. Malformed XML, a missing <svg> root and
// invalid geometry attributes are reported as INVALID_SVG errors.
func Parse(r io.Reader) (*Icon, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	ic := &Icon{}
	var stack []state
	var haveRoot, haveViewBox bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSVG, err, "malformed svg")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			attrs := attrMap(t.Attr)
			name := t.Name.Local

			if !haveRoot {
				if name != "svg" {
					return nil, errors.New(errors.ErrCodeInvalidSVG, "root element is <%s>, want <svg>", name)
				}
				haveRoot = true
				ic.ViewBox, haveViewBox = rootViewBox(attrs)
				stack = append(stack, state{m: Identity}.inherit(attrs))
				continue
			}

			parent := stack[len(stack)-1]
			st := parent.inherit(attrs)
			if parent.skip || skipped[name] {
				st.skip = true
			}
			if !st.skip {
				if tr, ok := attrs["transform"]; ok {
					m, err := ParseTransform(tr)
					if err != nil {
						return nil, errors.Wrap(errors.ErrCodeInvalidSVG, err, "<%s> transform", name)
					}
					st.m = st.m.Mult(m)
				}
			}
			stack = append(stack, st)

			if st.skip || st.noFill {
				continue
			}
			contours, err := elementContours(name, attrs, st.m)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidSVG, err, "<%s>", name)
			}
			if len(contours) == 0 {
				continue
			}
			ic.Shapes = append(ic.Shapes, Shape{Contours: contours, EvenOdd: st.evenOdd})

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !haveRoot {
		return nil, errors.New(errors.ErrCodeInvalidSVG, "no <svg> element")
	}
	if !haveViewBox {
		if b, ok := Bounds(ic.Contours()); ok {
			ic.ViewBox = b
		}
	}
	return ic, nil
}

// inherit derives a child state from s and the element's own attributes.
func (s state) inherit(attrs map[string]string) state {
	st := s
	if v, ok := attrs["fill"]; ok {
		st.noFill = strings.TrimSpace(v) == "none"
	}
	if v, ok := attrs["fill-rule"]; ok {
		st.evenOdd = strings.TrimSpace(v) == "evenodd"
	}
	if v := strings.TrimSpace(attrs["display"]); v == "none" {
		st.skip = true
	}
	if v := strings.TrimSpace(attrs["visibility"]); v == "hidden" || v == "collapse" {
		st.noFill = true
	}
	return st
}

// attrMap flattens XML attributes and inline style declarations into one map.
// Style declarations win over presentation attributes.
func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Name.Space != "" {
			continue
		}
		m[a.Name.Local] = a.Value
	}
	if style, ok := m["style"]; ok {
		for _, decl := range strings.Split(style, ";") {
			k, v, found := strings.Cut(decl, ":")
			if !found {
				continue
			}
			m[strings.TrimSpace(k)] = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important"))
		}
	}
	return m
}

func rootViewBox(attrs map[string]string) (Rect, bool) {
	if vb, ok := attrs["viewBox"]; ok {
		nums, err := parseNumberList(vb)
		if err == nil && len(nums) == 4 && nums[2] > 0 && nums[3] > 0 {
			return Rect{nums[0], nums[1], nums[0] + nums[2], nums[1] + nums[3]}, true
		}
	}
	w, h := length(attrs["width"]), length(attrs["height"])
	if w > 0 && h > 0 {
		return Rect{0, 0, w, h}, true
	}
	return Rect{}, false
}

// =============================================================================
// Shapes
// =============================================================================

// elementContours draws a shape element through m with the rasterx shape
// helpers and collects the result.
func elementContours(name string, a map[string]string, m Matrix) ([]Contour, error) {
	var b contourBuilder
	ma := &rasterx.MatrixAdder{Adder: &b, M: m}

	switch name {
	case "path":
		if err := addPathData(a["d"], ma); err != nil {
			return nil, err
		}
	case "rect":
		addRect(length(a["x"]), length(a["y"]), length(a["width"]), length(a["height"]), a, ma)
	case "circle":
		if r := length(a["r"]); r > 0 {
			rasterx.AddCircle(length(a["cx"]), length(a["cy"]), r, ma)
		}
	case "ellipse":
		if rx, ry := length(a["rx"]), length(a["ry"]); rx > 0 && ry > 0 {
			rasterx.AddEllipse(length(a["cx"]), length(a["cy"]), rx, ry, 0, ma)
		}
	case "polygon", "polyline":
		if err := addPoly(a["points"], ma); err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}
	return b.finish(), nil
}

func addRect(x, y, w, h float64, a map[string]string, p rasterx.Adder) {
	if w <= 0 || h <= 0 {
		return
	}
	rx, hasRX := a["rx"]
	ry, hasRY := a["ry"]
	rX, rY := length(rx), length(ry)
	switch {
	case hasRX && !hasRY:
		rY = rX
	case hasRY && !hasRX:
		rX = rY
	}
	rX = math.Min(math.Max(rX, 0), w/2)
	rY = math.Min(math.Max(rY, 0), h/2)
	rasterx.AddRoundRect(x, y, x+w, y+h, rX, rY, 0, rasterx.RoundGap, p)
}

func addPoly(points string, p rasterx.Adder) error {
	nums, err := parseNumberList(points)
	if err != nil {
		return err
	}
	if len(nums) < 4 {
		return nil
	}
	// An odd trailing coordinate is ignored.
	p.Start(rasterx.ToFixedP(nums[0], nums[1]))
	for i := 2; i+1 < len(nums); i += 2 {
		p.Line(rasterx.ToFixedP(nums[i], nums[i+1]))
	}
	p.Stop(true)
	return nil
}

// =============================================================================
// Attribute values
// =============================================================================

// length parses a length attribute, accepting a trailing "px". Other units
// and percentages yield 0.
func length(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseNumberList(s string) ([]float64, error) {
	var out []float64
	i := 0
	for {
		for i < len(s) && (s[i] == ' ' || s[i] == ',' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
			i++
		}
		if i >= len(s) {
			return out, nil
		}
		v, end := scanNumber(s, i)
		if end == i {
			return nil, fmt.Errorf("invalid number at offset %d in %q", i, s)
		}
		out = append(out, v)
		i = end
	}
}

// ParseTransform parses an SVG transform list into a single matrix.
func ParseTransform(s string) (Matrix, error) {
	m := Identity
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		closeIdx := strings.IndexByte(rest, ')')
		if open < 0 || closeIdx < open {
			return Identity, fmt.Errorf("invalid transform %q", s)
		}
		fn := strings.TrimSpace(rest[:open])
		args, err := parseNumberList(rest[open+1 : closeIdx])
		if err != nil {
			return Identity, err
		}
		if m, err = applyTransform(m, fn, args); err != nil {
			return Identity, err
		}
		rest = strings.TrimLeft(rest[closeIdx+1:], " ,\t\n\r")
	}
	return m, nil
}

// applyTransform post-multiplies m by one transform function. Angles are
// in degrees.
func applyTransform(m Matrix, fn string, a []float64) (Matrix, error) {
	argc := func(ns ...int) error {
		for _, n := range ns {
			if len(a) == n {
				return nil
			}
		}
		return fmt.Errorf("%s: unexpected argument count %d", fn, len(a))
	}
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	switch fn {
	case "matrix":
		if err := argc(6); err != nil {
			return m, err
		}
		return m.Mult(Matrix{A: a[0], B: a[1], C: a[2], D: a[3], E: a[4], F: a[5]}), nil
	case "translate":
		if err := argc(1, 2); err != nil {
			return m, err
		}
		if len(a) == 1 {
			return m.Translate(a[0], 0), nil
		}
		return m.Translate(a[0], a[1]), nil
	case "scale":
		if err := argc(1, 2); err != nil {
			return m, err
		}
		if len(a) == 1 {
			return m.Scale(a[0], a[0]), nil
		}
		return m.Scale(a[0], a[1]), nil
	case "rotate":
		if err := argc(1, 3); err != nil {
			return m, err
		}
		if len(a) == 1 {
			return m.Rotate(rad(a[0])), nil
		}
		return m.Translate(a[1], a[2]).Rotate(rad(a[0])).Translate(-a[1], -a[2]), nil
	case "skewX":
		if err := argc(1); err != nil {
			return m, err
		}
		return m.SkewX(rad(a[0])), nil
	case "skewY":
		if err := argc(1); err != nil {
			return m, err
		}
		return m.SkewY(rad(a[0])), nil
	}
	return m, fmt.Errorf("unknown transform function %q", fn)
}
