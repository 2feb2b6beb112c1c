package fontgen

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/iconfont/pkg/svg"
)

// ttPoint is a TrueType outline point in font units.
type ttPoint struct {
	X, Y int16
	On   bool
}

// outline is one glyph converted to font space.
type outline struct {
	name      string
	codepoint rune
	advance   int

	// contours are y-up quadratic contours used by the svg font.
	contours []svg.Contour
	// points are the rounded TrueType contours used by glyf.
	points [][]ttPoint

	xMin, yMin, xMax, yMax int16
}

func (o outline) empty() bool { return len(o.points) == 0 }

func (o outline) numPoints() int {
	n := 0
	for _, c := range o.points {
		n += len(c)
	}
	return n
}

// buildOutline parses a source and maps it into font space: the viewBox is
// scaled to FontHeight, y is flipped, the baseline sits Descent units above
// the viewBox bottom and the outline is optionally centred in its advance.
func buildOutline(e entry, req Request) (outline, error) {
	icon, err := svg.Parse(bytes.NewReader(e.data))
	if err != nil {
		return outline{}, err
	}

	vb := icon.ViewBox
	scale := 1.0
	if req.Normalize && vb.Height() > 0 {
		scale = float64(req.FontHeight) / vb.Height()
	}
	toFont := svg.Matrix{A: scale, D: -scale, E: -vb.MinX * scale, F: vb.MaxY*scale - float64(req.Descent)}

	advance := req.FixedWidth
	if advance <= 0 {
		advance = int(math.Round(vb.Width() * scale))
	}
	if advance <= 0 {
		advance = req.FontHeight
	}

	var contours []svg.Contour
	for _, shape := range icon.Shapes {
		cs := make([]svg.Contour, len(shape.Contours))
		for i, c := range shape.Contours {
			cs[i] = c.Transform(toFont)
		}
		if shape.EvenOdd {
			cs = svg.Orient(cs)
		}
		contours = append(contours, cs...)
	}

	if req.CenterHorizontally {
		if b, ok := svg.Bounds(contours); ok {
			dx := (float64(advance)-b.Width())/2 - b.MinX
			for i := range contours {
				contours[i] = contours[i].Transform(svg.Identity.Translate(dx, 0))
			}
		}
	}

	o := outline{name: e.name, codepoint: e.codepoint, advance: advance}
	for _, c := range contours {
		q := c.Quadratic(CurveTolerance)
		pts := toTTPoints(q)
		if len(pts) < 2 {
			continue
		}
		o.contours = append(o.contours, q)
		o.points = append(o.points, pts)
	}
	if err := o.computeBounds(); err != nil {
		return outline{}, err
	}
	return o, nil
}

// toTTPoints rounds a quadratic contour into TrueType points. Consecutive
// duplicate points and a closing point equal to the start are dropped.
func toTTPoints(c svg.Contour) []ttPoint {
	pts := []ttPoint{roundPoint(c.Start, true)}
	push := func(p ttPoint) {
		last := pts[len(pts)-1]
		if last.X == p.X && last.Y == p.Y && last.On && p.On {
			return
		}
		pts = append(pts, p)
	}
	for _, s := range c.Segments {
		if s.Kind == svg.QuadTo {
			push(roundPoint(s.Ctrl[0], false))
		}
		push(roundPoint(s.To, true))
	}
	if n := len(pts); n > 1 && pts[n-1].On && pts[n-1].X == pts[0].X && pts[n-1].Y == pts[0].Y {
		pts = pts[:n-1]
	}
	return pts
}

func roundPoint(p svg.Point, on bool) ttPoint {
	return ttPoint{X: clamp16(p.X), Y: clamp16(p.Y), On: on}
}

func clamp16(v float64) int16 {
	v = math.Round(v)
	return int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, v)))
}

func (o *outline) computeBounds() error {
	if o.empty() {
		return nil
	}
	o.xMin, o.yMin = math.MaxInt16, math.MaxInt16
	o.xMax, o.yMax = math.MinInt16, math.MinInt16
	for _, c := range o.points {
		for _, p := range c {
			o.xMin, o.xMax = min(o.xMin, p.X), max(o.xMax, p.X)
			o.yMin, o.yMax = min(o.yMin, p.Y), max(o.yMax, p.Y)
		}
	}
	if o.numPoints() > math.MaxUint16 {
		return fmt.Errorf("glyph has %d points, limit is %d", o.numPoints(), math.MaxUint16)
	}
	return nil
}

// pathData renders the glyph's quadratic contours as SVG path data in font
// coordinates, as used by SVG fonts.
func (o outline) pathData() string {
	var b strings.Builder
	for _, c := range o.contours {
		fmt.Fprintf(&b, "M%s %s", num(c.Start.X), num(c.Start.Y))
		for _, s := range c.Segments {
			switch s.Kind {
			case svg.QuadTo:
				fmt.Fprintf(&b, "Q%s %s %s %s", num(s.Ctrl[0].X), num(s.Ctrl[0].Y), num(s.To.X), num(s.To.Y))
			default:
				fmt.Fprintf(&b, "L%s %s", num(s.To.X), num(s.To.Y))
			}
		}
		b.WriteString("Z")
	}
	return b.String()
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // normalises -0
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
