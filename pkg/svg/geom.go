package svg

import (
	"math"

	"github.com/srwiley/rasterx"
)

// Point is a 2D coordinate.
type Point struct{ X, Y float64 }

func (p Point) add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Matrix is a 2D affine transform mapping (x, y) to
// (A*x + C*y + E, B*x + D*y + F).
type Matrix = rasterx.Matrix2D

// Identity is the identity transform.
var Identity = rasterx.Identity

// Apply transforms p by m.
func Apply(m Matrix, p Point) Point {
	x, y := m.Transform(p.X, p.Y)
	return Point{x, y}
}

// Rect is an axis-aligned rectangle.
type Rect struct{ MinX, MinY, MaxX, MaxY float64 }

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.MaxX <= r.MinX || r.MaxY <= r.MinY }

func (r Rect) union(o Rect) Rect {
	return Rect{math.Min(r.MinX, o.MinX), math.Min(r.MinY, o.MinY), math.Max(r.MaxX, o.MaxX), math.Max(r.MaxY, o.MaxY)}
}

func (r *Rect) extend(p Point) {
	r.MinX = math.Min(r.MinX, p.X)
	r.MinY = math.Min(r.MinY, p.Y)
	r.MaxX = math.Max(r.MaxX, p.X)
	r.MaxY = math.Max(r.MaxY, p.Y)
}

// =============================================================================
// Contours
// =============================================================================

// SegmentKind identifies the curve type of a segment.
type SegmentKind uint8

const (
	LineTo SegmentKind = iota
	QuadTo
	CubicTo
)

// Segment is one piece of a contour. Ctrl holds one control point for QuadTo
// and two for CubicTo; it is unused for LineTo.
type Segment struct {
	Kind SegmentKind
	Ctrl [2]Point
	To   Point
}

// Contour is a closed outline starting at Start. The closing edge back to
// Start is implicit.
type Contour struct {
	Start    Point
	Segments []Segment
}

// Transform returns c with m applied to every point.
func (c Contour) Transform(m Matrix) Contour {
	out := Contour{Start: Apply(m, c.Start), Segments: make([]Segment, len(c.Segments))}
	for i, s := range c.Segments {
		out.Segments[i] = Segment{
			Kind: s.Kind,
			Ctrl: [2]Point{Apply(m, s.Ctrl[0]), Apply(m, s.Ctrl[1])},
			To:   Apply(m, s.To),
		}
	}
	return out
}

// Bounds returns the bounding box of the contour's control polygon, which
// always contains the curve.
func (c Contour) Bounds() Rect {
	r := Rect{c.Start.X, c.Start.Y, c.Start.X, c.Start.Y}
	for _, s := range c.Segments {
		switch s.Kind {
		case QuadTo:
			r.extend(s.Ctrl[0])
		case CubicTo:
			r.extend(s.Ctrl[0])
			r.extend(s.Ctrl[1])
		}
		r.extend(s.To)
	}
	return r
}

// Polygon flattens c into a polygon, sampling each curve at n steps.
func (c Contour) Polygon(n int) []Point {
	if n < 1 {
		n = 1
	}
	pts := []Point{c.Start}
	cur := c.Start
	for _, s := range c.Segments {
		switch s.Kind {
		case LineTo:
			pts = append(pts, s.To)
		case QuadTo:
			for i := 1; i <= n; i++ {
				pts = append(pts, evalQuad(cur, s.Ctrl[0], s.To, float64(i)/float64(n)))
			}
		case CubicTo:
			for i := 1; i <= n; i++ {
				pts = append(pts, evalCubic(cur, s.Ctrl[0], s.Ctrl[1], s.To, float64(i)/float64(n)))
			}
		}
		cur = s.To
	}
	return pts
}

// SignedArea returns the shoelace area of the flattened contour. It is
// positive for counter-clockwise contours in a y-up coordinate system.
func (c Contour) SignedArea() float64 {
	pts := c.Polygon(8)
	var a float64
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// Reverse returns c traversed in the opposite direction.
func (c Contour) Reverse() Contour {
	if len(c.Segments) == 0 {
		return c
	}
	// Vertex i is the start of segment i; the last segment ends at vertex n.
	n := len(c.Segments)
	verts := make([]Point, n+1)
	verts[0] = c.Start
	for i, s := range c.Segments {
		verts[i+1] = s.To
	}

	out := Contour{Start: verts[n], Segments: make([]Segment, 0, n)}
	for i := n - 1; i >= 0; i-- {
		s := c.Segments[i]
		r := Segment{Kind: s.Kind, To: verts[i]}
		switch s.Kind {
		case QuadTo:
			r.Ctrl[0] = s.Ctrl[0]
		case CubicTo:
			r.Ctrl[0], r.Ctrl[1] = s.Ctrl[1], s.Ctrl[0]
		}
		out.Segments = append(out.Segments, r)
	}
	return out
}

// Bounds returns the union of the bounds of cs. ok is false when cs is empty.
func Bounds(cs []Contour) (r Rect, ok bool) {
	for i, c := range cs {
		if i == 0 {
			r = c.Bounds()
			continue
		}
		r = r.union(c.Bounds())
	}
	return r, len(cs) > 0
}

func evalQuad(p0, p1, p2 Point, t float64) Point {
	mt := 1 - t
	return Point{
		mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}

func evalCubic(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
	return Point{
		a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
