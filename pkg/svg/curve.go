package svg

import "math"

// maxSplitDepth bounds cubic subdivision. 2^8 quads per cubic is far beyond
// what any icon needs at a tolerance of one font unit.
const maxSplitDepth = 8

// Quadratic returns c with every cubic segment replaced by quadratic segments
// that stay within tol of the original curve.
func (c Contour) Quadratic(tol float64) Contour {
	out := Contour{Start: c.Start, Segments: make([]Segment, 0, len(c.Segments))}
	cur := c.Start
	for _, s := range c.Segments {
		if s.Kind == CubicTo {
			out.Segments = cubicToQuads(out.Segments, cur, s.Ctrl[0], s.Ctrl[1], s.To, tol, 0)
		} else {
			out.Segments = append(out.Segments, s)
		}
		cur = s.To
	}
	return out
}

// cubicToQuads appends quadratic approximations of the cubic p0..p3.
// The single-quad error bound is sqrt(3)/36 * |p3 - 3p2 + 3p1 - p0|.
func cubicToQuads(dst []Segment, p0, p1, p2, p3 Point, tol float64, depth int) []Segment {
	d := p3.sub(p2.scale(3)).add(p1.scale(3)).sub(p0)
	errBound := math.Sqrt(3) / 36 * math.Hypot(d.X, d.Y)
	if errBound <= tol || depth >= maxSplitDepth {
		q := p1.scale(3).sub(p0).add(p2.scale(3)).sub(p3).scale(0.25)
		return append(dst, Segment{Kind: QuadTo, Ctrl: [2]Point{q}, To: p3})
	}

	// de Casteljau split at t = 0.5.
	p01, p12, p23 := p0.lerp(p1, 0.5), p1.lerp(p2, 0.5), p2.lerp(p3, 0.5)
	p012, p123 := p01.lerp(p12, 0.5), p12.lerp(p23, 0.5)
	mid := p012.lerp(p123, 0.5)

	dst = cubicToQuads(dst, p0, p01, p012, mid, tol, depth+1)
	return cubicToQuads(dst, mid, p123, p23, p3, tol, depth+1)
}

// Orient rewinds contours so that the result fills the same area under the
// nonzero rule as cs does under the even-odd rule. Contours at even nesting
// depth get negative signed area, odd depths positive. In a y-up coordinate
// system that is the TrueType convention of clockwise outer contours.
func Orient(cs []Contour) []Contour {
	polys := make([][]Point, len(cs))
	for i, c := range cs {
		polys[i] = c.Polygon(8)
	}

	out := make([]Contour, len(cs))
	for i, c := range cs {
		depth := 0
		sample := c.Start
		for j := range cs {
			if i != j && pointInPolygon(sample, polys[j]) {
				depth++
			}
		}
		area := c.SignedArea()
		wantNegative := depth%2 == 0
		if (wantNegative && area > 0) || (!wantNegative && area < 0) {
			c = c.Reverse()
		}
		out[i] = c
	}
	return out
}

// pointInPolygon is the even-odd ray casting test.
func pointInPolygon(p Point, poly []Point) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}
