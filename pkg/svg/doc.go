// Package svg extracts fillable outlines from SVG icon files.
//
// # Overview
//
// Icon fonts only need the filled geometry of an icon. This package parses an
// SVG document, walks its element tree and converts every filled shape into
// closed [Contour] values made of line, quadratic and cubic segments, with all
// element transforms already applied. Everything that does not contribute
// fill (strokes, gradients, text, hidden subtrees, <defs>) is ignored.
//
// # Supported Input
//
// Elements: <svg>, <g>, <path>, <rect> (with rx/ry), <circle>, <ellipse>,
// <polygon> and <polyline>. Attributes: viewBox, width, height, transform,
// fill, fill-rule, display and their inline style equivalents. Path data
// supports the full command set, including elliptical arcs which are
// converted to cubic Béziers.
//
// Path data is compiled by [github.com/srwiley/oksvg] and shapes are drawn
// with the [github.com/srwiley/rasterx] helpers, so coordinates carry 26.6
// fixed-point precision (1/64 of a user unit). The element walk stays here
// because oksvg applies transforms internally and does not expose the
// resulting geometry.
//
// # Font Conversion Helpers
//
// TrueType outlines use quadratic curves only, and rasterisers fill with the
// nonzero rule. [Contour.Quadratic] approximates cubics within a tolerance
// and [Orient] rewinds contours by nesting depth so that shapes authored with
// fill-rule="evenodd" keep their holes.
//
// # Usage
//
//	icon, err := svg.Parse(r)
//	if err != nil {
//	    return err
//	}
//	for _, s := range icon.Shapes {
//	    // s.Contours are in viewBox user space
//	}
package svg
