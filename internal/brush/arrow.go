package brush

import (
	"image"
	"math"
)

// arrowHeadLength returns the head length for a line of the given radius.
// Heads grow with the line width so thick arrows stay readable.
func arrowHeadLength(radius float64) float64 {
	return 6 + 4*radius
}

// arrowCoverage builds the mask for a straight arrow from start to end with a
// triangular head at end, and a mirrored one at start when double is set.
// Heads have a 60 degree opening. A zero-length arrow is a no-op.
func arrowCoverage(bounds image.Rectangle, start, end Point, radius float64, double bool) (*coverage, bool) {
	if !finite(start, end) {
		return nil, false
	}
	// Half vectors keep the length finite for any finite endpoints.
	hx, hy := end.X/2-start.X/2, end.Y/2-start.Y/2
	semi := math.Hypot(hx, hy)
	if semi < 0.5 {
		return nil, false
	}
	ux, uy := hx/semi, hy/semi

	head := arrowHeadLength(radius)
	half := head * math.Tan(math.Pi/6)
	pad := math.Max(head, radius) + 1

	rect, ok := spanRect(bounds, start, end, pad)
	if !ok {
		return nil, false
	}
	c := newCoverage(rect)

	// The shaft stops halfway into each head so its round cap stays hidden
	// inside the triangle.
	shaftStart := start
	if double {
		shaftStart = Point{X: start.X + ux*head/2, Y: start.Y + uy*head/2}
	}
	shaftEnd := Point{X: end.X - ux*head/2, Y: end.Y - uy*head/2}
	c.addSegment(shaftStart, shaftEnd, radius)

	// A head whose tip is this far from the mask cannot reach it.
	reach := 2*head + 1
	if c.near(end, reach) {
		c.addPolygon(headTriangle(end, ux, uy, head, half)...)
	}
	if double && c.near(start, reach) {
		c.addPolygon(headTriangle(start, -ux, -uy, head, half)...)
	}
	return c, true
}

// near reports whether p is within d of c.rect on both axes.
func (c *coverage) near(p Point, d float64) bool {
	return p.X >= float64(c.rect.Min.X)-d && p.X <= float64(c.rect.Max.X)+d &&
		p.Y >= float64(c.rect.Min.Y)-d && p.Y <= float64(c.rect.Max.Y)+d
}

// headTriangle returns the tip and base corners of a head pointing along
// (ux, uy) with its tip at tip.
func headTriangle(tip Point, ux, uy, length, half float64) []Point {
	bx, by := tip.X-ux*length, tip.Y-uy*length
	px, py := -uy*half, ux*half
	return []Point{
		tip,
		{X: bx + px, Y: by + py},
		{X: bx - px, Y: by - py},
	}
}
