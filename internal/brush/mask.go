package brush

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// coverage is an anti-aliased 8-bit mask covering rect in surface
// coordinates. Pix is indexed from rect.Min, so mask (0,0) is surface
// rect.Min.
type coverage struct {
	rect image.Rectangle
	mask *image.Alpha
}

func newCoverage(rect image.Rectangle) *coverage {
	return &coverage{
		rect: rect,
		mask: image.NewAlpha(image.Rect(0, 0, rect.Dx(), rect.Dy())),
	}
}

// at returns the mask value for surface pixel (x, y), which must be inside rect.
func (c *coverage) at(x, y int) uint8 {
	return c.mask.Pix[(y-c.rect.Min.Y)*c.mask.Stride+(x-c.rect.Min.X)]
}

// spanRect returns the pixel rectangle covering a and b padded by pad,
// clamped to bounds. Coordinates are clamped before the integer conversion,
// so points far off the surface cannot overflow.
func spanRect(bounds image.Rectangle, a, b Point, pad float64) (image.Rectangle, bool) {
	clampX := func(v float64) float64 {
		return math.Max(float64(bounds.Min.X), math.Min(float64(bounds.Max.X), v))
	}
	clampY := func(v float64) float64 {
		return math.Max(float64(bounds.Min.Y), math.Min(float64(bounds.Max.Y), v))
	}
	rect := image.Rect(
		int(math.Floor(clampX(math.Min(a.X, b.X)-pad))),
		int(math.Floor(clampY(math.Min(a.Y, b.Y)-pad))),
		int(math.Ceil(clampX(math.Max(a.X, b.X)+pad))),
		int(math.Ceil(clampY(math.Max(a.Y, b.Y)+pad))),
	).Intersect(bounds)
	return rect, !rect.Empty()
}

func finite(pts ...Point) bool {
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// Outcodes for clipSegment.
const (
	outLeft = 1 << iota
	outRight
	outTop
	outBottom
)

// clipSegment clips a-b to the box [minX,maxX]x[minY,maxY] (Cohen-Sutherland).
// A clipped endpoint lands exactly on the edge it crossed and only the other
// coordinate is interpolated, from half-differences, so endpoints far beyond
// the box neither overflow nor smear the line. ok is false when the segment
// misses the box.
func clipSegment(a, b Point, minX, minY, maxX, maxY float64) (Point, Point, bool) {
	code := func(p Point) int {
		c := 0
		switch {
		case p.X < minX:
			c |= outLeft
		case p.X > maxX:
			c |= outRight
		}
		switch {
		case p.Y < minY:
			c |= outTop
		case p.Y > maxY:
			c |= outBottom
		}
		return c
	}
	// toward moves p along p-q onto the edge named by c.
	toward := func(p, q Point, c int) Point {
		hx, hy := q.X/2-p.X/2, q.Y/2-p.Y/2
		switch {
		case c&outLeft != 0:
			return Point{X: minX, Y: p.Y + hy*((minX-p.X)/hx)}
		case c&outRight != 0:
			return Point{X: maxX, Y: p.Y + hy*((maxX-p.X)/hx)}
		case c&outTop != 0:
			return Point{X: p.X + hx*((minY-p.Y)/hy), Y: minY}
		default:
			return Point{X: p.X + hx*((maxY-p.Y)/hy), Y: maxY}
		}
	}
	// Each pass clears at least one outcode bit.
	for i := 0; i < 4; i++ {
		ca, cb := code(a), code(b)
		switch {
		case ca|cb == 0:
			return a, b, true
		case ca&cb != 0:
			return a, b, false
		case ca != 0:
			a = toward(a, b, ca)
		default:
			b = toward(b, a, cb)
		}
	}
	return a, b, code(a)|code(b) == 0
}

// capsule builds the mask of a disc of radius r swept from a to b, clamped to
// bounds. With a == b it is a single disc. ok is false when the clamped area
// is empty, which callers treat as a no-op.
func capsule(bounds image.Rectangle, a, b Point, r float64) (*coverage, bool) {
	if !finite(a, b) {
		return nil, false
	}
	rect, ok := spanRect(bounds, a, b, r+1)
	if !ok {
		return nil, false
	}
	c := newCoverage(rect)
	c.addSegment(a, b, r)
	return c, true
}

// addSegment adds the part of the a-b capsule that can reach c.rect. The
// segment is clipped to c.rect grown by r+1 first; no pixel in c.rect is
// within r+0.5 of anything cut away.
func (c *coverage) addSegment(a, b Point, r float64) {
	pad := r + 1
	ca, cb, ok := clipSegment(a, b,
		float64(c.rect.Min.X)-pad, float64(c.rect.Min.Y)-pad,
		float64(c.rect.Max.X)+pad, float64(c.rect.Max.Y)+pad)
	if ok {
		c.addCapsule(ca, cb, r)
	}
}

// addCapsule merges a capsule into c, keeping the larger coverage per pixel.
// Coverage falls off linearly over one pixel centered on the edge.
func (c *coverage) addCapsule(a, b Point, r float64) {
	for y := c.rect.Min.Y; y < c.rect.Max.Y; y++ {
		row := c.mask.Pix[(y-c.rect.Min.Y)*c.mask.Stride:]
		py := float64(y) + 0.5
		for x := c.rect.Min.X; x < c.rect.Max.X; x++ {
			d := distToSegment(float64(x)+0.5, py, a, b)
			v := r + 0.5 - d
			if v <= 0 {
				continue
			}
			m := uint8(255)
			if v < 1 {
				m = uint8(v*255 + 0.5)
			}
			i := x - c.rect.Min.X
			if m > row[i] {
				row[i] = m
			}
		}
	}
}

// addPolygon rasterizes a closed polygon into c with x/image/vector and
// merges it the same way as addCapsule.
func (c *coverage) addPolygon(pts ...Point) {
	if len(pts) < 3 {
		return
	}
	w, h := c.rect.Dx(), c.rect.Dy()
	z := vector.NewRasterizer(w, h)
	ox, oy := float64(c.rect.Min.X), float64(c.rect.Min.Y)
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()

	poly := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(poly, poly.Bounds(), image.Opaque, image.Point{})
	for i, v := range poly.Pix {
		if v > c.mask.Pix[i] {
			c.mask.Pix[i] = v
		}
	}
}

func distToSegment(px, py float64, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-a.X, py-a.Y)
	}
	t := ((px-a.X)*dx + (py-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(a.X+t*dx), py-(a.Y+t*dy))
}

// paintOver composites a solid color through the mask with source-over.
func paintOver(dst *image.NRGBA, c *coverage, src image.Image) {
	draw.DrawMask(dst, c.rect, src, image.Point{}, c.mask, image.Point{}, draw.Over)
}

// eraseOut scales destination alpha by (1 - mask): destination-out with an
// opaque source. Color channels are left alone, so erasing restores
// transparency rather than any earlier content.
func eraseOut(dst *image.NRGBA, c *coverage) {
	for y := c.rect.Min.Y; y < c.rect.Max.Y; y++ {
		for x := c.rect.Min.X; x < c.rect.Max.X; x++ {
			m := uint32(c.at(x, y))
			if m == 0 {
				continue
			}
			i := dst.PixOffset(x, y) + 3
			dst.Pix[i] = uint8(uint32(dst.Pix[i]) * (255 - m) / 255)
		}
	}
}

// copyThrough blends src into dst through the mask: full coverage copies src,
// partial coverage interpolates, zero coverage leaves dst untouched. src and
// dst must share the same bounds.
func copyThrough(dst, src *image.NRGBA, c *coverage) {
	for y := c.rect.Min.Y; y < c.rect.Max.Y; y++ {
		for x := c.rect.Min.X; x < c.rect.Max.X; x++ {
			m := int32(c.at(x, y))
			if m == 0 {
				continue
			}
			di := dst.PixOffset(x, y)
			si := src.PixOffset(x, y)
			for k := 0; k < 4; k++ {
				d := int32(dst.Pix[di+k])
				s := int32(src.Pix[si+k])
				dst.Pix[di+k] = uint8((s*m + d*(255-m) + 127) / 255)
			}
		}
	}
}
