package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Surface is the mutable pixel buffer for one image being edited.
//
// Pixels are stored as non-premultiplied RGBA, 4 bytes per pixel, with the
// origin at (0,0) and a stride of exactly 4*width. The invariant
//
//	len(Pix()) == Width() * Height() * 4
//
// holds for every Surface created by this package. Brush strokes mutate the
// buffer in place; crop and resize produce a new Surface that replaces the old
// one wholesale.
//
// A Surface is not safe for concurrent mutation. The editing session owning it
// is responsible for making sure only one component writes at a time.
type Surface struct {
	img *image.NRGBA
}

// NewSurface allocates a fully transparent surface of the given size.
// Non-positive dimensions are clamped to 1.
func NewSurface(width, height int) *Surface {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Surface{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// SurfaceFromImage copies img into a new surface anchored at (0,0).
//
// The source is never retained, so later changes to img do not affect the
// surface and vice versa.
func SurfaceFromImage(img image.Image) *Surface {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		cp := image.NewNRGBA(n.Rect)
		copy(cp.Pix, n.Pix)
		return &Surface{img: cp}
	}
	return &Surface{img: imaging.Clone(img)}
}

// wrapNRGBA adopts img without copying. Callers must own img exclusively.
func wrapNRGBA(img *image.NRGBA) *Surface {
	if img.Rect.Min != (image.Point{}) || img.Stride != 4*img.Rect.Dx() {
		return SurfaceFromImage(img)
	}
	return &Surface{img: img}
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.img.Rect.Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Bounds returns the surface rectangle, always anchored at (0,0).
func (s *Surface) Bounds() image.Rectangle { return s.img.Rect }

// Pix exposes the raw RGBA buffer. Writes go straight to the surface.
func (s *Surface) Pix() []byte { return s.img.Pix }

// Image exposes the surface as an *image.NRGBA sharing the same buffer.
func (s *Surface) Image() *image.NRGBA { return s.img }

// At returns the non-premultiplied color of the pixel at (x, y), or a zero
// color when the point is outside the surface.
func (s *Surface) At(x, y int) color.NRGBA {
	if !(image.Point{X: x, Y: y}).In(s.img.Rect) {
		return color.NRGBA{}
	}
	return s.img.NRGBAAt(x, y)
}

// Clone returns a deep copy of the surface.
func (s *Surface) Clone() *Surface {
	cp := image.NewNRGBA(s.img.Rect)
	copy(cp.Pix, s.img.Pix)
	return &Surface{img: cp}
}

// Equal reports whether two surfaces have identical dimensions and pixels.
func (s *Surface) Equal(other *Surface) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.img.Rect == other.img.Rect && bytes.Equal(s.img.Pix, other.img.Pix)
}

// Fill paints every pixel with c, replacing what was there.
func (s *Surface) Fill(c color.Color) {
	draw.Draw(s.img, s.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// ClampRect intersects r with the surface bounds. The second return value is
// false when the intersection has zero area.
func (s *Surface) ClampRect(r image.Rectangle) (image.Rectangle, bool) {
	r = r.Canon().Intersect(s.img.Rect)
	return r, !r.Empty()
}
