package imaging

import "image"

// DisplayRect is the on-screen box an image element is laid out in, measured
// before any zoom is applied. X and Y are the box origin in pointer space.
type DisplayRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// View bundles everything needed to turn pointer positions into source pixels.
type View struct {
	Rect DisplayRect `json:"rect"`

	// Zoom is the scale applied to the element on top of its layout box.
	// Values <= 0 are treated as 1.
	Zoom float64 `json:"zoom"`
}

// Mapper converts pointer coordinates into source-pixel coordinates.
//
// One convention is used everywhere: the display rect is the layout box before
// zoom, and zoom is always a separate divisor applied about the rect origin.
// Hosts that can only measure the already-zoomed box must pass zoom 1, because
// the ratio between surface size and measured box already includes the zoom.
//
// A zero-area display rect maps with a ratio of 1 so that a host that has not
// laid out yet still produces usable (if unscaled) coordinates.
type Mapper struct {
	surfaceW, surfaceH int
	view               View
}

// NewMapper returns a mapper for a surface of the given size shown in view.
func NewMapper(surfaceW, surfaceH int, view View) Mapper {
	return Mapper{surfaceW: surfaceW, surfaceH: surfaceH, view: view}
}

func (m Mapper) scale() (sx, sy float64) {
	zoom := m.view.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	sx, sy = 1, 1
	if m.view.Rect.Width > 0 {
		sx = float64(m.surfaceW) / m.view.Rect.Width
	}
	if m.view.Rect.Height > 0 {
		sy = float64(m.surfaceH) / m.view.Rect.Height
	}
	return sx / zoom, sy / zoom
}

// Map converts a pointer position into source-pixel space. The result is not
// clamped; consumers clamp when they address pixels.
func (m Mapper) Map(pointerX, pointerY float64) (float64, float64) {
	sx, sy := m.scale()
	return (pointerX - m.view.Rect.X) * sx, (pointerY - m.view.Rect.Y) * sy
}

// MapRegion converts a region selected in pointer space, the same space Map
// takes, into source pixels.
func (m Mapper) MapRegion(r Region) Region {
	sx, sy := m.scale()
	x0 := (float64(r.X) - m.view.Rect.X) * sx
	y0 := (float64(r.Y) - m.view.Rect.Y) * sy
	x1 := (float64(r.X+r.Width) - m.view.Rect.X) * sx
	y1 := (float64(r.Y+r.Height) - m.view.Rect.Y) * sy
	rect := image.Rect(roundInt(x0), roundInt(y0), roundInt(x1), roundInt(y1))
	return RegionFromRect(rect)
}

// MapPointerToSource is the one-shot form of Mapper.Map.
func MapPointerToSource(pointerX, pointerY float64, s *Surface, rect DisplayRect, zoom float64) (float64, float64) {
	return NewMapper(s.Width(), s.Height(), View{Rect: rect, Zoom: zoom}).Map(pointerX, pointerY)
}

// MapRegionToSource is the one-shot form of Mapper.MapRegion.
func MapRegionToSource(r Region, s *Surface, rect DisplayRect, zoom float64) Region {
	return NewMapper(s.Width(), s.Height(), View{Rect: rect, Zoom: zoom}).MapRegion(r)
}
