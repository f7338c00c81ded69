package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Region is a rectangle in source-pixel space given by origin and size.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the region to an image.Rectangle. Negative sizes are
// normalized so the rectangle is well formed.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height).Canon()
}

// RegionFromRect converts an image.Rectangle into a Region.
func RegionFromRect(r image.Rectangle) Region {
	r = r.Canon()
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// ClampRegion fits r inside a surface of the given size. Values are clamped,
// never rejected: a region hanging off the left edge loses the overhang, a
// region entirely outside the surface collapses to zero area.
func ClampRegion(r Region, width, height int) Region {
	return RegionFromRect(r.Rect().Intersect(image.Rect(0, 0, width, height)))
}

// Crop copies the addressed region of s into a new surface anchored at (0,0).
//
// The region is clamped to the surface bounds first. When nothing is left the
// crop is an empty-region no-op: Crop returns (nil, false) and the caller keeps
// its current surface. A region equal to the full bounds yields an identical
// copy.
func Crop(s *Surface, region Region) (*Surface, bool) {
	region = ClampRegion(region, s.Width(), s.Height())
	if region.Width <= 0 || region.Height <= 0 {
		return nil, false
	}
	return wrapNRGBA(imaging.Crop(s.img, region.Rect())), true
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
