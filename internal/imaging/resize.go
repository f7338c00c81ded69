package imaging

import (
	"math"

	"github.com/disintegration/imaging"
)

// MinDimension is the smallest width or height a resize may produce.
const MinDimension = 10

// ResizeTarget is a requested output size in pixels. A zero dimension means
// "derive it from the aspect lock".
type ResizeTarget struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AspectLock remembers the dimensions a resize interaction started from.
//
// The lock keeps the starting width and height rather than a rounded ratio, and
// it is captured once per interaction. Deriving every intermediate size from
// the same origin keeps repeated slider events from drifting through
// accumulated rounding.
type AspectLock struct {
	width, height int
}

// LockAspect captures the current dimensions of s.
func LockAspect(s *Surface) AspectLock {
	return AspectLock{width: s.Width(), height: s.Height()}
}

// NewAspectLock builds a lock from explicit dimensions.
func NewAspectLock(width, height int) AspectLock {
	return AspectLock{width: width, height: height}
}

// Valid reports whether the lock holds a usable ratio.
func (l AspectLock) Valid() bool { return l.width > 0 && l.height > 0 }

// Ratio returns width divided by height at lock time.
func (l AspectLock) Ratio() float64 {
	if !l.Valid() {
		return 1
	}
	return float64(l.width) / float64(l.height)
}

// FromWidth returns the target whose height follows the locked ratio.
func (l AspectLock) FromWidth(width int) ResizeTarget {
	if !l.Valid() {
		return ResizeTarget{Width: width, Height: width}
	}
	h := roundInt(float64(width) * float64(l.height) / float64(l.width))
	return ResizeTarget{Width: width, Height: h}
}

// FromHeight returns the target whose width follows the locked ratio.
func (l AspectLock) FromHeight(height int) ResizeTarget {
	if !l.Valid() {
		return ResizeTarget{Width: height, Height: height}
	}
	w := roundInt(float64(height) * float64(l.width) / float64(l.height))
	return ResizeTarget{Width: w, Height: height}
}

// Apply derives the locked dimension of t. The dimension that differs from
// current, the size the surface has now, is the one the user changed; the
// other follows the locked ratio. When only one is set, that one drives.
func (l AspectLock) Apply(t, current ResizeTarget) ResizeTarget {
	switch {
	case t.Width > 0 && t.Height <= 0:
		return l.FromWidth(t.Width)
	case t.Height > 0 && t.Width <= 0:
		return l.FromHeight(t.Height)
	case t.Width != current.Width:
		return l.FromWidth(t.Width)
	case t.Height != current.Height:
		return l.FromHeight(t.Height)
	}
	return t
}

// ResizeOptions controls how Resize interprets a target.
type ResizeOptions struct {
	// Lock, when non-nil, recomputes the other dimension from the one that
	// changed.
	Lock *AspectLock

	// MaxWidth and MaxHeight cap the output. Zero means no cap, which is how
	// an explicit upsize is expressed.
	MaxWidth  int
	MaxHeight int
}

// ClampTarget applies the dimension floor and the optional ceilings.
func ClampTarget(t ResizeTarget, opts ResizeOptions) ResizeTarget {
	if opts.MaxWidth > 0 && t.Width > opts.MaxWidth {
		t.Width = opts.MaxWidth
	}
	if opts.MaxHeight > 0 && t.Height > opts.MaxHeight {
		t.Height = opts.MaxHeight
	}
	t.Width = max(t.Width, MinDimension)
	t.Height = max(t.Height, MinDimension)
	return t
}

// Resize resamples s to the requested size with Lanczos interpolation and
// returns the new surface. When the resolved size equals the current one the
// result is a plain copy.
func Resize(s *Surface, target ResizeTarget, opts ResizeOptions) *Surface {
	if opts.Lock != nil {
		target = opts.Lock.Apply(target, ResizeTarget{Width: s.Width(), Height: s.Height()})
	}
	if target.Width <= 0 {
		target.Width = s.Width()
	}
	if target.Height <= 0 {
		target.Height = s.Height()
	}
	clamped := ClampTarget(target, opts)
	if opts.Lock != nil && clamped != target {
		// A cap or the floor bit; rederive from the clamped side so the ratio
		// holds.
		if clamped.Width != target.Width {
			clamped = ClampTarget(opts.Lock.FromWidth(clamped.Width), opts)
		} else {
			clamped = ClampTarget(opts.Lock.FromHeight(clamped.Height), opts)
		}
	}
	target = clamped

	if target.Width == s.Width() && target.Height == s.Height() {
		return s.Clone()
	}
	return wrapNRGBA(imaging.Resize(s.img, target.Width, target.Height, imaging.Lanczos))
}

// scaleDimensions shrinks width and height by factor. Neither dimension drops
// below MinDimension unless it already started smaller.
func scaleDimensions(width, height int, factor float64) (int, int) {
	w := int(math.Round(float64(width) * factor))
	h := int(math.Round(float64(height) * factor))
	return max(w, min(width, MinDimension)), max(h, min(height, MinDimension))
}
