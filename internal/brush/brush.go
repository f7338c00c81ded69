package brush

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// Mode selects the per-point pixel operation of a stroke.
type Mode int

const (
	// Blur copies a disc from a blurred copy of the pre-stroke surface.
	Blur Mode = iota
	// Paint composites a colored disc with source-over blending.
	Paint
	// Erase clears alpha under the disc (destination-out).
	Erase
	// Arrow draws a shaft and a head at the end point when the stroke ends.
	Arrow
	// DoubleArrow is Arrow with a second head at the start point.
	DoubleArrow
	// Stamp renders a glyph centered on the first point.
	Stamp
)

var modeNames = map[Mode]string{
	Blur:        "blur",
	Paint:       "paint",
	Erase:       "erase",
	Arrow:       "arrow",
	DoubleArrow: "double_arrow",
	Stamp:       "stamp",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a mode name ("blur", "paint", "erase", "arrow",
// "double_arrow", "stamp") to a Mode.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown brush mode: %s", s)
}

// Params are the tool settings captured when a stroke begins. They stay fixed
// for the whole stroke.
type Params struct {
	// Radius of the brush disc in source pixels. Arrow line width is
	// 2*Radius; stamp glyphs are 2*Radius pixels tall.
	Radius float64

	// Color for Paint, Arrow, DoubleArrow and Stamp.
	Color color.NRGBA

	// Intensity is the blur strength: the Gaussian sigma, or the box radius.
	Intensity float64

	// Kernel selects the blur convolution.
	Kernel imaging.BlurKernel

	// Glyph is the text rendered by Stamp.
	Glyph string
}

// Point is a stroke sample in source-pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

const (
	minRadius    = 0.5
	minIntensity = 0.5
)

// normalize clamps params into usable ranges. Out-of-range values are
// recovered locally, never reported.
func (p Params) normalize(s *imaging.Surface) Params {
	maxRadius := float64(max(s.Width(), s.Height()))
	if p.Radius < minRadius {
		p.Radius = minRadius
	}
	if p.Radius > maxRadius {
		p.Radius = maxRadius
	}
	if p.Intensity < minIntensity {
		p.Intensity = minIntensity
	}
	return p
}

var (
	// ErrStrokeActive is returned by Begin while another stroke is running.
	ErrStrokeActive = errors.New("a stroke is already in progress")

	// ErrNoStroke is returned by Extend and End without a running stroke.
	ErrNoStroke = errors.New("no stroke in progress")
)

// Result summarizes a finished stroke.
type Result struct {
	Mode   Mode
	Points int

	// Dirty is the union of every rectangle the stroke wrote to, already
	// clamped to the surface. It is empty when the stroke touched nothing.
	Dirty image.Rectangle
}

// Changed reports whether the stroke wrote any pixel.
func (r Result) Changed() bool { return !r.Dirty.Empty() }
