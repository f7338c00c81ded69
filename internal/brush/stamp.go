package brush

import (
	"fmt"
	"image"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// glyphCache holds one parsed font and faces keyed by pixel size.
type glyphCache struct {
	once  sync.Once
	font  *opentype.Font
	err   error
	faces map[int]font.Face
}

func newGlyphCache() *glyphCache {
	return &glyphCache{faces: make(map[int]font.Face)}
}

func (g *glyphCache) face(size int) (font.Face, error) {
	g.once.Do(func() {
		g.font, g.err = opentype.Parse(goregular.TTF)
	})
	if g.err != nil {
		return nil, fmt.Errorf("failed to parse stamp font: %w", g.err)
	}
	if f, ok := g.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(g.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stamp face: %w", err)
	}
	g.faces[size] = f
	return f, nil
}

// stamp renders params.Glyph centered on at, 2*Radius pixels tall, and
// returns the clamped rectangle it may have written. Runes the font lacks
// render as the font's missing-glyph box.
func (g *glyphCache) stamp(dst *image.NRGBA, at Point, params Params) (image.Rectangle, error) {
	if params.Glyph == "" {
		return image.Rectangle{}, nil
	}
	size := max(int(math.Round(params.Radius*2)), 1)
	face, err := g.face(size)
	if err != nil {
		return image.Rectangle{}, err
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(params.Color),
		Face: face,
	}
	bounds, advance := d.BoundString(params.Glyph)
	// Points this far off the surface draw nothing, and are kept out of the
	// 26.6 conversion below, which would overflow.
	margin := float64(advance.Ceil() + 2*size)
	r := dst.Rect
	if !finite(at) || at.X < float64(r.Min.X)-margin || at.X > float64(r.Max.X)+margin ||
		at.Y < float64(r.Min.Y)-margin || at.Y > float64(r.Max.Y)+margin {
		return image.Rectangle{}, nil
	}
	metrics := face.Metrics()
	x := fixed.Int26_6(at.X*64) - advance/2
	y := fixed.Int26_6(at.Y*64) + (metrics.Ascent-metrics.Descent)/2
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(params.Glyph)

	touched := image.Rect(
		(x + bounds.Min.X).Floor(),
		(y + bounds.Min.Y).Floor(),
		(x + bounds.Max.X).Ceil(),
		(y + bounds.Max.Y).Ceil(),
	).Intersect(dst.Rect)
	return touched, nil
}
