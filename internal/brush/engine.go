package brush

import (
	"image"

	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// Engine applies strokes to a surface. It holds at most one stroke at a time
// and never buffers points beyond the current stroke.
//
// An Engine is not safe for concurrent use; the editing session drives it from
// a single input handler.
type Engine struct {
	glyphs *glyphCache
	active *stroke
}

type stroke struct {
	surface *imaging.Surface
	mode    Mode
	params  Params
	points  []Point

	// blurred is the blurred copy of the surface as it was when the stroke
	// began. Every point samples from it, never from live output, so
	// overlapping dabs do not compound the blur.
	blurred *image.NRGBA

	dirty image.Rectangle
}

// NewEngine returns an idle engine.
func NewEngine() *Engine {
	return &Engine{glyphs: newGlyphCache()}
}

// Active reports whether a stroke is in progress.
func (e *Engine) Active() bool { return e.active != nil }

// ActiveMode returns the mode of the running stroke.
func (e *Engine) ActiveMode() (Mode, bool) {
	if e.active == nil {
		return 0, false
	}
	return e.active.mode, true
}

// Begin starts a stroke on s. params are normalized and frozen for the whole
// stroke; later changes to the caller's settings do not affect it.
func (e *Engine) Begin(s *imaging.Surface, mode Mode, params Params) error {
	if s == nil {
		return imaging.ErrContextUnavailable
	}
	if e.active != nil {
		return ErrStrokeActive
	}
	st := &stroke{
		surface: s,
		mode:    mode,
		params:  params.normalize(s),
	}
	if mode == Blur {
		st.blurred = imaging.BlurredCopy(s, st.params.Kernel, st.params.Intensity)
	}
	e.active = st
	return nil
}

// Extend adds a point to the running stroke and applies it to the surface
// immediately, so callers can show continuous feedback.
func (e *Engine) Extend(pt Point) error {
	st := e.active
	if st == nil {
		return ErrNoStroke
	}
	st.points = append(st.points, pt)

	switch st.mode {
	case Paint, Erase, Blur:
		prev := pt
		if n := len(st.points); n > 1 {
			prev = st.points[n-2]
		}
		st.dab(prev, pt)
	case Stamp:
		if len(st.points) == 1 {
			rect, err := e.glyphs.stamp(st.surface.Image(), pt, st.params)
			if err != nil {
				return err
			}
			st.dirty = st.dirty.Union(rect)
		}
	case Arrow, DoubleArrow:
		// Drawn once at End from the first and last points.
	}
	return nil
}

// End finishes the stroke and returns what it touched. Ending is also how a
// pointer leaving the drawing area is handled: what was drawn is kept.
func (e *Engine) End() (Result, error) {
	st := e.active
	if st == nil {
		return Result{}, ErrNoStroke
	}
	e.active = nil

	if (st.mode == Arrow || st.mode == DoubleArrow) && len(st.points) > 0 {
		start, end := st.points[0], st.points[len(st.points)-1]
		if c, ok := arrowCoverage(st.surface.Bounds(), start, end, st.params.Radius, st.mode == DoubleArrow); ok {
			paintOver(st.surface.Image(), c, image.NewUniform(st.params.Color))
			st.dirty = st.dirty.Union(c.rect)
		}
	}

	return Result{Mode: st.mode, Points: len(st.points), Dirty: st.dirty}, nil
}

// Apply runs a whole stroke: Begin, Extend for every point, End.
func (e *Engine) Apply(s *imaging.Surface, mode Mode, params Params, points []Point) (Result, error) {
	if err := e.Begin(s, mode, params); err != nil {
		return Result{}, err
	}
	for _, pt := range points {
		if err := e.Extend(pt); err != nil {
			e.active = nil
			return Result{}, err
		}
	}
	return e.End()
}

// dab applies one segment of a Paint, Erase or Blur stroke. The segment is a
// disc swept from a to b, which fills the gap between sparse pointer samples.
func (st *stroke) dab(a, b Point) {
	c, ok := capsule(st.surface.Bounds(), a, b, st.params.Radius)
	if !ok {
		return
	}
	dst := st.surface.Image()
	switch st.mode {
	case Paint:
		paintOver(dst, c, image.NewUniform(st.params.Color))
	case Erase:
		eraseOut(dst, c)
	case Blur:
		copyThrough(dst, st.blurred, c)
	}
	st.dirty = st.dirty.Union(c.rect)
}
