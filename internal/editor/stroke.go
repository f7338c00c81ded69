package editor

import (
	"github.com/ironsheep/image-editor-mcp/internal/brush"
)

// BeginStroke starts a stroke in mode with params frozen for its duration.
// The mode must belong to the current tool.
func (s *Session) BeginStroke(mode brush.Mode, params brush.Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginStroke(mode, params)
}

func (s *Session) beginStroke(mode brush.Mode, params brush.Params) error {
	if err := s.checkEditing(); err != nil {
		return err
	}
	if !s.tool.Allows(mode) {
		return ErrToolMismatch
	}
	s.ended = nil
	return s.engine.Begin(s.surface, mode, params)
}

// ExtendStroke adds a point in source-pixel space and applies it right away.
// A Stamp stroke is complete after its first point: it is ended and
// committed here, and later points return ErrNoStroke.
func (s *Session) ExtendStroke(pt brush.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.extend(pt)
}

func (s *Session) extend(pt brush.Point) error {
	if err := s.engine.Extend(pt); err != nil {
		return err
	}
	if mode, ok := s.engine.ActiveMode(); ok && mode == brush.Stamp {
		res, err := s.endStroke()
		if err != nil {
			return err
		}
		s.ended = &res
	}
	return nil
}

// EndStroke finishes the running stroke and commits it to history if it
// changed any pixel.
func (s *Session) EndStroke() (brush.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return brush.Result{}, err
	}
	return s.endStroke()
}

// LeaveStroke handles the pointer leaving the drawing area mid-stroke. What
// was drawn so far is kept and committed, exactly as EndStroke.
func (s *Session) LeaveStroke() (brush.Result, error) {
	return s.EndStroke()
}

func (s *Session) endStroke() (brush.Result, error) {
	res, err := s.engine.End()
	if err != nil {
		return res, err
	}
	if res.Changed() {
		s.commit(res.Mode.String())
	}
	return res, nil
}

// finishStroke commits a running stroke, if any.
func (s *Session) finishStroke() {
	if s.engine != nil && s.engine.Active() {
		s.endStroke()
	}
}

// StrokeActive reports whether a stroke is in progress.
func (s *Session) StrokeActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil && s.engine.Active()
}

// ApplyStroke runs a complete stroke over points given in source-pixel space
// and commits it. An empty point list is a no-op.
func (s *Session) ApplyStroke(mode brush.Mode, params brush.Params, points []brush.Point) (brush.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(points) == 0 {
		return brush.Result{Mode: mode}, s.checkEditing()
	}
	if err := s.beginStroke(mode, params); err != nil {
		return brush.Result{}, err
	}
	for _, pt := range points {
		if err := s.engine.Extend(pt); err != nil {
			s.endStroke()
			return brush.Result{}, err
		}
	}
	return s.endStroke()
}

// PointerDown begins a stroke at a pointer position, mapped through the
// session view.
func (s *Session) PointerDown(x, y float64, mode brush.Mode, params brush.Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.beginStroke(mode, params); err != nil {
		return err
	}
	return s.extend(s.mapPointer(x, y))
}

// PointerMove extends the running stroke to a pointer position. With no
// stroke running, as after a stamp, it does nothing.
func (s *Session) PointerMove(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !s.engine.Active() {
		return nil
	}
	return s.engine.Extend(s.mapPointer(x, y))
}

// PointerUp ends the running stroke. If the gesture's stroke already ended
// on its own, as a stamp does at PointerDown, it returns that stroke's
// result without committing again.
func (s *Session) PointerUp() (brush.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return brush.Result{}, err
	}
	if !s.engine.Active() {
		var res brush.Result
		if s.ended != nil {
			res = *s.ended
			s.ended = nil
		}
		return res, nil
	}
	return s.endStroke()
}

func (s *Session) mapPointer(x, y float64) brush.Point {
	px, py := s.mapper().Map(x, y)
	return brush.Point{X: px, Y: py}
}
