package editor

import (
	"fmt"

	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

func (s *Session) mapper() imaging.Mapper {
	return imaging.NewMapper(s.surface.Width(), s.surface.Height(), s.view)
}

// Crop replaces the surface with the region, given in source pixels, and
// commits. The region is clamped to the surface first; if nothing is left the
// call is a no-op and returns false.
func (s *Session) Crop(region imaging.Region) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crop(region)
}

// CropDisplay is Crop with the region given in pointer space.
func (s *Session) CropDisplay(region imaging.Region) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	return s.crop(s.mapper().MapRegion(region))
}

func (s *Session) crop(region imaging.Region) (bool, error) {
	if err := s.checkTransform(ToolCrop); err != nil {
		return false, err
	}
	out, ok := imaging.Crop(s.surface, region)
	if !ok {
		return false, nil
	}
	s.surface = out
	s.commit(fmt.Sprintf("crop %dx%d", out.Width(), out.Height()))
	return true, nil
}

// BeginResize starts a resize interaction and captures the aspect lock from
// the current size. Selecting ToolResize does the same.
func (s *Session) BeginResize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransform(ToolResize); err != nil {
		return err
	}
	lock := imaging.LockAspect(s.surface)
	s.resizeLock = &lock
	return nil
}

// EndResize ends the resize interaction. The next resize captures a new lock.
func (s *Session) EndResize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resizeLock = nil
}

// Resize resamples the surface and commits.
//
// With lockAspect, the dimension the caller did not change follows the ratio
// captured when the interaction began, not the current size, so repeated
// events do not drift. The result is never smaller than
// imaging.MinDimension, and never larger than the source's native size
// unless allowUpscale is set. A resize that resolves to the current size is
// a no-op and returns false.
func (s *Session) Resize(target imaging.ResizeTarget, lockAspect, allowUpscale bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransform(ToolResize); err != nil {
		return false, err
	}

	var opts imaging.ResizeOptions
	if lockAspect {
		if s.resizeLock == nil {
			lock := imaging.LockAspect(s.surface)
			s.resizeLock = &lock
		}
		opts.Lock = s.resizeLock
	}
	if !allowUpscale {
		opts.MaxWidth = s.baseline.Width
		opts.MaxHeight = s.baseline.Height
	}

	out := imaging.Resize(s.surface, target, opts)
	if out.Width() == s.surface.Width() && out.Height() == s.surface.Height() {
		return false, nil
	}
	s.surface = out
	s.commit(fmt.Sprintf("resize %dx%d", out.Width(), out.Height()))
	return true, nil
}

func (s *Session) checkTransform(want Tool) error {
	if err := s.checkEditing(); err != nil {
		return err
	}
	if s.engine.Active() {
		return ErrStrokeActive
	}
	if s.tool != want {
		return ErrToolMismatch
	}
	return nil
}
