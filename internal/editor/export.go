package editor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// ExportResult is an encoded artifact tagged with the request that made it.
type ExportResult struct {
	*imaging.ExportResult
	RequestID string `json:"request_id"`
}

// Export encodes the last committed state under a size budget.
//
// The snapshot is taken under the lock but the encode loop runs outside it,
// so edits may continue while an export is in flight. Every call gets a new
// request ID; hosts use IsCurrentExport to drop results that a later request
// has superseded. The live surface and history are never changed.
func (s *Session) Export(ctx context.Context, opts imaging.ExportOptions) (*ExportResult, error) {
	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snapshot := s.history.Current().Surface
	id := uuid.NewString()
	s.exportID = id
	s.mu.Unlock()

	Logger().Debug("export started", "session", s.id, "request", id,
		"format", opts.Format.String(), "target_bytes", opts.TargetBytes)

	res, err := imaging.ExportWithBudget(ctx, snapshot, opts)
	if err != nil {
		return nil, err
	}
	Logger().Debug("export finished", "session", s.id, "request", id,
		"size_bytes", res.SizeBytes, "quality", res.Quality, "attempts", res.Attempts, "met_target", res.MetTarget)
	return &ExportResult{ExportResult: res, RequestID: id}, nil
}

// IsCurrentExport reports whether r answers the most recent Export call.
func (s *Session) IsCurrentExport(r *ExportResult) bool {
	if r == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.RequestID == s.exportID
}

// Blob is the persistable form of a session: encoded bytes plus the metadata
// a host stores next to them.
type Blob struct {
	ID           string    `json:"id"`
	MimeType     string    `json:"mime_type"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	LastModified time.Time `json:"last_modified"`
	Data         []byte    `json:"-"`
}

// Blob encodes the last committed state in format f at full quality.
func (s *Session) Blob(f imaging.Format) (*Blob, error) {
	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snapshot := s.history.Current().Surface
	modified := s.modified
	s.mu.Unlock()

	return encodeBlob(s.id, snapshot, f, modified)
}

func encodeBlob(id string, snapshot *imaging.Surface, f imaging.Format, modified time.Time) (*Blob, error) {
	data, err := imaging.Encode(snapshot.Image(), f, imaging.DefaultQuality)
	if err != nil {
		return nil, err
	}
	return &Blob{
		ID:           id,
		MimeType:     f.MimeType(),
		Width:        snapshot.Width(),
		Height:       snapshot.Height(),
		LastModified: modified,
		Data:         data,
	}, nil
}

// Stats computes display stats for the live surface in the source format.
func (s *Session) Stats() (*imaging.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return imaging.ComputeStats(s.surface, s.baseline, s.format)
}

// SampleColor reads one pixel of the live surface.
func (s *Session) SampleColor(x, y int) (*imaging.ColorResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return imaging.SampleColor(s.surface, x, y)
}
