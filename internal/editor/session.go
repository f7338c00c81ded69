package editor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/image-editor-mcp/internal/brush"
	"github.com/ironsheep/image-editor-mcp/internal/history"
	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// Options configures a new Session.
type Options struct {
	// ID names the session. Empty means a random UUID.
	ID string

	// Name is a display name for the source, usually its path.
	Name string

	// HistoryLimit bounds the undo history. Zero means unbounded.
	HistoryLimit int

	// OnChange, when set, is called after every commit, undo and redo. It
	// runs with the session locked and must not call back into the session;
	// Change.Blob gives observers the persistable bytes without it.
	OnChange func(Change)
}

// Change describes a committed state change.
type Change struct {
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"` // "commit", "undo", "redo"
	Label     string    `json:"label"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CanUndo   bool      `json:"can_undo"`
	CanRedo   bool      `json:"can_redo"`
	At        time.Time `json:"at"`

	// Committed is the history snapshot now current, in the session's
	// format. It is immutable; observers may encode it but must not write
	// to it.
	Committed *imaging.Surface `json:"-"`
	Format    imaging.Format   `json:"-"`
}

// Blob encodes the committed snapshot the change points at, the same bytes
// Session.Blob would return for the session's format.
func (c Change) Blob() (*Blob, error) {
	if c.Committed == nil {
		return nil, imaging.ErrContextUnavailable
	}
	return encodeBlob(c.SessionID, c.Committed, c.Format, c.At)
}

// Session is one image being edited: the live surface, its history, the
// current tool and edit mode, and the stroke in progress.
//
// A session is driven from a single input handler, but it locks internally so
// presentation code may read stats or export from another goroutine.
type Session struct {
	mu sync.Mutex

	id       string
	name     string
	surface  *imaging.Surface
	history  *history.History
	engine   *brush.Engine
	baseline imaging.Baseline
	format   imaging.Format
	modified time.Time

	tool        Tool
	mode        EditMode
	transitions []Transition
	view        imaging.View
	ended       *brush.Result
	resizeLock  *imaging.AspectLock

	exportID string
	onChange func(Change)
	closed   bool
}

// Open starts a session on a decoded source. The session owns a private copy
// of the pixels, and the history starts with that copy.
func Open(src *imaging.Source, opts Options) (*Session, error) {
	if src == nil || src.Image == nil {
		return nil, imaging.ErrContextUnavailable
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	surface := src.Surface()
	s := &Session{
		id:      id,
		name:    opts.Name,
		surface: surface,
		history: history.New(surface, opts.HistoryLimit),
		engine:  brush.NewEngine(),
		baseline: imaging.Baseline{
			Width:     surface.Width(),
			Height:    surface.Height(),
			SizeBytes: src.SizeBytes,
		},
		format:   formatFor(src.Format),
		modified: time.Now(),
		onChange: opts.OnChange,
	}
	Logger().Info("session opened", "session", id, "name", opts.Name,
		"width", surface.Width(), "height", surface.Height(), "format", src.Format)
	return s, nil
}

// formatFor picks the output format for a decoded source format. Sources we
// cannot encode fall back to PNG, which is lossless.
func formatFor(name string) imaging.Format {
	switch name {
	case "jpeg":
		return imaging.JPEG
	case "webp":
		return imaging.WebP
	}
	return imaging.PNG
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Name returns the display name given at Open.
func (s *Session) Name() string { return s.name }

// Format returns the output format matching the source.
func (s *Session) Format() imaging.Format { return s.format }

// Surface returns the live surface. It is owned by the session; callers must
// not write to it or keep it across calls that mutate the session.
func (s *Session) Surface() *imaging.Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface
}

// Tool returns the current tool.
func (s *Session) Tool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// SelectTool makes t the current tool. A running stroke is finished and
// committed first. Selecting ToolResize starts a resize interaction.
func (s *Session) SelectTool(t Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEditing(); err != nil {
		return err
	}
	s.finishStroke()
	s.setTool(t)
	return nil
}

func (s *Session) setTool(t Tool) {
	if t == s.tool {
		return
	}
	s.resizeLock = nil
	if t == ToolResize {
		lock := imaging.LockAspect(s.surface)
		s.resizeLock = &lock
	}
	s.tool = t
}

// SetView records where the surface is shown, for the pointer methods.
func (s *Session) SetView(v imaging.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// View returns the view set by SetView.
func (s *Session) View() imaging.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// CanUndo reports whether Undo would change the surface.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.history.CanUndo()
}

// CanRedo reports whether Redo would change the surface.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.history.CanRedo()
}

// History returns the committed entries in order and the cursor index.
func (s *Session) History() ([]history.Entry, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, 0
	}
	return s.history.Entries(), s.history.Cursor()
}

// Undo restores the previous committed state. A running stroke is committed
// first, so it is what gets undone. With nothing to undo, or outside edit
// mode, it returns (nil, false).
func (s *Session) Undo() (*imaging.Surface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkEditing() != nil {
		return nil, false
	}
	s.finishStroke()
	surface, ok := s.history.Undo()
	if !ok {
		return nil, false
	}
	s.replace(surface)
	label := s.history.Entries()[s.history.Cursor()+1].Label
	Logger().Debug("undo", "session", s.id, "label", label, "cursor", s.history.Cursor())
	s.notify("undo", label)
	return surface, true
}

// Redo reapplies the next committed state. With nothing to redo, or outside
// edit mode, it returns (nil, false).
func (s *Session) Redo() (*imaging.Surface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkEditing() != nil {
		return nil, false
	}
	s.finishStroke()
	surface, ok := s.history.Redo()
	if !ok {
		return nil, false
	}
	s.replace(surface)
	label := s.history.Current().Label
	Logger().Debug("redo", "session", s.id, "label", label, "cursor", s.history.Cursor())
	s.notify("redo", label)
	return surface, true
}

// Close ends the session and releases the surface and history. It is safe to
// call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.surface = nil
	s.history = nil
	s.engine = nil
	s.resizeLock = nil
	Logger().Info("session closed", "session", s.id)
}

func (s *Session) checkOpen() error {
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) checkEditing() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.mode != Editing {
		return ErrNotEditing
	}
	return nil
}

// commit snapshots the live surface as a new history entry.
func (s *Session) commit(label string) {
	entry := s.history.Commit(s.surface, label)
	s.modified = entry.CommittedAt
	Logger().Debug("committed", "session", s.id, "label", label, "entry", entry.ID,
		"width", s.surface.Width(), "height", s.surface.Height())
	s.notify("commit", label)
}

// replace swaps in a surface that came from history. The resize lock is
// recaptured so a resize interaction continues from the restored size.
func (s *Session) replace(surface *imaging.Surface) {
	s.surface = surface
	s.modified = time.Now()
	if s.resizeLock != nil {
		lock := imaging.LockAspect(surface)
		s.resizeLock = &lock
	}
}

func (s *Session) notify(kind, label string) {
	if s.onChange == nil {
		return
	}
	s.onChange(Change{
		SessionID: s.id,
		Kind:      kind,
		Label:     label,
		Width:     s.surface.Width(),
		Height:    s.surface.Height(),
		CanUndo:   s.history.CanUndo(),
		CanRedo:   s.history.CanRedo(),
		At:        s.modified,
		Committed: s.history.Current().Surface,
		Format:    s.format,
	})
}
