package editor

import (
	"time"
)

// EditMode is the session-level edit state.
type EditMode int

const (
	// Viewing refuses every mutation.
	Viewing EditMode = iota
	// Editing allows tools to change the surface.
	Editing
)

func (m EditMode) String() string {
	if m == Editing {
		return "editing"
	}
	return "viewing"
}

// Transition is one entry of a session's edit-mode audit log.
type Transition struct {
	From    EditMode  `json:"from"`
	To      EditMode  `json:"to"`
	Trigger string    `json:"trigger"`
	Forced  bool      `json:"forced"`
	At      time.Time `json:"at"`
}

// EnterEditMode moves the session from Viewing to Editing.
func (s *Session) EnterEditMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.transition(Editing, "enter", false)
	return nil
}

// ExitEditMode finishes any running stroke, drops the current tool, and moves
// the session back to Viewing.
func (s *Session) ExitEditMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.finishStroke()
	s.setTool(ToolNone)
	s.transition(Viewing, "exit", false)
	return nil
}

// ForceEditMode switches to Editing from outside the normal flow, for hosts
// that need to recover an editing session their own state machine lost track
// of. trigger must say why; it is kept in the transition log and logged at
// warn level so every use can be audited.
func (s *Session) ForceEditMode(trigger string) error {
	if trigger == "" {
		return ErrMissingTrigger
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.transition(Editing, trigger, true)
	return nil
}

// Mode returns the current edit mode.
func (s *Session) Mode() EditMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Transitions returns a copy of the edit-mode audit log.
func (s *Session) Transitions() []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Transition(nil), s.transitions...)
}

func (s *Session) transition(to EditMode, trigger string, forced bool) {
	t := Transition{From: s.mode, To: to, Trigger: trigger, Forced: forced, At: time.Now()}
	s.transitions = append(s.transitions, t)
	s.mode = to

	log := Logger().With("session", s.id, "from", t.From.String(), "to", to.String(), "trigger", trigger)
	if forced {
		log.Warn("edit mode forced")
	} else {
		log.Info("edit mode changed")
	}
}
