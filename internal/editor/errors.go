package editor

import (
	"errors"

	"github.com/ironsheep/image-editor-mcp/internal/brush"
)

var (
	// ErrNotEditing is returned by mutations while the session is Viewing.
	ErrNotEditing = errors.New("session is not in edit mode")

	// ErrToolMismatch is returned when an operation does not belong to the
	// current tool.
	ErrToolMismatch = errors.New("operation does not match the current tool")

	// ErrStrokeActive is returned by operations that cannot run during a
	// stroke, and by BeginStroke while another stroke runs.
	ErrStrokeActive = brush.ErrStrokeActive

	// ErrNoStroke is returned when extending or ending without a stroke.
	ErrNoStroke = brush.ErrNoStroke

	// ErrSessionClosed is returned by every operation after Close.
	ErrSessionClosed = errors.New("session is closed")

	// ErrMissingTrigger is returned by ForceEditMode without a trigger.
	ErrMissingTrigger = errors.New("forced edit mode needs a trigger")
)
