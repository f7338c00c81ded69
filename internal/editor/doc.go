// Package editor ties the editing components into a session: one image, its
// undo history, the current tool, and the edit mode.
//
// # Lifecycle
//
// Open a session from a decoded source, call EnterEditMode, select a tool,
// then crop, resize, or stroke. Every completed edit is committed to history
// as a snapshot. Undo and Redo move through those snapshots. Close releases
// everything.
//
// # Tools and Modes
//
// A session has exactly one current tool. Brush modes are only legal under
// their tool:
//
//	ToolBlur   blur
//	ToolPaint  paint, erase, arrow, double_arrow
//	ToolText   stamp
//
// Crop needs ToolCrop and Resize needs ToolResize. Outside edit mode every
// mutation returns ErrNotEditing.
//
// # Strokes
//
// Strokes come in source-pixel space (BeginStroke, ExtendStroke, EndStroke) or
// in pointer space (PointerDown, PointerMove, PointerUp) mapped through the
// View set with SetView. A stroke that changed no pixels is not committed.
//
// # Export
//
// Export and Blob read the last committed snapshot, never the live surface,
// so a stroke in progress does not leak into the output.
package editor
