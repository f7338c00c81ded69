// Package server implements the MCP (Model Context Protocol) server for image editing.
//
// This package provides a JSON-RPC 2.0 server that exposes an image editing session
// through the MCP protocol. Editing stays local: the server runs on the user's
// machine and talks to its client over stdio.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Session lifecycle:
//   - editor_open: Load an image and start a session
//   - editor_close: End a session
//   - editor_edit_mode: Enter, leave, or force edit mode
//   - editor_select_tool: Choose crop, resize, blur, paint or text
//
// Edits:
//   - editor_stroke: Blur, paint, erase, arrow, double arrow or stamp
//   - editor_crop: Crop to a rectangle
//   - editor_resize: Resize with optional aspect lock
//   - editor_undo, editor_redo: Move through history
//
// Output:
//   - editor_export: Encode under a byte budget
//   - editor_stats: Dimensions and size estimate
//   - editor_sample_color: Color at a pixel
//   - editor_save: Write to the local blob store
//
// # Sessions
//
// Each editor_open creates an editor.Session keyed by a UUID. Decoded sources
// are cached by path, but every session edits its own copy of the pixels.
// Sessions are closed when the client disconnects.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Edits that clamp to nothing are not errors; they report changed=false.
//
// # Usage
//
//	cfg, _ := config.Load(config.Path())
//	srv := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
