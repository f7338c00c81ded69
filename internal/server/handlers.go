package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ironsheep/image-editor-mcp/internal/brush"
	"github.com/ironsheep/image-editor-mcp/internal/editor"
	"github.com/ironsheep/image-editor-mcp/internal/imaging"
	"github.com/ironsheep/image-editor-mcp/internal/store"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "editor_open", "editor_stroke").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if s.cfg.LogLevel == "debug" {
			log.Printf("Tool %s failed: %v", params.Name, err)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies configured defaults for optional parameters
//  3. Looks up the session
//  4. Calls the matching editor.Session method
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	// Session lifecycle
	case "editor_open":
		return s.handleOpen(args)
	case "editor_close":
		return s.handleClose(args)
	case "editor_edit_mode":
		return s.handleEditMode(args)
	case "editor_select_tool":
		return s.handleSelectTool(args)

	// Edits
	case "editor_stroke":
		return s.handleStroke(args)
	case "editor_crop":
		return s.handleCrop(args)
	case "editor_resize":
		return s.handleResize(args)
	case "editor_undo":
		return s.handleUndo(args, false)
	case "editor_redo":
		return s.handleUndo(args, true)

	// Output
	case "editor_export":
		return s.handleExport(args)
	case "editor_stats":
		return s.handleStats(args)
	case "editor_sample_color":
		return s.handleSampleColor(args)
	case "editor_save":
		return s.handleSave(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// sessionInfo is returned by every tool that changes session state.
type sessionInfo struct {
	SessionID string `json:"session_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Mode      string `json:"mode"`
	Tool      string `json:"tool"`
	CanUndo   bool   `json:"can_undo"`
	CanRedo   bool   `json:"can_redo"`
}

func describe(sess *editor.Session) *sessionInfo {
	info := &sessionInfo{
		SessionID: sess.ID(),
		Mode:      sess.Mode().String(),
		Tool:      sess.Tool().String(),
		CanUndo:   sess.CanUndo(),
		CanRedo:   sess.CanRedo(),
	}
	if surface := sess.Surface(); surface != nil {
		info.Width, info.Height = surface.Width(), surface.Height()
	}
	return info
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

// sessionFor decodes args into a and returns the session it names. a must
// embed sessionArgs.
func (s *Server) sessionFor(args json.RawMessage, a interface{ id() string }) (*editor.Session, error) {
	if err := json.Unmarshal(args, a); err != nil {
		return nil, err
	}
	return s.session(a.id())
}

func (a *sessionArgs) id() string { return a.SessionID }

// === Session Lifecycle Handlers ===

type openArgs struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ImageBase64 string `json:"image_base64"`
	ViewOnly    bool   `json:"view_only"`
}

type openResult struct {
	sessionInfo
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes"`
}

// load decodes the one image source the arguments name. Files go through the
// cache; URLs and inline bytes are decoded fresh every time.
func (s *Server) load(a *openArgs) (*imaging.Source, string, error) {
	set := 0
	for _, v := range []string{a.Path, a.URL, a.ImageBase64} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, "", fmt.Errorf("exactly one of path, url or image_base64 is required")
	}

	switch {
	case a.Path != "":
		src, err := s.cache.Load(a.Path)
		return src, a.Path, err
	case a.URL != "":
		src, err := imaging.LoadURL(context.Background(), s.client, a.URL)
		return src, a.URL, err
	}
	data, err := base64.StdEncoding.DecodeString(a.ImageBase64)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image_base64: %w", err)
	}
	src, err := imaging.LoadBytes(data, "image_base64")
	return src, "image_base64", err
}

func (s *Server) handleOpen(args json.RawMessage) (interface{}, error) {
	var a openArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, name, err := s.load(&a)
	if err != nil {
		return nil, err
	}
	var onChange func(editor.Change)
	if s.cfg.Store.Autosave {
		onChange = s.autosave
	}
	sess, err := editor.Open(src, editor.Options{
		Name:         name,
		HistoryLimit: s.cfg.History.MaxEntries,
		OnChange:     onChange,
	})
	if err != nil {
		return nil, err
	}
	if !a.ViewOnly {
		if err := sess.EnterEditMode(); err != nil {
			return nil, err
		}
	}
	s.addSession(sess)
	return &openResult{
		sessionInfo: *describe(sess),
		Format:      src.Format,
		SizeBytes:   src.SizeBytes,
	}, nil
}

func (s *Server) handleClose(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, ok := s.removeSession(a.SessionID)
	if !ok {
		return nil, fmt.Errorf("unknown session: %q", a.SessionID)
	}
	sess.Close()
	return map[string]interface{}{"session_id": a.SessionID, "closed": true}, nil
}

type editModeArgs struct {
	sessionArgs
	Mode    string `json:"mode"`
	Force   bool   `json:"force"`
	Trigger string `json:"trigger"`
}

func (s *Server) handleEditMode(args json.RawMessage) (interface{}, error) {
	var a editModeArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	switch {
	case a.Mode == "editing" && a.Force:
		err = sess.ForceEditMode(a.Trigger)
	case a.Mode == "editing":
		err = sess.EnterEditMode()
	case a.Mode == "viewing":
		err = sess.ExitEditMode()
	default:
		err = fmt.Errorf("mode must be editing or viewing, got %q", a.Mode)
	}
	if err != nil {
		return nil, err
	}
	return describe(sess), nil
}

type selectToolArgs struct {
	sessionArgs
	Tool string `json:"tool"`
}

func (s *Server) handleSelectTool(args json.RawMessage) (interface{}, error) {
	var a selectToolArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	tool, err := editor.ParseTool(a.Tool)
	if err != nil {
		return nil, err
	}
	if err := sess.SelectTool(tool); err != nil {
		return nil, err
	}
	return describe(sess), nil
}

// ensureTool selects t unless it is already current, so single tool calls
// can edit without a separate editor_select_tool round trip.
func ensureTool(sess *editor.Session, t editor.Tool) error {
	if sess.Tool() == t {
		return nil
	}
	return sess.SelectTool(t)
}

// === Edit Handlers ===

type strokeArgs struct {
	sessionArgs
	Mode      string        `json:"mode"`
	Points    []brush.Point `json:"points"`
	Radius    float64       `json:"radius"`
	Color     string        `json:"color"`
	Intensity float64       `json:"intensity"`
	Kernel    string        `json:"kernel"`
	Glyph     string        `json:"glyph"`

	// View, when set, means Points are pointer positions inside that view.
	View *imaging.View `json:"view"`
}

type strokeResult struct {
	sessionInfo
	Changed bool           `json:"changed"`
	Points  int            `json:"points"`
	Dirty   imaging.Region `json:"dirty"`
}

// brushParams fills unset stroke arguments from the configured defaults.
func (s *Server) brushParams(a *strokeArgs) (brush.Params, error) {
	d := s.cfg.Brush
	p := brush.Params{Radius: a.Radius, Intensity: a.Intensity, Glyph: a.Glyph}
	if p.Radius <= 0 {
		p.Radius = d.Radius
	}
	if p.Intensity <= 0 {
		p.Intensity = d.Intensity
	}

	colorHex := a.Color
	if colorHex == "" {
		colorHex = d.Color
	}
	c, err := imaging.ParseColor(colorHex)
	if err != nil {
		return p, err
	}
	p.Color = c

	kernel := a.Kernel
	if kernel == "" {
		kernel = d.BlurKernel
	}
	if p.Kernel, err = imaging.ParseBlurKernel(kernel); err != nil {
		return p, err
	}
	return p, nil
}

func (s *Server) handleStroke(args json.RawMessage) (interface{}, error) {
	var a strokeArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	mode, err := brush.ParseMode(a.Mode)
	if err != nil {
		return nil, err
	}
	params, err := s.brushParams(&a)
	if err != nil {
		return nil, err
	}
	if err := ensureTool(sess, editor.ToolFor(mode)); err != nil {
		return nil, err
	}

	var res brush.Result
	if a.View != nil && len(a.Points) > 0 {
		res, err = pointerStroke(sess, *a.View, mode, params, a.Points)
	} else {
		res, err = sess.ApplyStroke(mode, params, a.Points)
	}
	if err != nil {
		return nil, err
	}
	return &strokeResult{
		sessionInfo: *describe(sess),
		Changed:     res.Changed(),
		Points:      res.Points,
		Dirty:       imaging.RegionFromRect(res.Dirty),
	}, nil
}

// pointerStroke replays pointer samples as down, move..., up.
func pointerStroke(sess *editor.Session, view imaging.View, mode brush.Mode, params brush.Params, pts []brush.Point) (brush.Result, error) {
	sess.SetView(view)
	if err := sess.PointerDown(pts[0].X, pts[0].Y, mode, params); err != nil {
		return brush.Result{}, err
	}
	for _, pt := range pts[1:] {
		if err := sess.PointerMove(pt.X, pt.Y); err != nil {
			sess.LeaveStroke()
			return brush.Result{}, err
		}
	}
	return sess.PointerUp()
}

type cropArgs struct {
	sessionArgs
	imaging.Region
	View *imaging.View `json:"view"`
}

type changeResult struct {
	sessionInfo
	Changed bool `json:"changed"`
}

func (s *Server) handleCrop(args json.RawMessage) (interface{}, error) {
	var a cropArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	if err := ensureTool(sess, editor.ToolCrop); err != nil {
		return nil, err
	}
	var changed bool
	if a.View != nil {
		sess.SetView(*a.View)
		changed, err = sess.CropDisplay(a.Region)
	} else {
		changed, err = sess.Crop(a.Region)
	}
	if err != nil {
		return nil, err
	}
	return &changeResult{sessionInfo: *describe(sess), Changed: changed}, nil
}

type resizeArgs struct {
	sessionArgs
	Width        int   `json:"width"`
	Height       int   `json:"height"`
	LockAspect   *bool `json:"lock_aspect"`
	AllowUpscale bool  `json:"allow_upscale"`
}

func (s *Server) handleResize(args json.RawMessage) (interface{}, error) {
	var a resizeArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	if a.Width <= 0 && a.Height <= 0 {
		return nil, fmt.Errorf("width or height is required")
	}
	if err := ensureTool(sess, editor.ToolResize); err != nil {
		return nil, err
	}
	lock := a.LockAspect == nil || *a.LockAspect
	changed, err := sess.Resize(imaging.ResizeTarget{Width: a.Width, Height: a.Height}, lock, a.AllowUpscale)
	if err != nil {
		return nil, err
	}
	return &changeResult{sessionInfo: *describe(sess), Changed: changed}, nil
}

func (s *Server) handleUndo(args json.RawMessage, redo bool) (interface{}, error) {
	var a sessionArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	var changed bool
	if redo {
		_, changed = sess.Redo()
	} else {
		_, changed = sess.Undo()
	}
	return &changeResult{sessionInfo: *describe(sess), Changed: changed}, nil
}

// === Output Handlers ===

type exportArgs struct {
	sessionArgs
	Format      string `json:"format"`
	Quality     int    `json:"quality"`
	TargetBytes *int   `json:"target_bytes"`
	MaxAttempts int    `json:"max_attempts"`
	Grayscale   *bool  `json:"grayscale"`
	OutputPath  string `json:"output_path"`
}

type exportResult struct {
	*editor.ExportResult
	Format      string `json:"format"`
	OutputPath  string `json:"output_path,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

// exportOptions merges tool arguments over the configured export defaults.
func (s *Server) exportOptions(a *exportArgs) (imaging.ExportOptions, error) {
	d := s.cfg.Export
	name := a.Format
	if name == "" {
		name = d.Format
	}
	f, err := imaging.ParseFormat(name)
	if err != nil {
		return imaging.ExportOptions{}, err
	}
	opts := imaging.ExportOptions{
		Format:      f,
		Quality:     d.Quality,
		TargetBytes: d.TargetBytes,
		MaxAttempts: d.MaxAttempts,
		Grayscale:   d.Grayscale,
	}
	if a.Quality > 0 {
		opts.Quality = a.Quality
	}
	if a.TargetBytes != nil {
		opts.TargetBytes = *a.TargetBytes
	}
	if a.MaxAttempts > 0 {
		opts.MaxAttempts = a.MaxAttempts
	}
	if a.Grayscale != nil {
		opts.Grayscale = *a.Grayscale
	}
	return opts, nil
}

func (s *Server) handleExport(args json.RawMessage) (interface{}, error) {
	var a exportArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	opts, err := s.exportOptions(&a)
	if err != nil {
		return nil, err
	}
	res, err := sess.Export(context.Background(), opts)
	if err != nil {
		return nil, err
	}

	out := &exportResult{ExportResult: res, Format: res.Format.String()}
	if a.OutputPath == "" {
		out.ImageBase64 = base64.StdEncoding.EncodeToString(res.Data)
		return out, nil
	}
	if err := os.MkdirAll(filepath.Dir(a.OutputPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(a.OutputPath, res.Data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	out.OutputPath = a.OutputPath
	return out, nil
}

func (s *Server) handleStats(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	return sess.Stats()
}

type sampleColorArgs struct {
	sessionArgs
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	return sess.SampleColor(a.X, a.Y)
}

type saveArgs struct {
	sessionArgs
	Key    string `json:"key"`
	Format string `json:"format"`
}

func (s *Server) handleSave(args json.RawMessage) (interface{}, error) {
	var a saveArgs
	sess, err := s.sessionFor(args, &a)
	if err != nil {
		return nil, err
	}
	f := sess.Format()
	if a.Format != "" {
		if f, err = imaging.ParseFormat(a.Format); err != nil {
			return nil, err
		}
	}
	blob, err := sess.Blob(f)
	if err != nil {
		return nil, err
	}
	key := a.Key
	if key == "" {
		key = blob.ID
	}

	fs, err := s.blobStore()
	if err != nil {
		return nil, err
	}
	meta := store.Meta{
		ID:           key,
		MimeType:     blob.MimeType,
		Width:        blob.Width,
		Height:       blob.Height,
		LastModified: blob.LastModified,
	}
	if err := fs.Put(key, store.Blob{Meta: meta, Data: blob.Data}); err != nil {
		return nil, err
	}
	meta.SizeBytes = len(blob.Data)
	return meta, nil
}

// autosave persists the committed state under the session ID after every
// commit, undo and redo. It runs inside the session's change callback, so
// failures can only be logged.
func (s *Server) autosave(c editor.Change) {
	blob, err := c.Blob()
	if err != nil {
		log.Printf("Autosave of %s failed: %v", c.SessionID, err)
		return
	}
	fs, err := s.blobStore()
	if err != nil {
		log.Printf("Autosave of %s failed: %v", c.SessionID, err)
		return
	}
	meta := store.Meta{
		ID:           c.SessionID,
		MimeType:     blob.MimeType,
		Width:        blob.Width,
		Height:       blob.Height,
		LastModified: blob.LastModified,
	}
	if err := fs.Put(c.SessionID, store.Blob{Meta: meta, Data: blob.Data}); err != nil {
		log.Printf("Autosave of %s failed: %v", c.SessionID, err)
	}
}
