package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/image-editor-mcp/internal/config"
)

// createTestImageFile writes a solid PNG into a temp dir and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Dir = filepath.Join(t.TempDir(), "blobs")
	return New(cfg)
}

// callTool runs a tool and decodes its result through JSON, the way a client
// would see it.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("failed to marshal args: %v", err)
	}
	result, err := s.executeTool(name, raw)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(mustMarshalJSON(result)), &out); err != nil {
		t.Fatalf("%s result is not an object: %v", name, err)
	}
	return out
}

func callToolErr(t *testing.T, s *Server, name string, args map[string]interface{}) error {
	t.Helper()
	raw, _ := json.Marshal(args)
	_, err := s.executeTool(name, raw)
	return err
}

func openTestSession(t *testing.T, s *Server, width, height int) string {
	t.Helper()
	path := createTestImageFile(t, width, height, color.RGBA{255, 0, 0, 255})
	res := callTool(t, s, "editor_open", map[string]interface{}{"path": path})
	id, ok := res["session_id"].(string)
	if !ok || id == "" {
		t.Fatalf("editor_open returned no session_id: %v", res)
	}
	return id
}

func assertDims(t *testing.T, res map[string]interface{}, width, height int) {
	t.Helper()
	if res["width"] != float64(width) || res["height"] != float64(height) {
		t.Errorf("dimensions: got %vx%v, want %dx%d", res["width"], res["height"], width, height)
	}
}

func TestHandleToolsCall_Open(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	params := map[string]interface{}{
		"name": "editor_open",
		"arguments": map[string]interface{}{
			"path": path,
		},
	}
	paramsJSON, _ := json.Marshal(params)

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}

	resp := s.handleRequest(req)

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if !strings.Contains(text, `"mode": "editing"`) {
		t.Errorf("expected session to open in edit mode, got %s", text)
	}
	if len(s.sessions) != 1 {
		t.Errorf("sessions: got %d, want 1", len(s.sessions))
	}
}

func TestHandleToolsCall_ToolError(t *testing.T) {
	s := newTestServer(t)

	params := map[string]interface{}{
		"name": "editor_stats",
		"arguments": map[string]interface{}{
			"session_id": "missing",
		},
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 2, Method: "tools/call", Params: paramsJSON})

	if resp.Error == nil {
		t.Fatal("Expected error for unknown session")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      3,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})

	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := newTestServer(t)

	_, err := s.executeTool("image_load", json.RawMessage(`{}`))
	if err == nil || !strings.Contains(err.Error(), "unknown tool") {
		t.Errorf("expected unknown tool error, got %v", err)
	}
}

func TestExecuteTool_OpenErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"no source", map[string]interface{}{}},
		{"two sources", map[string]interface{}{"path": "/a.png", "url": "http://example.invalid/a.png"}},
		{"bad base64", map[string]interface{}{"image_base64": "!!not base64!!"}},
		{"bytes not an image", map[string]interface{}{"image_base64": base64.StdEncoding.EncodeToString([]byte("hello"))}},
		{"nonexistent file", map[string]interface{}{"path": filepath.Join(t.TempDir(), "nope.png")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := callToolErr(t, s, "editor_open", tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
	if len(s.sessions) != 0 {
		t.Errorf("failed opens should not register sessions, got %d", len(s.sessions))
	}
}

func TestExecuteTool_CropResizeUndoRedo(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	res := callTool(t, s, "editor_crop", map[string]interface{}{
		"session_id": id, "x": 10, "y": 10, "width": 50, "height": 40,
	})
	if res["changed"] != true {
		t.Error("crop should report changed")
	}
	if res["tool"] != "crop" {
		t.Errorf("tool: got %v, want crop", res["tool"])
	}
	assertDims(t, res, 50, 40)

	res = callTool(t, s, "editor_resize", map[string]interface{}{
		"session_id": id, "width": 25,
	})
	if res["changed"] != true {
		t.Error("resize should report changed")
	}
	assertDims(t, res, 25, 20)

	res = callTool(t, s, "editor_undo", map[string]interface{}{"session_id": id})
	if res["changed"] != true {
		t.Error("undo should report changed")
	}
	assertDims(t, res, 50, 40)
	if res["can_redo"] != true {
		t.Error("expected can_redo after undo")
	}

	res = callTool(t, s, "editor_redo", map[string]interface{}{"session_id": id})
	assertDims(t, res, 25, 20)

	res = callTool(t, s, "editor_redo", map[string]interface{}{"session_id": id})
	if res["changed"] != false {
		t.Error("redo at the end of history should not change anything")
	}
}

func TestExecuteTool_CropOutsideImage(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	res := callTool(t, s, "editor_crop", map[string]interface{}{
		"session_id": id, "x": 500, "y": 500, "width": 10, "height": 10,
	})
	if res["changed"] != false {
		t.Error("crop outside the image should be a no-op")
	}
	assertDims(t, res, 100, 80)
}

func TestExecuteTool_ResizeRequiresSize(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	if err := callToolErr(t, s, "editor_resize", map[string]interface{}{"session_id": id}); err == nil {
		t.Error("expected error without width or height")
	}
}

func TestExecuteTool_StrokeAndSample(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	res := callTool(t, s, "editor_stroke", map[string]interface{}{
		"session_id": id,
		"mode":       "paint",
		"color":      "#0000FF",
		"radius":     6,
		"points":     []map[string]float64{{"x": 20, "y": 40}, {"x": 60, "y": 40}},
	})
	if res["changed"] != true {
		t.Fatal("paint stroke should change pixels")
	}
	if res["tool"] != "paint" {
		t.Errorf("tool: got %v, want paint", res["tool"])
	}
	if res["can_undo"] != true {
		t.Error("committed stroke should be undoable")
	}

	sample := callTool(t, s, "editor_sample_color", map[string]interface{}{"session_id": id, "x": 40, "y": 40})
	if sample["hex"] != "#0000FF" {
		t.Errorf("painted pixel: got %v, want #0000FF", sample["hex"])
	}
	sample = callTool(t, s, "editor_sample_color", map[string]interface{}{"session_id": id, "x": 90, "y": 5})
	if sample["hex"] != "#FF0000" {
		t.Errorf("untouched pixel: got %v, want #FF0000", sample["hex"])
	}

	callTool(t, s, "editor_undo", map[string]interface{}{"session_id": id})
	sample = callTool(t, s, "editor_sample_color", map[string]interface{}{"session_id": id, "x": 40, "y": 40})
	if sample["hex"] != "#FF0000" {
		t.Errorf("after undo: got %v, want #FF0000", sample["hex"])
	}
}

func TestExecuteTool_StrokeWithView(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	// Displayed at half size: pointer (20, 20) is source pixel (40, 40).
	res := callTool(t, s, "editor_stroke", map[string]interface{}{
		"session_id": id,
		"mode":       "paint",
		"color":      "#00FF00",
		"radius":     4,
		"points":     []map[string]float64{{"x": 20, "y": 20}},
		"view": map[string]interface{}{
			"rect": map[string]float64{"x": 0, "y": 0, "width": 50, "height": 40},
			"zoom": 1,
		},
	})
	if res["changed"] != true {
		t.Fatal("stroke should change pixels")
	}

	sample := callTool(t, s, "editor_sample_color", map[string]interface{}{"session_id": id, "x": 40, "y": 40})
	if sample["hex"] != "#00FF00" {
		t.Errorf("mapped pixel: got %v, want #00FF00", sample["hex"])
	}
}

func TestExecuteTool_StrokeErrors(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"bad mode", map[string]interface{}{"session_id": id, "mode": "smudge"}},
		{"bad color", map[string]interface{}{"session_id": id, "mode": "paint", "color": "nope"}},
		{"bad kernel", map[string]interface{}{"session_id": id, "mode": "blur", "kernel": "median"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := callToolErr(t, s, "editor_stroke", tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExecuteTool_ViewOnly(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	res := callTool(t, s, "editor_open", map[string]interface{}{"path": path, "view_only": true})
	id := res["session_id"].(string)
	if res["mode"] != "viewing" {
		t.Errorf("mode: got %v, want viewing", res["mode"])
	}

	if err := callToolErr(t, s, "editor_crop", map[string]interface{}{
		"session_id": id, "x": 0, "y": 0, "width": 10, "height": 10,
	}); err == nil {
		t.Error("crop should fail outside edit mode")
	}

	if err := callToolErr(t, s, "editor_edit_mode", map[string]interface{}{
		"session_id": id, "mode": "editing", "force": true,
	}); err == nil {
		t.Error("forced edit mode without a trigger should fail")
	}

	res = callTool(t, s, "editor_edit_mode", map[string]interface{}{
		"session_id": id, "mode": "editing", "force": true, "trigger": "test",
	})
	if res["mode"] != "editing" {
		t.Errorf("mode: got %v, want editing", res["mode"])
	}

	res = callTool(t, s, "editor_edit_mode", map[string]interface{}{"session_id": id, "mode": "viewing"})
	if res["mode"] != "viewing" || res["tool"] != "none" {
		t.Errorf("after exit: got mode %v tool %v", res["mode"], res["tool"])
	}

	if err := callToolErr(t, s, "editor_edit_mode", map[string]interface{}{"session_id": id, "mode": "sideways"}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestExecuteTool_SelectTool(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	res := callTool(t, s, "editor_select_tool", map[string]interface{}{"session_id": id, "tool": "blur"})
	if res["tool"] != "blur" {
		t.Errorf("tool: got %v, want blur", res["tool"])
	}

	if err := callToolErr(t, s, "editor_select_tool", map[string]interface{}{"session_id": id, "tool": "lasso"}); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestExecuteTool_ExportBase64(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	res := callTool(t, s, "editor_export", map[string]interface{}{
		"session_id": id, "format": "png", "target_bytes": 0,
	})

	if res["format"] != "png" {
		t.Errorf("format: got %v, want png", res["format"])
	}
	if res["mime_type"] != "image/png" {
		t.Errorf("mime_type: got %v, want image/png", res["mime_type"])
	}
	if id, _ := res["request_id"].(string); id == "" {
		t.Error("expected request_id")
	}
	assertDims(t, res, 100, 80)

	encoded, _ := res["image_base64"].(string)
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("image_base64 is not valid base64: %v", err)
	}
	img, err := png.Decode(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("exported data is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 80 {
		t.Errorf("decoded size: got %v", img.Bounds())
	}
}

func TestExecuteTool_ExportToFile(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)
	out := filepath.Join(t.TempDir(), "exports", "out.jpg")

	res := callTool(t, s, "editor_export", map[string]interface{}{
		"session_id": id, "format": "jpeg", "output_path": out,
	})

	if res["output_path"] != out {
		t.Errorf("output_path: got %v, want %s", res["output_path"], out)
	}
	if _, ok := res["image_base64"]; ok {
		t.Error("image_base64 should be omitted when writing to a file")
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	if float64(info.Size()) != res["size_bytes"] {
		t.Errorf("file size %d does not match size_bytes %v", info.Size(), res["size_bytes"])
	}
}

func TestExecuteTool_Stats(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	callTool(t, s, "editor_crop", map[string]interface{}{
		"session_id": id, "x": 0, "y": 0, "width": 40, "height": 30,
	})
	res := callTool(t, s, "editor_stats", map[string]interface{}{"session_id": id})

	assertDims(t, res, 40, 30)
	if res["original_width"] != float64(100) || res["original_height"] != float64(80) {
		t.Errorf("original: got %vx%v, want 100x80", res["original_width"], res["original_height"])
	}
	if res["format"] != "png" {
		t.Errorf("format: got %v, want png", res["format"])
	}
	if est, _ := res["estimated_bytes"].(float64); est <= 0 {
		t.Errorf("estimated_bytes: got %v", res["estimated_bytes"])
	}
}

func TestExecuteTool_Save(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	res := callTool(t, s, "editor_save", map[string]interface{}{"session_id": id, "key": "shot"})
	if res["id"] != "shot" {
		t.Errorf("id: got %v, want shot", res["id"])
	}
	if res["mime_type"] != "image/png" {
		t.Errorf("mime_type: got %v, want image/png", res["mime_type"])
	}
	assertDims(t, res, 100, 80)

	fs, err := s.blobStore()
	if err != nil {
		t.Fatalf("blobStore failed: %v", err)
	}
	blob, err := fs.Get("shot")
	if err != nil {
		t.Fatalf("saved blob not found: %v", err)
	}
	if float64(len(blob.Data)) != res["size_bytes"] {
		t.Errorf("stored %d bytes, result says %v", len(blob.Data), res["size_bytes"])
	}

	res = callTool(t, s, "editor_save", map[string]interface{}{"session_id": id, "format": "webp"})
	if res["id"] != id {
		t.Errorf("default key: got %v, want session id %s", res["id"], id)
	}
	if res["mime_type"] != "image/webp" {
		t.Errorf("mime_type: got %v, want image/webp", res["mime_type"])
	}
}

func TestExecuteTool_Close(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	res := callTool(t, s, "editor_close", map[string]interface{}{"session_id": id})
	if res["closed"] != true {
		t.Error("expected closed=true")
	}
	if len(s.sessions) != 0 {
		t.Errorf("sessions: got %d, want 0", len(s.sessions))
	}

	if err := callToolErr(t, s, "editor_close", map[string]interface{}{"session_id": id}); err == nil {
		t.Error("closing twice should fail")
	}
	if err := callToolErr(t, s, "editor_stats", map[string]interface{}{"session_id": id}); err == nil {
		t.Error("closed session should be unknown")
	}
}

func encodeTestPNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	data, err := os.ReadFile(createTestImageFile(t, width, height, c))
	if err != nil {
		t.Fatalf("failed to read test image: %v", err)
	}
	return data
}

func TestExecuteTool_OpenBase64(t *testing.T) {
	s := newTestServer(t)
	data := encodeTestPNG(t, 30, 20, color.RGBA{0, 0, 255, 255})

	res := callTool(t, s, "editor_open", map[string]interface{}{
		"image_base64": base64.StdEncoding.EncodeToString(data),
	})
	assertDims(t, res, 30, 20)
	if res["format"] != "png" || res["size_bytes"] != float64(len(data)) {
		t.Errorf("source: format %v size %v", res["format"], res["size_bytes"])
	}

	sample := callTool(t, s, "editor_sample_color", map[string]interface{}{"session_id": res["session_id"], "x": 1, "y": 1})
	if sample["hex"] != "#0000FF" {
		t.Errorf("pixel: got %v, want #0000FF", sample["hex"])
	}
}

func TestExecuteTool_OpenURL(t *testing.T) {
	data := encodeTestPNG(t, 40, 25, color.RGBA{0, 255, 0, 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	s := newTestServer(t)
	res := callTool(t, s, "editor_open", map[string]interface{}{"url": srv.URL + "/img.png"})
	assertDims(t, res, 40, 25)
	if res["mode"] != "editing" {
		t.Errorf("mode: got %v, want editing", res["mode"])
	}

	if err := callToolErr(t, s, "editor_open", map[string]interface{}{"url": srv.URL + "/missing.png"}); err == nil {
		t.Error("expected error for a 404")
	}
}

func TestExecuteTool_StampWithView(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	res := callTool(t, s, "editor_stroke", map[string]interface{}{
		"session_id": id,
		"mode":       "stamp",
		"glyph":      "X",
		"color":      "#0000FF",
		"radius":     10,
		"points":     []map[string]float64{{"x": 25, "y": 20}, {"x": 30, "y": 25}},
		"view": map[string]interface{}{
			"rect": map[string]float64{"x": 0, "y": 0, "width": 50, "height": 40},
			"zoom": 1,
		},
	})
	if res["changed"] != true || res["tool"] != "text" {
		t.Errorf("stamp: changed %v tool %v", res["changed"], res["tool"])
	}
	if res["can_undo"] != true {
		t.Error("stamp should be undoable")
	}

	sess, _ := s.session(id)
	if entries, _ := sess.History(); len(entries) != 2 {
		t.Errorf("stamp should commit once, history has %d entries", len(entries))
	}
}

func TestExecuteTool_Autosave(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Dir = filepath.Join(t.TempDir(), "blobs")
	cfg.Store.Autosave = true
	s := New(cfg)
	id := openTestSession(t, s, 100, 80)

	fs, err := s.blobStore()
	if err != nil {
		t.Fatalf("blobStore failed: %v", err)
	}
	if _, err := fs.Get(id); err == nil {
		t.Fatal("nothing should be saved before the first edit")
	}

	callTool(t, s, "editor_crop", map[string]interface{}{
		"session_id": id, "x": 0, "y": 0, "width": 40, "height": 30,
	})
	blob, err := fs.Get(id)
	if err != nil {
		t.Fatalf("crop was not autosaved: %v", err)
	}
	if blob.Meta.Width != 40 || blob.Meta.Height != 30 || blob.Meta.MimeType != "image/png" {
		t.Errorf("autosaved meta: got %+v", blob.Meta)
	}
	img, err := png.Decode(bytes.NewReader(blob.Data))
	if err != nil || img.Bounds().Dx() != 40 {
		t.Fatalf("autosaved data: err %v", err)
	}

	callTool(t, s, "editor_undo", map[string]interface{}{"session_id": id})
	blob, _ = fs.Get(id)
	if blob.Meta.Width != 100 || blob.Meta.Height != 80 {
		t.Errorf("undo was not autosaved: got %dx%d", blob.Meta.Width, blob.Meta.Height)
	}
}

func TestExecuteTool_NoAutosaveByDefault(t *testing.T) {
	s := newTestServer(t)
	id := openTestSession(t, s, 100, 80)

	callTool(t, s, "editor_crop", map[string]interface{}{
		"session_id": id, "x": 0, "y": 0, "width": 40, "height": 30,
	})
	if _, err := os.Stat(s.cfg.Store.Dir); !os.IsNotExist(err) {
		t.Errorf("store should stay untouched without autosave, stat err: %v", err)
	}
}
