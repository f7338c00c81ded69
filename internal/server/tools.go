package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID returned by editor_open",
	}
}

func viewProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional display view. When set, coordinates are pointer positions and are mapped to source pixels: rect is the element's layout box before zoom, zoom the extra scale on top of it.",
		"properties": map[string]interface{}{
			"rect": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x":      map[string]interface{}{"type": "number"},
					"y":      map[string]interface{}{"type": "number"},
					"width":  map[string]interface{}{"type": "number"},
					"height": map[string]interface{}{"type": "number"},
				},
			},
			"zoom": map[string]interface{}{
				"type":    "number",
				"default": 1.0,
			},
		},
	}
}

// sessionOnlySchema is the schema for tools that take just a session ID.
func sessionOnlySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": sessionIDProperty(),
		},
		"required": []string{"session_id"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session lifecycle
		{
			Name:        "editor_open",
			Description: "Open an image for editing from exactly one of path, url or image_base64. Returns a session ID used by every other editor tool. The session starts in edit mode unless view_only is set.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file (PNG, JPEG, GIF, WebP, BMP or TIFF)",
					},
					"url": map[string]interface{}{
						"type":        "string",
						"description": "http(s) URL to fetch the image from",
					},
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Encoded image bytes, standard base64",
					},
					"view_only": map[string]interface{}{
						"type":        "boolean",
						"description": "Open in viewing mode. Default false",
						"default":     false,
					},
				},
				"required": []string{},
			},
		},
		{
			Name:        "editor_close",
			Description: "Close an editing session and release its image and undo history.",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "editor_edit_mode",
			Description: "Switch a session between viewing and editing. Leaving edit mode finishes any stroke in progress. force enters edit mode outside the normal flow and is recorded with its trigger.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"mode": map[string]interface{}{
						"type": "string",
						"enum": []string{"editing", "viewing"},
					},
					"force": map[string]interface{}{
						"type":        "boolean",
						"description": "Force edit mode. Requires trigger",
						"default":     false,
					},
					"trigger": map[string]interface{}{
						"type":        "string",
						"description": "Why edit mode is being forced; kept in the session's audit log",
					},
				},
				"required": []string{"session_id", "mode"},
			},
		},
		{
			Name:        "editor_select_tool",
			Description: "Select the current tool. Only one tool is active at a time; selecting resize captures the aspect ratio for the resize that follows.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"tool": map[string]interface{}{
						"type": "string",
						"enum": []string{"none", "crop", "resize", "blur", "paint", "text"},
					},
				},
				"required": []string{"session_id", "tool"},
			},
		},

		// Edits
		{
			Name:        "editor_stroke",
			Description: "Apply one brush stroke through a list of points and commit it to undo history. Modes: blur, paint, erase, arrow, double_arrow (drawn from first to last point), stamp (glyph at the first point). The matching tool is selected automatically.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"mode": map[string]interface{}{
						"type": "string",
						"enum": []string{"blur", "paint", "erase", "arrow", "double_arrow", "stamp"},
					},
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Stroke samples in source pixels, or pointer positions when view is set",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x": map[string]interface{}{"type": "number"},
								"y": map[string]interface{}{"type": "number"},
							},
							"required": []string{"x", "y"},
						},
					},
					"radius": map[string]interface{}{
						"type":        "number",
						"description": "Brush radius in source pixels. Defaults to the configured brush radius",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Color as #RRGGBB or #RRGGBBAA for paint, arrows and stamp",
					},
					"intensity": map[string]interface{}{
						"type":        "number",
						"description": "Blur strength (Gaussian sigma or box radius)",
					},
					"kernel": map[string]interface{}{
						"type": "string",
						"enum": []string{"gaussian", "box"},
					},
					"glyph": map[string]interface{}{
						"type":        "string",
						"description": "Text drawn by stamp",
					},
					"view": viewProperty(),
				},
				"required": []string{"session_id", "mode", "points"},
			},
		},
		{
			Name:        "editor_crop",
			Description: "Crop to a rectangle. The rectangle is clamped to the image; a rectangle entirely outside it changes nothing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"x":          map[string]interface{}{"type": "integer", "description": "Left edge"},
					"y":          map[string]interface{}{"type": "integer", "description": "Top edge"},
					"width":      map[string]interface{}{"type": "integer"},
					"height":     map[string]interface{}{"type": "integer"},
					"view":       viewProperty(),
				},
				"required": []string{"session_id", "x", "y", "width", "height"},
			},
		},
		{
			Name:        "editor_resize",
			Description: "Resize the image with Lanczos resampling. Results are never smaller than 10 px and never larger than the original unless allow_upscale is set.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Target width. With lock_aspect, omit height to derive it",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Target height. With lock_aspect, omit width to derive it",
					},
					"lock_aspect": map[string]interface{}{
						"type":    "boolean",
						"default": true,
					},
					"allow_upscale": map[string]interface{}{
						"type":    "boolean",
						"default": false,
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "editor_undo",
			Description: "Undo the last committed edit. Does nothing when there is nothing to undo.",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "editor_redo",
			Description: "Redo the last undone edit. Does nothing after a new edit has been made.",
			InputSchema: sessionOnlySchema(),
		},

		// Output
		{
			Name:        "editor_export",
			Description: "Encode the image, lowering quality and then dimensions until it fits target_bytes. Returns base64 data, or writes to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"format": map[string]interface{}{
						"type": "string",
						"enum": []string{"jpeg", "png", "webp"},
					},
					"quality": map[string]interface{}{
						"type":        "integer",
						"description": "Starting quality 1-100",
					},
					"target_bytes": map[string]interface{}{
						"type":        "integer",
						"description": "Size budget in bytes. 0 encodes once",
					},
					"max_attempts": map[string]interface{}{
						"type": "integer",
					},
					"grayscale": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop color for maximum compression",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Write the result here instead of returning it",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "editor_stats",
			Description: "Current dimensions, estimated encoded size, and percent change from the original file size.",
			InputSchema: sessionOnlySchema(),
		},
		{
			Name:        "editor_sample_color",
			Description: "Get the exact color value at a pixel of the edited image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"session_id", "x", "y"},
			},
		},
		{
			Name:        "editor_save",
			Description: "Save the last committed state to the local blob store with its metadata.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Store key. Defaults to the session ID",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"jpeg", "png", "webp"},
						"description": "Defaults to the source format",
					},
				},
				"required": []string{"session_id"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
