package editor

import (
	"fmt"
	"strings"

	"github.com/ironsheep/image-editor-mcp/internal/brush"
)

// Tool is the single "current tool" of a session. Exactly one is active at a
// time, so combinations like cropping while painting cannot be expressed.
type Tool int

const (
	ToolNone Tool = iota
	ToolCrop
	ToolResize
	ToolBlur
	ToolPaint
	ToolText
)

var toolNames = [...]string{
	ToolNone:   "none",
	ToolCrop:   "crop",
	ToolResize: "resize",
	ToolBlur:   "blur",
	ToolPaint:  "paint",
	ToolText:   "text",
}

func (t Tool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// ParseTool maps a tool name to a Tool.
func ParseTool(s string) (Tool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range toolNames {
		if name == s {
			return Tool(i), nil
		}
	}
	return ToolNone, fmt.Errorf("unknown tool: %s", s)
}

// Allows reports whether a stroke in mode may run under this tool.
func (t Tool) Allows(mode brush.Mode) bool {
	return ToolFor(mode) == t
}

// ToolFor returns the tool a brush mode belongs to.
func ToolFor(mode brush.Mode) Tool {
	switch mode {
	case brush.Blur:
		return ToolBlur
	case brush.Paint, brush.Erase, brush.Arrow, brush.DoubleArrow:
		return ToolPaint
	case brush.Stamp:
		return ToolText
	}
	return ToolNone
}
