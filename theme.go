package agenticflow

// Theme maps output roles to ANSI color indices (0-15). The terminal's own
// palette decides the actual colors. A negative index disables color for
// that role.
type Theme struct {
	Reasoning  int // Reasoning deltas
	ToolCall   int // Tool call headers
	ToolResult int // Tool results
	Step       int // Step boundaries
	Error      int // Error parts and failures
	Success    int // Finish and success indicators
	Muted      int // Status line, data parts, code gutters
	Accent     int // Headings, links, table headers
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Reasoning:  8,
		ToolCall:   3,
		ToolResult: 6,
		Step:       4,
		Error:      1,
		Success:    2,
		Muted:      8,
		Accent:     5,
	}
}

// PlainTheme disables every color.
func PlainTheme() Theme {
	return Theme{-1, -1, -1, -1, -1, -1, -1, -1}
}

// PartColor returns the color used to label parts of type t. Text deltas
// use the terminal's default foreground.
func (t Theme) PartColor(pt PartType) int {
	switch pt {
	case PartReasoningDelta:
		return t.Reasoning
	case PartToolCall:
		return t.ToolCall
	case PartToolResult:
		return t.ToolResult
	case PartStepStart, PartStepFinish:
		return t.Step
	case PartError:
		return t.Error
	case PartFinish:
		return t.Success
	case PartData:
		return t.Muted
	}
	return -1
}
