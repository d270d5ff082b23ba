package bubbletea

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agenticflow/agenticflow/terminal"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Block is one rendered element of the stream. The model owns layout, so
// View takes the available width.
type Block interface {
	View(width int) string
}

// Collapsible is a block whose body can be hidden.
type Collapsible interface {
	Block
	Toggle()
	Collapsed() bool
}

var (
	_ Block       = (*TextBlock)(nil)
	_ Collapsible = (*ReasoningBlock)(nil)
	_ Collapsible = (*ToolBlock)(nil)
	_ Block       = (*StepBlock)(nil)
	_ Block       = (*DataBlock)(nil)
	_ Block       = (*ErrorBlock)(nil)
)

// ReasoningBlock holds consecutive reasoning deltas. It starts collapsed.
type ReasoningBlock struct {
	content   strings.Builder
	collapsed bool
	styles    Styles
}

// NewReasoningBlock returns a collapsed ReasoningBlock.
func NewReasoningBlock(styles Styles) *ReasoningBlock {
	return &ReasoningBlock{collapsed: true, styles: styles}
}

// Append adds a reasoning delta.
func (b *ReasoningBlock) Append(text string) { b.content.WriteString(terminal.Sanitize(text)) }

func (b *ReasoningBlock) Toggle()         { b.collapsed = !b.collapsed }
func (b *ReasoningBlock) Collapsed() bool { return b.collapsed }

func (b *ReasoningBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	header := b.styles.Reasoning.Render(indicator(b.collapsed) + " Reasoning")
	if b.collapsed {
		return header
	}
	return header + "\n" + b.styles.Reasoning.Render(wrap.Render(b.content.String()))
}

// ToolBlock pairs a tool call with its result, matched by tool call ID.
// It starts collapsed; a failed result expands it.
type ToolBlock struct {
	id        string
	name      string
	args      string
	result    string
	hasResult bool
	failed    bool
	collapsed bool
	styles    Styles
}

// NewToolBlock returns the block for a toolCall part value.
func NewToolBlock(call any, styles Styles) *ToolBlock {
	b := &ToolBlock{name: "tool", collapsed: true, styles: styles}
	if m, ok := call.(map[string]any); ok {
		b.id = str(m["toolCallId"])
		if name := str(m["toolName"]); name != "" {
			b.name = name
		}
		b.args = compact(m["args"])
	}
	return b
}

// ID returns the tool call ID, or "" when the call carried none.
func (b *ToolBlock) ID() string { return b.id }

// SetResult records a toolResult part value.
func (b *ToolBlock) SetResult(result any) {
	b.hasResult = true
	v := result
	if m, ok := result.(map[string]any); ok {
		if r, ok := m["result"]; ok {
			v = r
		}
		if isErr, _ := m["isError"].(bool); isErr {
			b.failed = true
			b.collapsed = false
		}
	}
	b.result = compact(v)
}

func (b *ToolBlock) Toggle()         { b.collapsed = !b.collapsed }
func (b *ToolBlock) Collapsed() bool { return b.collapsed }

func (b *ToolBlock) View(width int) string {
	header := b.styles.ToolCall.Render(indicator(b.collapsed) + " " + b.name)
	switch {
	case !b.hasResult:
		header += " " + b.styles.Muted.Render("…")
	case b.failed:
		header += " " + b.styles.Error.Render("✗")
	default:
		header += " " + b.styles.Success.Render("✓")
	}
	if b.collapsed {
		if b.hasResult && b.result != "" {
			header += "  " + b.styles.Muted.Render(truncate(firstLine(b.result), max(width-lipgloss.Width(header)-2, 10)))
		}
		return header
	}
	wrap := lipgloss.NewStyle().Width(max(width-2, 10))
	var body []string
	if b.args != "" {
		body = append(body, b.styles.Muted.Render(wrap.Render("args: "+b.args)))
	}
	if b.hasResult {
		style := b.styles.ToolResult
		if b.failed {
			style = b.styles.Error
		}
		body = append(body, style.Render(wrap.Render(b.result)))
	}
	if len(body) == 0 {
		return header
	}
	return header + "\n" + lipgloss.NewStyle().PaddingLeft(2).Render(strings.Join(body, "\n"))
}

// StepBlock marks a step boundary.
type StepBlock struct {
	label  string
	styles Styles
}

// NewStepStart returns the marker for a stepStart part.
func NewStepStart(styles Styles) *StepBlock {
	return &StepBlock{label: "step", styles: styles}
}

// NewStepFinish returns the marker for a stepFinish part value.
func NewStepFinish(v any, styles Styles) *StepBlock {
	label := "step done"
	if m, ok := v.(map[string]any); ok {
		if reason := str(m["finishReason"]); reason != "" {
			label += " (" + reason + ")"
		}
	}
	return &StepBlock{label: label, styles: styles}
}

func (b *StepBlock) View(width int) string {
	text := "── " + b.label + " "
	if fill := width - lipgloss.Width(text); fill > 0 {
		text += strings.Repeat("─", fill)
	}
	return b.styles.Step.Render(text)
}

// DataBlock shows a data part on one line.
type DataBlock struct {
	value  string
	styles Styles
}

// NewDataBlock returns the block for a data part value.
func NewDataBlock(v any, styles Styles) *DataBlock {
	return &DataBlock{value: compact(v), styles: styles}
}

func (b *DataBlock) View(width int) string {
	return b.styles.Muted.Render(truncate("data "+b.value, width))
}

// ErrorBlock shows an error part reported by the agent.
type ErrorBlock struct {
	message string
	styles  Styles
}

// NewErrorBlock returns the block for an error part value.
func NewErrorBlock(v any, styles Styles) *ErrorBlock {
	msg, ok := v.(string)
	if !ok {
		msg = compact(v)
	}
	return &ErrorBlock{message: msg, styles: styles}
}

func (b *ErrorBlock) View(width int) string {
	return b.styles.Error.Render(lipgloss.NewStyle().Width(width).Render("✗ " + b.message))
}

func indicator(collapsed bool) string {
	if collapsed {
		return "▶"
	}
	return "▼"
}

func str(v any) string {
	switch v := v.(type) {
	case string:
		return terminal.Sanitize(v)
	case nil:
		return ""
	}
	return terminal.Sanitize(fmt.Sprint(v))
}

// compact renders v as single-line JSON; strings are shown bare.
func compact(v any) string {
	if s, ok := v.(string); ok {
		return terminal.Sanitize(s)
	}
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return str(v)
	}
	return terminal.Sanitize(string(data))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
