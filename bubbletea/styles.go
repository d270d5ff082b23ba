package bubbletea

import (
	"strconv"

	"github.com/agenticflow/agenticflow"
	"github.com/charmbracelet/lipgloss"
)

// Styles maps a Theme to lipgloss styles for the viewer.
type Styles struct {
	Title      lipgloss.Style
	Reasoning  lipgloss.Style
	ToolCall   lipgloss.Style
	ToolResult lipgloss.Style
	Step       lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Muted      lipgloss.Style
	Focus      lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t agenticflow.Theme) Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Reasoning:  lipgloss.NewStyle().Foreground(ansiColor(t.Reasoning)).Faint(true),
		ToolCall:   lipgloss.NewStyle().Foreground(ansiColor(t.ToolCall)),
		ToolResult: lipgloss.NewStyle().Foreground(ansiColor(t.ToolResult)),
		Step:       lipgloss.NewStyle().Foreground(ansiColor(t.Step)),
		Error:      lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:    lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:      lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Focus:      lipgloss.NewStyle().Foreground(ansiColor(t.Accent)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
