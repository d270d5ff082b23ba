// Package goldmark renders markdown from agent replies as ANSI-styled
// terminal text. Parsing is done by goldmark with the GitHub extensions,
// styling by lipgloss.
package goldmark

import (
	"strconv"
	"strings"

	"github.com/agenticflow/agenticflow"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// DefaultWidth is the wrap width used when none is given.
const DefaultWidth = 80

// Renderer converts markdown to styled terminal text. It is safe for
// concurrent use.
type Renderer struct {
	parser parser.Parser
	styles styles
}

type styles struct {
	bold, italic, strike, underline lipgloss.Style
	accent, muted, literal          lipgloss.Style
}

// New returns a Renderer styled with theme.
func New(theme agenticflow.Theme) *Renderer {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	return &Renderer{
		parser: md.Parser(),
		styles: styles{
			bold:      lipgloss.NewStyle().Bold(true),
			italic:    lipgloss.NewStyle().Italic(true),
			strike:    lipgloss.NewStyle().Strikethrough(true),
			underline: lipgloss.NewStyle().Underline(true),
			accent:    lipgloss.NewStyle().Foreground(color(theme.Accent)).Bold(true),
			muted:     lipgloss.NewStyle().Foreground(color(theme.Muted)).Faint(true),
			literal:   lipgloss.NewStyle().Foreground(color(theme.ToolResult)),
		},
	}
}

// Render returns source as styled text wrapped to width columns. Code
// blocks and tables are never reflowed.
func (r *Renderer) Render(source string, width int) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}
	src := []byte(source)
	doc := r.parser.Parse(text.NewReader(src))
	w := &writer{styles: &r.styles, source: src}
	w.blocks(doc, width)
	return strings.TrimRight(w.buf.String(), "\n")
}

// Render is shorthand for New(theme).Render(source, width).
func Render(source string, width int, theme agenticflow.Theme) string {
	return New(theme).Render(source, width)
}

func color(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
