package bubbletea

import (
	"strings"

	"github.com/agenticflow/agenticflow/goldmark"
	"github.com/agenticflow/agenticflow/terminal"
)

// TextBlock renders consecutive text deltas as markdown. Everything up to
// the last paragraph break outside a code fence is rendered once per width
// and cached; only the tail is re-rendered as deltas arrive.
type TextBlock struct {
	raw      strings.Builder
	renderer *goldmark.Renderer

	stable  string
	byWidth map[int]string
}

// NewTextBlock returns an empty TextBlock rendering through r.
func NewTextBlock(r *goldmark.Renderer) *TextBlock {
	return &TextBlock{renderer: r, byWidth: make(map[int]string)}
}

// Append adds a text delta, stripped of terminal escapes.
func (b *TextBlock) Append(text string) {
	b.raw.WriteString(terminal.Sanitize(text))
	b.settle()
}

// Text returns the raw markdown received so far.
func (b *TextBlock) Text() string { return b.raw.String() }

func (b *TextBlock) View(width int) string {
	head := b.renderStable(width)
	tail := strings.TrimPrefix(b.raw.String(), b.stable)
	tail = strings.TrimLeft(tail, "\n")
	if openFence(tail) {
		tail += "\n```"
	}
	rendered := b.renderer.Render(tail, width)
	switch {
	case strings.TrimSpace(rendered) == "":
		return head
	case head == "":
		return rendered
	}
	return head + "\n\n" + rendered
}

// settle advances the stable prefix to the last "\n\n" that does not fall
// inside a fenced code block.
func (b *TextBlock) settle() {
	raw := b.raw.String()
	for end := len(raw); end > len(b.stable); {
		i := strings.LastIndex(raw[:end], "\n\n")
		if i <= len(b.stable) {
			return
		}
		if candidate := raw[:i]; !openFence(candidate) {
			b.stable = candidate
			clear(b.byWidth)
			return
		}
		end = i
	}
}

func (b *TextBlock) renderStable(width int) string {
	if b.stable == "" {
		return ""
	}
	if r, ok := b.byWidth[width]; ok {
		return r
	}
	r := strings.TrimRight(b.renderer.Render(b.stable, width), "\n")
	b.byWidth[width] = r
	return r
}

// openFence reports an odd number of ``` markers. Backticks inside inline
// code spans are counted too.
func openFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
