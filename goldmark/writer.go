package goldmark

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// writer accumulates the rendering of one document.
type writer struct {
	*styles
	source []byte
	buf    strings.Builder
}

func (w *writer) blocks(parent ast.Node, width int) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n, width)
		if n.NextSibling() != nil {
			w.buf.WriteByte('\n')
		}
	}
}

func (w *writer) block(n ast.Node, width int) {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		w.wrapped(w.inline(n), width)
	case *ast.Heading:
		w.wrapped(w.accent.Render(strings.Repeat("#", n.Level)+" "+w.inline(n)), width)
	case *ast.FencedCodeBlock:
		if lang := string(n.Language(w.source)); lang != "" {
			w.buf.WriteString(w.muted.Render(lang) + "\n")
		}
		w.code(n)
	case *ast.CodeBlock:
		w.code(n)
	case *ast.Blockquote:
		var inner writer
		inner.styles, inner.source = w.styles, w.source
		inner.blocks(n, max(width-2, 10))
		bar := w.muted.Render("▌") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.buf.String(), "\n"), "\n") {
			w.buf.WriteString(bar + line + "\n")
		}
	case *ast.List:
		w.list(n, width, 0)
	case *ast.ThematicBreak:
		w.buf.WriteString(w.muted.Render(strings.Repeat("─", min(width, 40))) + "\n")
	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			w.buf.Write(seg.Value(w.source))
		}
		if n.HasClosure() {
			w.buf.Write(n.ClosureLine.Value(w.source))
		}
	case *east.Table:
		w.table(n)
	default:
		w.blocks(n, width)
	}
}

func (w *writer) wrapped(s string, width int) {
	w.buf.WriteString(lipgloss.NewStyle().Width(width).Render(s))
	w.buf.WriteByte('\n')
}

func (w *writer) code(n ast.Node) {
	gutter := w.muted.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(w.source)), "\n")
		w.buf.WriteString(gutter + w.literal.Render(line) + "\n")
	}
}

func (w *writer) list(l *ast.List, width, depth int) {
	num := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		indent := strings.Repeat("  ", depth)
		var content strings.Builder
		flush := func() {
			if content.Len() == 0 {
				return
			}
			w.item(indent+marker, content.String(), width)
			marker = strings.Repeat(" ", runewidth.StringWidth(marker))
			content.Reset()
		}
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if content.Len() > 0 {
					content.WriteByte(' ')
				}
				content.WriteString(w.inline(c))
			case *ast.List:
				flush()
				w.list(c, width, depth+1)
			default:
				flush()
				w.block(c, width)
			}
		}
		flush()
	}
}

// item writes one list entry, indenting continuation lines under the text.
func (w *writer) item(prefix, content string, width int) {
	pad := runewidth.StringWidth(prefix)
	wrapped := lipgloss.NewStyle().Width(max(width-pad, 10)).Render(content)
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			w.buf.WriteString(prefix + line + "\n")
			continue
		}
		w.buf.WriteString(strings.Repeat(" ", pad) + line + "\n")
	}
}

// table lays out cells on display width. Cell text is unstyled so that
// padding stays aligned; the header row is accented as a whole.
func (w *writer) table(t *east.Table) {
	var rows [][]string
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var row []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			row = append(row, w.plain(c))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(t.Alignments))
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	line := func(row []string) string {
		cells := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			align := east.AlignNone
			if i < len(t.Alignments) {
				align = t.Alignments[i]
			}
			cells[i] = pad(cell, widths[i], align)
		}
		return strings.Join(cells, " │ ")
	}
	w.buf.WriteString(w.accent.Render(line(rows[0])) + "\n")
	rules := make([]string, len(widths))
	for i, n := range widths {
		rules[i] = strings.Repeat("─", n)
	}
	w.buf.WriteString(w.muted.Render(strings.Join(rules, "─┼─")) + "\n")
	for _, row := range rows[1:] {
		w.buf.WriteString(line(row) + "\n")
	}
}

func pad(s string, width int, align east.Alignment) string {
	switch align {
	case east.AlignRight:
		return runewidth.FillLeft(s, width)
	case east.AlignCenter:
		left := (width - runewidth.StringWidth(s)) / 2
		return runewidth.FillRight(strings.Repeat(" ", left)+s, width)
	}
	return runewidth.FillRight(s, width)
}

func (w *writer) inline(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.span(c, &b)
	}
	return b.String()
}

func (w *writer) span(n ast.Node, b *strings.Builder) {
	switch n := n.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(w.source))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}
	case *ast.String:
		b.Write(n.Value)
	case *ast.Emphasis:
		if n.Level == 1 {
			b.WriteString(w.italic.Render(w.inline(n)))
		} else {
			b.WriteString(w.bold.Render(w.inline(n)))
		}
	case *east.Strikethrough:
		b.WriteString(w.strike.Render(w.inline(n)))
	case *east.TaskCheckBox:
		if n.IsChecked {
			b.WriteString("[x] ")
		} else {
			b.WriteString("[ ] ")
		}
	case *ast.CodeSpan:
		b.WriteString(w.literal.Render(w.plain(n)))
	case *ast.Link:
		b.WriteString(w.underline.Render(w.inline(n)))
		b.WriteString(" " + w.muted.Render("("+string(n.Destination)+")"))
	case *ast.Image:
		b.WriteString(w.underline.Render(w.plain(n)))
		b.WriteString(" " + w.muted.Render("("+string(n.Destination)+")"))
	case *ast.AutoLink:
		b.WriteString(w.underline.Render(string(n.URL(w.source))))
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(w.source))
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			w.span(c, b)
		}
	}
}

// plain returns the text content of n without styling.
func (w *writer) plain(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(w.source))
			if c.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.AutoLink:
			b.Write(c.URL(w.source))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
