package bubbletea_test

import (
	"strings"
	"testing"

	"github.com/agenticflow/agenticflow"
	bt "github.com/agenticflow/agenticflow/bubbletea"
	"github.com/agenticflow/agenticflow/goldmark"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTextBlock(t *testing.T) {
	t.Parallel()

	r := goldmark.New(agenticflow.DefaultTheme())

	t.Run("streamed equals whole", func(t *testing.T) {
		t.Parallel()
		src := "# Plan\n\nFirst **step** here.\n\n- one\n- two\n"
		whole := bt.NewTextBlock(r)
		whole.Append(src)
		streamed := bt.NewTextBlock(r)
		for _, c := range src {
			streamed.Append(string(c))
		}
		assert.Equal(t, strip(whole.View(60)), strip(streamed.View(60)))
		assert.Contains(t, strip(streamed.View(60)), "First step here.")
	})

	t.Run("open fence renders as code", func(t *testing.T) {
		t.Parallel()
		b := bt.NewTextBlock(r)
		b.Append("Run this:\n\n```sh\nmake test\n\ngo vet")
		view := strip(b.View(60))
		assert.Contains(t, view, "Run this:")
		assert.Contains(t, view, "│ make test")
		assert.Contains(t, view, "│ go vet")
		assert.NotContains(t, view, "```")
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, bt.NewTextBlock(r).View(60))
	})
}

func TestToolBlock(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(agenticflow.DefaultTheme())

	t.Run("pending", func(t *testing.T) {
		t.Parallel()
		b := bt.NewToolBlock(map[string]any{"toolCallId": "c", "toolName": "fetch"}, styles)
		assert.Equal(t, "c", b.ID())
		assert.True(t, b.Collapsed())
		assert.Equal(t, "▶ fetch …", strip(b.View(80)))
	})

	t.Run("failed result expands", func(t *testing.T) {
		t.Parallel()
		b := bt.NewToolBlock(map[string]any{"toolName": "fetch", "args": map[string]any{"url": "x"}}, styles)
		b.SetResult(map[string]any{"result": "timeout", "isError": true})
		assert.False(t, b.Collapsed())
		view := strip(b.View(80))
		assert.Contains(t, view, "▼ fetch ✗")
		assert.Contains(t, view, `args: {"url":"x"}`)
		assert.Contains(t, view, "timeout")
	})

	t.Run("collapsed preview is truncated", func(t *testing.T) {
		t.Parallel()
		b := bt.NewToolBlock(nil, styles)
		b.SetResult(strings.Repeat("x", 200) + "\nsecond line")
		view := strip(b.View(40))
		assert.LessOrEqual(t, lipgloss.Width(view), 40)
		assert.Contains(t, view, "…")
		assert.NotContains(t, view, "second line")
	})
}

func TestNewStyles(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(agenticflow.DefaultTheme())
	assert.Equal(t, lipgloss.Color("8"), styles.Reasoning.GetForeground())
	assert.True(t, styles.Reasoning.GetFaint())
	assert.Equal(t, lipgloss.Color("3"), styles.ToolCall.GetForeground())
	assert.Equal(t, lipgloss.Color("6"), styles.ToolResult.GetForeground())
	assert.Equal(t, lipgloss.Color("4"), styles.Step.GetForeground())
	assert.Equal(t, lipgloss.Color("1"), styles.Error.GetForeground())
	assert.Equal(t, lipgloss.Color("2"), styles.Success.GetForeground())
	assert.Equal(t, lipgloss.Color("5"), styles.Title.GetForeground())
	assert.True(t, styles.Title.GetBold())

	plain := bt.NewStyles(agenticflow.PlainTheme())
	assert.Equal(t, lipgloss.NoColor{}, plain.ToolCall.GetForeground())
}
