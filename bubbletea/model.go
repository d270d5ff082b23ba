package bubbletea

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/goldmark"
	"github.com/agenticflow/agenticflow/stream"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

var _ tea.Model = Model{}

// Option configures a [Model].
type Option func(*Model)

// WithTitle shows title above the stream.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithExitOnEnd quits the program once the stream drains.
func WithExitOnEnd() Option {
	return func(m *Model) { m.exitOnEnd = true }
}

// Model is the Bubble Tea model of the stream viewer.
type Model struct {
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model
	Spinner  spinner.Model

	session  *stream.Session
	feed     *feed
	styles   Styles
	renderer *goldmark.Renderer

	title     string
	exitOnEnd bool

	blocks []Block
	tools  map[string]*ToolBlock
	focus  int // index of the focused collapsible block, -1 when none

	parts  int
	finish agenticflow.Part
	done   bool
	err    error
	ready  bool
}

// New returns a viewer for s. Listeners are registered immediately so no
// part is missed; the session is consumed once the program starts.
func New(s *stream.Session, theme agenticflow.Theme, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := Model{
		Spinner:  sp,
		session:  s,
		feed:     subscribe(s),
		styles:   NewStyles(theme),
		renderer: goldmark.New(theme),
		tools:    make(map[string]*ToolBlock),
		focus:    -1,
	}
	m.Spinner.Style = m.styles.Muted
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Done reports whether the stream has ended.
func (m Model) Done() bool { return m.done }

// Err returns the stream's terminal error. Closing the stream from the
// viewer is not an error.
func (m Model) Err() error {
	if errors.Is(m.err, agenticflow.ErrStreamClosed) {
		return nil
	}
	return m.err
}

// Parts returns the number of parts received.
func (m Model) Parts() int { return m.parts }

// Blocks returns the rendered blocks in arrival order.
func (m Model) Blocks() []Block { return m.blocks }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, drive(m.session), m.feed.next())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case PartMsg:
		m = m.apply(msg.Part)
		m = m.refresh(true)
		return m, m.feed.next()

	case EndMsg:
		m.done = true
		m.err = msg.Err
		m.feed.stop()
		m = m.refresh(true)
		if m.exitOnEnd {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Connecting..."
	}
	var b strings.Builder
	if m.title != "" {
		b.WriteString(m.styles.Title.Render(m.title))
		b.WriteString("\n")
	}
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) resize(msg tea.WindowSizeMsg) Model {
	chrome := 2 // status line and its separator
	if m.title != "" {
		chrome++
	}
	height := max(msg.Height-chrome, 1)
	if !m.ready {
		m.Viewport = viewport.New(msg.Width, height)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = height
	}
	return m.refresh(true)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.feed.stop()
		if !m.done {
			_ = m.session.Close()
		}
		return m, tea.Quit
	case "tab":
		if m.focus >= 0 {
			m.blocks[m.focus].(Collapsible).Toggle()
			m = m.refresh(false)
		}
		return m, nil
	case "shift+tab":
		m = m.cycleFocus()
		return m.refresh(false), nil
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// apply routes a part to its block. Consecutive text or reasoning deltas
// extend the last block; tool results attach to their call.
func (m Model) apply(p agenticflow.Part) Model {
	m.parts++
	var last Block
	if n := len(m.blocks); n > 0 {
		last = m.blocks[n-1]
	}
	switch p.Type {
	case agenticflow.PartTextDelta:
		tb, ok := last.(*TextBlock)
		if !ok {
			tb = NewTextBlock(m.renderer)
			m.blocks = append(m.blocks, tb)
		}
		tb.Append(p.Text())
	case agenticflow.PartReasoningDelta:
		rb, ok := last.(*ReasoningBlock)
		if !ok {
			rb = NewReasoningBlock(m.styles)
			m = m.push(rb)
		}
		rb.Append(p.Text())
	case agenticflow.PartToolCall:
		tb := NewToolBlock(p.Value, m.styles)
		if tb.ID() != "" {
			m.tools[tb.ID()] = tb
		}
		m = m.push(tb)
	case agenticflow.PartToolResult:
		id, _ := p.Field("toolCallId")
		tb, ok := m.tools[str(id)]
		if !ok {
			tb = NewToolBlock(p.Value, m.styles)
			m = m.push(tb)
		}
		tb.SetResult(p.Value)
	case agenticflow.PartStepStart:
		m.blocks = append(m.blocks, NewStepStart(m.styles))
	case agenticflow.PartStepFinish:
		m.blocks = append(m.blocks, NewStepFinish(p.Value, m.styles))
	case agenticflow.PartData:
		m.blocks = append(m.blocks, NewDataBlock(p.Value, m.styles))
	case agenticflow.PartError:
		m.blocks = append(m.blocks, NewErrorBlock(p.Value, m.styles))
	case agenticflow.PartFinish:
		m.finish = p
	}
	return m
}

// push appends a collapsible block and focuses it.
func (m Model) push(b Collapsible) Model {
	m.blocks = append(m.blocks, b)
	m.focus = len(m.blocks) - 1
	return m
}

// cycleFocus moves focus to the previous collapsible block, wrapping around.
func (m Model) cycleFocus() Model {
	n := len(m.blocks)
	start := m.focus - 1
	if start < 0 {
		start = n - 1
	}
	for i := range n {
		idx := (start - i + n) % n
		if _, ok := m.blocks[idx].(Collapsible); ok {
			m.focus = idx
			return m
		}
	}
	m.focus = -1
	return m
}

func (m Model) refresh(follow bool) Model {
	if !m.ready {
		return m
	}
	atBottom := m.Viewport.AtBottom()
	m.Viewport.SetContent(m.content())
	if follow && atBottom {
		m.Viewport.GotoBottom()
	}
	return m
}

func (m Model) content() string {
	width := m.Viewport.Width
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		view := block.View(width)
		if i == m.focus {
			view = m.styles.Focus.Render("›") + view
		}
		b.WriteString(view)
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.done && m.Err() != nil:
		return m.styles.Error.Render(fmt.Sprintf("✗ %v", m.err))
	case m.done:
		status := fmt.Sprintf("✓ done · %d parts", m.parts)
		if reason, ok := m.finish.Field("finishReason"); ok {
			status += fmt.Sprintf(" · %v", reason)
		}
		return m.styles.Success.Render(status) + m.styles.Muted.Render("  q to quit")
	}
	return m.Spinner.View() + m.styles.Muted.Render(fmt.Sprintf(" streaming · %d parts  q to stop", m.parts))
}
