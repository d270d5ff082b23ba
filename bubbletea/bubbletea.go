// Package bubbletea is a terminal viewer for a live agent stream.
//
// The model subscribes to a [stream.Session] through its listeners, drives
// the session from a command and renders each part as it arrives.
package bubbletea

import (
	"context"
	"errors"
	"sync"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/stream"
	tea "github.com/charmbracelet/bubbletea"
)

// PartMsg delivers one decoded part to the model.
type PartMsg struct {
	Part agenticflow.Part
}

// EndMsg reports that the session drained. Err is the session's terminal error.
type EndMsg struct {
	Err error
}

// Run shows m until the user quits or, with [WithExitOnEnd], the stream
// ends. Cancelling ctx quits the program. The returned error is the
// program's failure or else the stream's terminal error.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return ctx.Err()
}

// feed carries listener callbacks into the Bubble Tea loop. Sends block
// until the model receives them or the feed is stopped, so a quitting
// model never strands the goroutine reading the stream.
type feed struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

func subscribe(s *stream.Session) *feed {
	f := &feed{ch: make(chan tea.Msg, 64), done: make(chan struct{})}
	s.OnPart(func(p agenticflow.Part) { f.send(PartMsg{Part: p}) })
	s.OnEnd(func(err error) { f.send(EndMsg{Err: err}) })
	return f
}

func (f *feed) send(msg tea.Msg) {
	select {
	case f.ch <- msg:
	case <-f.done:
	}
}

func (f *feed) stop() {
	f.once.Do(func() { close(f.done) })
}

// next waits for the next listener message.
func (f *feed) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-f.ch:
			return msg
		case <-f.done:
			return nil
		}
	}
}

// drive consumes the session; parts reach the model through the feed.
func drive(s *stream.Session) tea.Cmd {
	return func() tea.Msg {
		_, _ = s.Parts()
		return nil
	}
}
