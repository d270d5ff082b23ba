package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/agenticflow/agenticflow"
	"go.uber.org/zap"
)

// DefaultChunkSize is the read buffer size used when none is configured.
const DefaultChunkSize = 4096

// State is the lifecycle position of a [Session].
type State int

const (
	StateIdle State = iota
	StateConsuming
	StateDrained
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConsuming:
		return "consuming"
	case StateDrained:
		return "drained"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ListenerID identifies a registered listener for [Session.Off].
type ListenerID uint64

type listener struct {
	id   ListenerID
	typ  agenticflow.PartType // "" matches every part
	part func(agenticflow.Part)
	end  func(error)
}

// event is one queued listener notification: a part for fns, or the
// terminal error for ends.
type event struct {
	part agenticflow.Part
	fns  []func(agenticflow.Part)
	ends []func(error)
	err  error
}

func (e event) run() {
	for _, fn := range e.fns {
		fn(e.part)
	}
	for _, fn := range e.ends {
		fn(e.err)
	}
}

// Option configures a [Session].
type Option func(*Session)

// WithChunkSize sets the number of bytes requested per read.
func WithChunkSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithLogger sets the logger for lifecycle and skipped-line diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session wraps one in-flight streaming response.
//
// The body is read at most once. Whichever accessor runs first ([Session.All],
// [Session.Text], [Session.Parts]) drives the read loop; concurrent and later
// callers observe the cached parts. Listeners registered with [Session.On],
// [Session.OnPart] and [Session.OnEnd] are called in arrival order, one at a
// time, and only for parts decoded after registration. They run on a
// goroutine calling an accessor, after that call has decoded the part.
//
// Listeners may call any Session method, including the accessors. An
// accessor called from a listener reads ahead as usual; listeners for the
// parts it decodes run once the current listener returns.
//
// A Session is safe for concurrent use.
type Session struct {
	// readMu is held by the goroutine driving the read loop. It guards
	// buf, pending and readErr. Listeners never run while it is held.
	readMu  sync.Mutex
	buf     []byte
	pending []byte
	readErr error

	mu         sync.Mutex
	state      State
	parts      []agenticflow.Part
	text       strings.Builder
	err        error
	closed     bool
	reading    bool
	listeners  []listener
	nextID     ListenerID
	queue      []event
	delivering bool

	body      *onceCloser
	cleanup   runtime.Cleanup
	chunkSize int
	logger    *zap.Logger
}

// New wraps body. The session owns body from now on and closes it exactly
// once: on end of stream, on read failure, on [Session.Close], or, as a
// last resort, when the session becomes unreachable.
func New(body io.ReadCloser, opts ...Option) *Session {
	s := &Session{
		body:      &onceCloser{rc: body},
		chunkSize: DefaultChunkSize,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.cleanup = runtime.AddCleanup(s, func(c *onceCloser) { _ = c.Close() }, s.body)
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the terminal error once drained: nil after a clean end of
// stream, a network error after a read failure, or [agenticflow.ErrStreamClosed].
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// On registers fn for parts of type t.
func (s *Session) On(t agenticflow.PartType, fn func(agenticflow.Part)) ListenerID {
	return s.register(listener{typ: t, part: fn})
}

// OnPart registers fn for every part.
func (s *Session) OnPart(fn func(agenticflow.Part)) ListenerID {
	return s.register(listener{part: fn})
}

// OnEnd registers fn for the terminal notification. It receives the same
// error as [Session.Err].
func (s *Session) OnEnd(fn func(error)) ListenerID {
	return s.register(listener{end: fn})
}

// Off removes a listener. It reports whether the listener was registered.
func (s *Session) Off(id ListenerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Session) register(l listener) ListenerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	l.id = s.nextID
	s.listeners = append(s.listeners, l)
	return l.id
}

// All returns an iterator over every part in arrival order. An iteration
// started after the session drained replays the cached parts. A terminal
// error, if any, is yielded last with a zero Part.
//
// Stopping an iteration early leaves the session open; call [Session.Close]
// to release the body.
func (s *Session) All() iter.Seq2[agenticflow.Part, error] {
	return func(yield func(agenticflow.Part, error) bool) {
		for i := 0; ; {
			s.mu.Lock()
			if i < len(s.parts) {
				p := s.parts[i]
				s.mu.Unlock()
				i++
				if !yield(p, nil) {
					return
				}
				continue
			}
			drained, err := s.state == StateDrained, s.err
			s.mu.Unlock()
			if drained {
				if err != nil {
					yield(agenticflow.Part{}, err)
				}
				return
			}
			s.advance()
		}
	}
}

// Parts consumes the stream to the end and returns every part.
func (s *Session) Parts() ([]agenticflow.Part, error) {
	s.drain()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]agenticflow.Part, len(s.parts))
	copy(out, s.parts)
	return out, s.err
}

// Text consumes the stream to the end and returns the concatenated text deltas.
func (s *Session) Text() (string, error) {
	s.drain()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String(), s.err
}

// Close stops consumption and releases the body. Parts already decoded stay
// available. Closing a drained session is a no-op. Close may be called from
// a listener.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateDrained {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	reading := s.reading
	s.mu.Unlock()

	// Unblocks a read in progress; the read loop then finishes the session.
	err := s.body.Close()
	if !reading {
		s.finish(agenticflow.ErrStreamClosed)
		s.deliver()
	}
	return err
}

func (s *Session) drain() {
	for s.State() != StateDrained {
		s.advance()
	}
}

// advance decodes until at least one new part is cached or the session
// drains, then runs the listeners queued so far.
func (s *Session) advance() {
	defer s.deliver()
	s.readMu.Lock()
	defer s.readMu.Unlock()

	s.mu.Lock()
	if s.state == StateDrained {
		s.mu.Unlock()
		return
	}
	if s.closed {
		s.mu.Unlock()
		s.finish(agenticflow.ErrStreamClosed)
		return
	}
	if s.state == StateIdle {
		s.state = StateConsuming
		s.logger.Debug("stream consuming")
	}
	s.reading = true
	s.mu.Unlock()

	err := s.step()

	s.mu.Lock()
	s.reading = false
	closed := s.closed
	s.mu.Unlock()

	switch {
	case closed:
		s.finish(agenticflow.ErrStreamClosed)
	case err == io.EOF:
		s.finish(nil)
	case err != nil:
		s.finish(readError(err))
	}
}

// step decodes until one part is emitted. Once the buffered input is used
// up it returns the error that ended reading, io.EOF included.
func (s *Session) step() error {
	if s.buf == nil {
		s.buf = make([]byte, s.chunkSize)
	}
	for {
		if s.nextLine() {
			return nil
		}
		if s.readErr != nil {
			// A final line without a newline still counts at a clean end.
			if s.readErr == io.EOF && len(s.pending) > 0 {
				line := s.pending
				s.pending = nil
				if s.dispatchLine(line) {
					return nil
				}
			}
			return s.readErr
		}
		n, err := s.body.Read(s.buf)
		s.pending = append(s.pending, s.buf[:n]...)
		if err != nil {
			s.readErr = err
		}
		if s.isClosed() {
			return nil
		}
	}
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// nextLine dispatches complete buffered lines until one yields a part.
func (s *Session) nextLine() bool {
	for {
		i := bytes.IndexByte(s.pending, '\n')
		if i < 0 {
			if len(s.pending) == 0 {
				s.pending = nil
			}
			return false
		}
		line := s.pending[:i]
		s.pending = s.pending[i+1:]
		if s.dispatchLine(line) {
			return true
		}
	}
}

func (s *Session) dispatchLine(line []byte) bool {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	p, ok := Decode(string(line))
	if !ok {
		if len(bytes.TrimSpace(line)) > 0 {
			s.logger.Debug("skipping unrecognized stream line", zap.ByteString("line", line))
		}
		return false
	}
	s.emit(p)
	return true
}

// emit caches p and queues its listeners.
func (s *Session) emit(p agenticflow.Part) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts = append(s.parts, p)
	if p.Type == agenticflow.PartTextDelta {
		s.text.WriteString(p.Text())
	}
	var fns []func(agenticflow.Part)
	for _, l := range s.listeners {
		if l.part != nil && (l.typ == "" || l.typ == p.Type) {
			fns = append(fns, l.part)
		}
	}
	if len(fns) > 0 {
		s.queue = append(s.queue, event{part: p, fns: fns})
	}
}

// deliver runs queued listener calls in order. Only one goroutine delivers
// at a time: a call made while a delivery is running, from a listener or
// elsewhere, leaves its events to that delivery.
//
// A panicking listener drains the session with an error, drops the
// remaining part notifications and still notifies end listeners.
func (s *Session) deliver() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s.mu.Lock()
		s.delivering = false
		s.queue = slices.DeleteFunc(s.queue, func(e event) bool { return e.ends == nil })
		s.mu.Unlock()
		s.finish(fmt.Errorf("stream: listener panicked: %v", r))
		s.deliver()
		panic(r)
	}()
	for len(s.queue) > 0 {
		e := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		e.run()
		s.mu.Lock()
	}
	s.queue = nil
	s.delivering = false
	s.mu.Unlock()
}

// finish moves the session to drained, releases the body and queues the end
// listeners. Only the first call has any effect.
func (s *Session) finish(err error) {
	s.mu.Lock()
	if s.state == StateDrained {
		s.mu.Unlock()
		return
	}
	s.state = StateDrained
	s.err = err
	var ends []func(error)
	for _, l := range s.listeners {
		if l.end != nil {
			ends = append(ends, l.end)
		}
	}
	if len(ends) > 0 {
		s.queue = append(s.queue, event{ends: ends, err: err})
	}
	count := len(s.parts)
	s.mu.Unlock()

	s.cleanup.Stop()
	if cerr := s.body.Close(); cerr != nil {
		s.logger.Debug("closing stream body", zap.Error(cerr))
	}
	s.logger.Debug("stream drained", zap.Int("parts", count), zap.Error(err))
}

func readError(err error) error {
	var afErr *agenticflow.Error
	if errors.As(err, &afErr) {
		return afErr
	}
	return agenticflow.NetworkError(err)
}

// onceCloser closes the wrapped body on the first call and returns that
// result on every later call.
type onceCloser struct {
	rc   io.ReadCloser
	once sync.Once
	err  error
}

func (c *onceCloser) Read(p []byte) (int, error) {
	return c.rc.Read(p)
}

func (c *onceCloser) Close() error {
	c.once.Do(func() { c.err = c.rc.Close() })
	return c.err
}
