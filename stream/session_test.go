package stream_test

import (
	"errors"
	"io"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/iotest"
	"time"

	"github.com/agenticflow/agenticflow"
	"github.com/agenticflow/agenticflow/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloStream = "0:\"Hello\"\n0:\" world\"\nd:{\"reason\":\"stop\"}\n"

var helloParts = []agenticflow.Part{
	{Type: agenticflow.PartTextDelta, Value: "Hello"},
	{Type: agenticflow.PartTextDelta, Value: " world"},
	{Type: agenticflow.PartFinish, Value: map[string]any{"reason": "stop"}},
}

// body is a test response body that counts reads and closes.
type body struct {
	r      io.Reader
	reads  atomic.Int32
	closes atomic.Int32
}

func newBody(r io.Reader) *body {
	return &body{r: r}
}

func (b *body) Read(p []byte) (int, error) {
	b.reads.Add(1)
	return b.r.Read(p)
}

func (b *body) Close() error {
	b.closes.Add(1)
	return nil
}

// chunks yields the given byte slices one per Read.
type chunks struct {
	parts [][]byte
}

func splitAt(s string, offsets ...int) *chunks {
	c := &chunks{}
	prev := 0
	for _, o := range offsets {
		c.parts = append(c.parts, []byte(s[prev:o]))
		prev = o
	}
	c.parts = append(c.parts, []byte(s[prev:]))
	return c
}

func (c *chunks) Read(p []byte) (int, error) {
	if len(c.parts) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.parts[0])
	c.parts[0] = c.parts[0][n:]
	if len(c.parts[0]) == 0 {
		c.parts = c.parts[1:]
	}
	return n, nil
}

func TestSession_Example(t *testing.T) {
	t.Parallel()

	b := newBody(strings.NewReader(helloStream))
	s := stream.New(b)

	text, err := s.Text()
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)

	parts, err := s.Parts()
	require.NoError(t, err)
	assert.Equal(t, helloParts, parts)
	assert.Equal(t, stream.StateDrained, s.State())
	assert.EqualValues(t, 1, b.closes.Load())
}

func TestSession_ChunkingInvariance(t *testing.T) {
	t.Parallel()

	input := "f:{\"messageId\":\"m\"}\n0:\"héllo\"\r\n\nx:ignored\n0:\" wörld\"\n9:{\"toolName\":\"t\"}\nd:{\"reason\":\"stop\"}"
	want := []agenticflow.Part{
		{Type: agenticflow.PartStepStart, Value: map[string]any{"messageId": "m"}},
		{Type: agenticflow.PartTextDelta, Value: "héllo"},
		{Type: agenticflow.PartTextDelta, Value: " wörld"},
		{Type: agenticflow.PartToolCall, Value: map[string]any{"toolName": "t"}},
		{Type: agenticflow.PartFinish, Value: map[string]any{"reason": "stop"}},
	}

	readers := map[string]func() io.Reader{
		"whole":     func() io.Reader { return strings.NewReader(input) },
		"one byte":  func() io.Reader { return iotest.OneByteReader(strings.NewReader(input)) },
		"half":      func() io.Reader { return iotest.HalfReader(strings.NewReader(input)) },
		"data err":  func() io.Reader { return iotest.DataErrReader(strings.NewReader(input)) },
		"mid rune":  func() io.Reader { return splitAt(input, strings.Index(input, "é")+1) },
		"mid line":  func() io.Reader { return splitAt(input, 3, 10, 25, 40) },
		"at breaks": func() io.Reader { return splitAt(input, strings.Index(input, "\n")+1) },
	}
	for name, mk := range readers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := stream.New(io.NopCloser(mk()), stream.WithChunkSize(7))
			parts, err := s.Parts()
			require.NoError(t, err)
			assert.Equal(t, want, parts)
			text, err := s.Text()
			require.NoError(t, err)
			assert.Equal(t, "héllo wörld", text)
		})
	}
}

func TestSession_TrailingFragmentFlushed(t *testing.T) {
	t.Parallel()

	s := stream.New(io.NopCloser(strings.NewReader("0:\"a\"\n0:\"b\"")))
	text, err := s.Text()
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
}

func TestSession_ReadsOnce(t *testing.T) {
	t.Parallel()

	b := newBody(strings.NewReader(helloStream))
	s := stream.New(b)

	first, err := s.Parts()
	require.NoError(t, err)
	reads := b.reads.Load()

	second, err := s.Parts()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var replayed []agenticflow.Part
	for p, err := range s.All() {
		require.NoError(t, err)
		replayed = append(replayed, p)
	}
	assert.Equal(t, first, replayed)
	_, _ = s.Text()
	assert.Equal(t, reads, b.reads.Load())
	assert.EqualValues(t, 1, b.closes.Load())
}

func TestSession_IterateThenText(t *testing.T) {
	t.Parallel()

	b := newBody(iotest.OneByteReader(strings.NewReader(helloStream)))
	s := stream.New(b)

	var got []agenticflow.Part
	for p, err := range s.All() {
		require.NoError(t, err)
		got = append(got, p)
		if len(got) == 1 {
			assert.Equal(t, stream.StateConsuming, s.State())
		}
	}
	assert.Equal(t, helloParts, got)

	text, err := s.Text()
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
}

func TestSession_EarlyBreakResumes(t *testing.T) {
	t.Parallel()

	s := stream.New(io.NopCloser(strings.NewReader(helloStream)), stream.WithChunkSize(1))
	for p := range s.All() {
		assert.Equal(t, helloParts[0], p)
		break
	}
	assert.Equal(t, stream.StateConsuming, s.State())

	parts, err := s.Parts()
	require.NoError(t, err)
	assert.Equal(t, helloParts, parts)
}

func TestSession_ListenersAndIterator(t *testing.T) {
	t.Parallel()

	// One protocol line per read.
	s := stream.New(io.NopCloser(splitAt(helloStream, 10, 21)))

	var order []string
	var texts []string
	s.On(agenticflow.PartTextDelta, func(p agenticflow.Part) {
		texts = append(texts, p.Text())
		order = append(order, "listener:"+p.Text())
	})
	finishes := 0
	s.On(agenticflow.PartFinish, func(agenticflow.Part) { finishes++ })
	var all []agenticflow.Part
	s.OnPart(func(p agenticflow.Part) { all = append(all, p) })
	ends := 0
	var endErr error
	s.OnEnd(func(err error) {
		ends++
		endErr = err
	})

	for p, err := range s.All() {
		require.NoError(t, err)
		order = append(order, "iter:"+string(p.Type))
	}

	assert.Equal(t, []string{"Hello", " world"}, texts)
	assert.Equal(t, 1, finishes)
	assert.Equal(t, helloParts, all)
	assert.Equal(t, 1, ends)
	assert.NoError(t, endErr)
	assert.Equal(t, []string{
		"listener:Hello", "iter:textDelta",
		"listener: world", "iter:textDelta",
		"iter:finish",
	}, order)

	// Draining again never re-fires end listeners.
	_, _ = s.Parts()
	assert.Equal(t, 1, ends)
}

func TestSession_Off(t *testing.T) {
	t.Parallel()

	s := stream.New(io.NopCloser(strings.NewReader(helloStream)), stream.WithChunkSize(1))
	count := 0
	var id stream.ListenerID
	id = s.On(agenticflow.PartTextDelta, func(agenticflow.Part) {
		count++
		assert.True(t, s.Off(id))
	})

	_, err := s.Parts()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.False(t, s.Off(id))
	assert.False(t, s.Off(999))
}

func TestSession_NoBackDelivery(t *testing.T) {
	t.Parallel()

	s := stream.New(io.NopCloser(strings.NewReader(helloStream)), stream.WithChunkSize(1))
	next, stop := iter.Pull2(s.All())
	defer stop()
	first, err, ok := next()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, "Hello", first.Text())

	var late []string
	s.On(agenticflow.PartTextDelta, func(p agenticflow.Part) { late = append(late, p.Text()) })
	_, err = s.Parts()
	require.NoError(t, err)
	assert.Equal(t, []string{" world"}, late)
}

func TestSession_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	b := newBody(io.MultiReader(strings.NewReader("0:\"partial\"\n0:\"lost"), iotest.ErrReader(boom)))
	s := stream.New(b)

	var endErr error
	s.OnEnd(func(err error) { endErr = err })

	var got []agenticflow.Part
	var iterErr error
	for p, err := range s.All() {
		if err != nil {
			iterErr = err
			continue
		}
		got = append(got, p)
	}
	assert.Equal(t, []agenticflow.Part{{Type: agenticflow.PartTextDelta, Value: "partial"}}, got)
	require.Error(t, iterErr)
	assert.ErrorIs(t, iterErr, agenticflow.ErrNetwork)
	assert.ErrorIs(t, iterErr, boom)
	assert.Same(t, iterErr, endErr)

	text, err := s.Text()
	assert.Equal(t, "partial", text)
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, b.closes.Load())
}

func TestSession_ReadErrorKeepsTimeout(t *testing.T) {
	t.Parallel()

	timeout := agenticflow.TimeoutError(errors.New("deadline"))
	s := stream.New(io.NopCloser(iotest.ErrReader(timeout)))
	_, err := s.Parts()
	assert.ErrorIs(t, err, agenticflow.ErrTimeout)
}

func TestSession_Close(t *testing.T) {
	t.Parallel()

	t.Run("before consumption", func(t *testing.T) {
		t.Parallel()
		b := newBody(strings.NewReader(helloStream))
		s := stream.New(b)
		ends := 0
		s.OnEnd(func(err error) {
			ends++
			assert.ErrorIs(t, err, agenticflow.ErrStreamClosed)
		})

		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		assert.Equal(t, stream.StateDrained, s.State())
		parts, err := s.Parts()
		assert.ErrorIs(t, err, agenticflow.ErrStreamClosed)
		assert.Empty(t, parts)
		assert.Zero(t, b.reads.Load())
		assert.EqualValues(t, 1, b.closes.Load())
		assert.Equal(t, 1, ends)
	})

	t.Run("from a listener", func(t *testing.T) {
		t.Parallel()
		b := newBody(strings.NewReader(helloStream))
		s := stream.New(b)
		s.On(agenticflow.PartTextDelta, func(agenticflow.Part) { _ = s.Close() })

		parts, err := s.Parts()
		assert.ErrorIs(t, err, agenticflow.ErrStreamClosed)
		assert.Equal(t, helloParts[:1], parts)
		assert.EqualValues(t, 1, b.closes.Load())
	})

	t.Run("unblocks a pending read", func(t *testing.T) {
		t.Parallel()
		pr, pw := io.Pipe()
		s := stream.New(pr)

		got := make(chan agenticflow.Part, 1)
		done := make(chan error, 1)
		go func() {
			for p, err := range s.All() {
				if err != nil {
					done <- err
					return
				}
				got <- p
			}
			done <- nil
		}()

		_, err := pw.Write([]byte("0:\"x\"\n"))
		require.NoError(t, err)
		assert.Equal(t, "x", (<-got).Text())

		require.NoError(t, s.Close())
		assert.ErrorIs(t, <-done, agenticflow.ErrStreamClosed)
	})

	t.Run("after drain", func(t *testing.T) {
		t.Parallel()
		b := newBody(strings.NewReader(helloStream))
		s := stream.New(b)
		_, err := s.Parts()
		require.NoError(t, err)
		require.NoError(t, s.Close())
		assert.NoError(t, s.Err())
		assert.EqualValues(t, 1, b.closes.Load())
	})
}

func TestSession_ListenerPanic(t *testing.T) {
	t.Parallel()

	b := newBody(strings.NewReader(helloStream))
	s := stream.New(b)
	var endErr error
	s.OnEnd(func(err error) { endErr = err })
	s.On(agenticflow.PartFinish, func(agenticflow.Part) { panic("listener bug") })

	assert.PanicsWithValue(t, "listener bug", func() { _, _ = s.Parts() })
	assert.Equal(t, stream.StateDrained, s.State())
	require.Error(t, endErr)
	assert.Contains(t, endErr.Error(), "listener bug")
	assert.EqualValues(t, 1, b.closes.Load())
}

// wait fails the test if fn does not return promptly.
func wait(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session call did not return")
	}
}

func TestSession_AccessorsFromListener(t *testing.T) {
	t.Parallel()

	t.Run("text at finish", func(t *testing.T) {
		t.Parallel()
		s := stream.New(io.NopCloser(strings.NewReader(helloStream)))
		var inner string
		var innerErr error
		s.On(agenticflow.PartFinish, func(agenticflow.Part) { inner, innerErr = s.Text() })

		var parts []agenticflow.Part
		var err error
		wait(t, func() { parts, err = s.Parts() })
		require.NoError(t, err)
		assert.Equal(t, helloParts, parts)
		require.NoError(t, innerErr)
		assert.Equal(t, "Hello world", inner)
	})

	t.Run("parts mid stream keeps listener order", func(t *testing.T) {
		t.Parallel()
		s := stream.New(io.NopCloser(strings.NewReader(helloStream)))
		var inner []agenticflow.Part
		var seen []string
		s.OnPart(func(p agenticflow.Part) {
			seen = append(seen, string(p.Type)+":"+p.Text())
			if len(seen) == 1 {
				inner, _ = s.Parts()
				seen = append(seen, "drained")
			}
		})
		ends := 0
		s.OnEnd(func(error) { ends++ })

		var text string
		wait(t, func() { text, _ = s.Text() })
		assert.Equal(t, "Hello world", text)
		assert.Equal(t, helloParts, inner)
		assert.Equal(t, []string{"textDelta:Hello", "drained", "textDelta: world", "finish:"}, seen)
		assert.Equal(t, 1, ends)
	})

	t.Run("iterator from listener", func(t *testing.T) {
		t.Parallel()
		s := stream.New(io.NopCloser(splitAt(helloStream, 10, 21)))
		var count int
		s.On(agenticflow.PartTextDelta, func(agenticflow.Part) {
			if count > 0 {
				return
			}
			for range s.All() {
				count++
			}
		})

		wait(t, func() {
			for _, err := range s.All() {
				assert.NoError(t, err)
			}
		})
		assert.Equal(t, len(helloParts), count)
	})
}

func TestSession_Concurrent(t *testing.T) {
	t.Parallel()

	var lines strings.Builder
	for range 200 {
		lines.WriteString("0:\"x\"\n")
	}
	b := newBody(iotest.HalfReader(strings.NewReader(lines.String())))
	s := stream.New(b, stream.WithChunkSize(16))

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				text, err := s.Text()
				assert.NoError(t, err)
				results[i] = text
				return
			}
			var sb strings.Builder
			for p, err := range s.All() {
				assert.NoError(t, err)
				sb.WriteString(p.Text())
			}
			results[i] = sb.String()
		}()
	}
	wg.Wait()

	want := strings.Repeat("x", 200)
	for _, r := range results {
		assert.Equal(t, want, r)
	}
	assert.EqualValues(t, 1, b.closes.Load())
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", stream.StateIdle.String())
	assert.Equal(t, "consuming", stream.StateConsuming.String())
	assert.Equal(t, "drained", stream.StateDrained.String())
	assert.Equal(t, "State(9)", stream.State(9).String())
}
