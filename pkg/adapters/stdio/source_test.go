package stdio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/aretw0/replet/pkg/repl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_ReadsLines(t *testing.T) {
	in := strings.NewReader("greet Ada\r\nlast line without newline")
	var out bytes.Buffer
	s := New(in, &out)
	p := repl.NewStaticPrompt("> ", "")

	assert.Equal(t, repl.Success("greet Ada"), s.ReadLine(t.Context(), p))
	assert.Equal(t, repl.Success("last line without newline"), s.ReadLine(t.Context(), p))
	assert.Equal(t, repl.SignalEndOfInput, s.ReadLine(t.Context(), p).Kind)
	assert.Equal(t, "> 〉> 〉> 〉", out.String())
}

func TestSource_WithoutPrompt(t *testing.T) {
	var out bytes.Buffer
	s := New(strings.NewReader("x\n"), &out, WithoutPrompt())

	s.ReadLine(t.Context(), repl.NewStaticPrompt("p", ""))
	assert.Empty(t, out.String())
}

func TestSource_PrintAsync(t *testing.T) {
	var out bytes.Buffer
	s := New(strings.NewReader(""), &out)

	require.NoError(t, s.PrintAsync("hello"))
	require.NoError(t, s.PrintAsync("world\n"))
	assert.Equal(t, "hello\nworld\n", out.String())
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestSource_ReadFailure(t *testing.T) {
	boom := errors.New("device gone")
	s := New(failingReader{err: boom}, io.Discard)

	sig := s.ReadLine(t.Context(), repl.NewStaticPrompt("", ""))
	assert.Equal(t, repl.SignalIOFailure, sig.Kind)
	assert.ErrorIs(t, sig.Err, boom)
}

func TestSource_ContextCancelInterrupts(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s := New(pr, io.Discard)

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()

	sig := s.ReadLine(ctx, repl.NewStaticPrompt("", ""))
	assert.Equal(t, repl.SignalInterrupt, sig.Kind)

	// The pump survives the interrupted read.
	go func() { _, _ = pw.Write([]byte("again\n")) }()
	assert.Equal(t, repl.Success("again"), s.ReadLine(t.Context(), repl.NewStaticPrompt("", "")))
}

func TestSource_SignalInterruptsRead(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s := New(pr, io.Discard, WithInterrupts())
	defer s.Close()

	s.interrupts.ch <- os.Interrupt
	sig := s.ReadLine(t.Context(), repl.NewStaticPrompt("", ""))
	assert.Equal(t, repl.SignalInterrupt, sig.Kind)
	assert.ErrorContains(t, sig.Err, "interrupt")

	go func() { _, _ = pw.Write([]byte("next\n")) }()
	assert.Equal(t, repl.Success("next"), s.ReadLine(t.Context(), repl.NewStaticPrompt("", "")))
}

func TestSource_SignalAfterEOF(t *testing.T) {
	tests := []struct {
		name   string
		signal bool
		want   repl.SignalKind
	}{
		{name: "console Ctrl+C", signal: true, want: repl.SignalInterrupt},
		{name: "plain end of input", signal: false, want: repl.SignalEndOfInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(strings.NewReader(""), io.Discard, WithInterrupts())
			defer s.Close()
			s.interrupts.grace = 200 * time.Millisecond

			if tt.signal {
				go func() {
					time.Sleep(10 * time.Millisecond)
					s.interrupts.ch <- syscall.SIGTERM
				}()
			}

			sig := s.ReadLine(t.Context(), repl.NewStaticPrompt("", ""))
			assert.Equal(t, tt.want, sig.Kind)
		})
	}
}

func TestSource_CloseReleasesReader(t *testing.T) {
	s := New(strings.NewReader("first\nsecond\nthird\n"), io.Discard)
	require.Equal(t, repl.Success("first"), s.ReadLine(t.Context(), repl.NewStaticPrompt("", "")))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-s.lines:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond, "pending line must not block the reading goroutine")

	assert.Equal(t, repl.SignalEndOfInput, s.ReadLine(t.Context(), repl.NewStaticPrompt("", "")).Kind)
}
