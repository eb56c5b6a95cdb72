package stdio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/replet/pkg/repl"
)

// Source implements repl.LineSource over a plain reader and writer.
// It is meant for pipes and non-interactive terminals; it has no line editing.
type Source struct {
	reader     *bufio.Reader
	writer     io.Writer
	prompt     bool
	interrupts *interrupts

	writeMu   sync.Mutex
	lines     chan readResult
	startOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

type readResult struct {
	text string
	err  error
}

// Option configures a Source.
type Option func(*Source)

// WithoutPrompt suppresses the prompt, e.g. when input is piped.
func WithoutPrompt() Option {
	return func(s *Source) {
		s.prompt = false
	}
}

// WithInterrupts makes SIGINT and SIGTERM interrupt a blocked read.
// The source listens for them until Close.
func WithInterrupts() Option {
	return func(s *Source) {
		s.interrupts = listenInterrupts()
	}
}

// New creates a source reading r and writing w. Nil values default to stdin and stdout.
func New(r io.Reader, w io.Writer, opts ...Option) *Source {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	s := &Source{
		reader: bufio.NewReader(r),
		writer: w,
		prompt: true,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) initPump() {
	s.startOnce.Do(func() {
		s.lines = make(chan readResult)
		go s.pump()
	})
}

// pump reads lines until the reader fails or the source is closed.
// The channel is closed when it returns.
func (s *Source) pump() {
	defer close(s.lines)
	for {
		text, err := s.reader.ReadString('\n')
		if text != "" && !s.send(readResult{text: text}) {
			return
		}
		if err != nil {
			if err != io.EOF {
				s.send(readResult{err: err})
			}
			return
		}
	}
}

func (s *Source) send(res readResult) bool {
	select {
	case s.lines <- res:
		return true
	case <-s.done:
		return false
	}
}

func (s *Source) ReadLine(ctx context.Context, prompt repl.Prompt) repl.Signal {
	s.initPump()

	if err := ctx.Err(); err != nil {
		return repl.Interrupted(err)
	}
	if s.closed() {
		return repl.Ended()
	}
	if s.prompt {
		s.write(prompt.Render(repl.ModeDefault))
	}

	select {
	case <-ctx.Done():
		return repl.Interrupted(ctx.Err())
	case <-s.done:
		return repl.Ended()
	case sig := <-s.interrupts.received():
		return interrupted(sig)
	case res, ok := <-s.lines:
		if !ok {
			if s.closed() {
				return repl.Ended()
			}
			return s.interrupts.afterEOF(ctx)
		}
		if res.err != nil {
			return repl.Failed(res.err)
		}
		return repl.Success(strings.TrimRight(res.text, "\r\n"))
	}
}

// Close stops listening for signals and releases the reading goroutine once
// its current read returns. The underlying reader is left open.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.interrupts.stop()
	})
	return nil
}

func (s *Source) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// PrintAsync writes text followed by a newline if it lacks one.
func (s *Source) PrintAsync(text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return s.write(text)
}

func (s *Source) write(text string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := fmt.Fprint(s.writer, text)
	return err
}
