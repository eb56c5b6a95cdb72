package readline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/replet/pkg/repl"
	backend "github.com/chzyer/readline"
)

// Source implements repl.LineSource on top of an interactive readline instance.
// PrintAsync writes above the prompt and redraws the current buffer.
type Source struct {
	rl  *backend.Instance
	cfg *backend.Config

	mu      sync.Mutex
	pending bool
	results chan readResult
}

type readResult struct {
	line string
	err  error
}

// Option configures the underlying readline instance.
type Option func(*backend.Config)

// WithVimMode enables vi key bindings.
func WithVimMode(enabled bool) Option {
	return func(c *backend.Config) {
		c.VimMode = enabled
	}
}

// WithCompleter installs a tab completer.
func WithCompleter(ac backend.AutoCompleter) Option {
	return func(c *backend.Config) {
		c.AutoComplete = ac
	}
}

// WithPainter installs a painter that styles the buffer while typing.
func WithPainter(p backend.Painter) Option {
	return func(c *backend.Config) {
		c.Painter = p
	}
}

// WithIO overrides the terminal streams.
func WithIO(in io.ReadCloser, out io.Writer) Option {
	return func(c *backend.Config) {
		c.Stdin = in
		c.Stdout = out
	}
}

// New creates a readline-backed source.
func New(opts ...Option) (*Source, error) {
	cfg := &backend.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "^D",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	rl, err := backend.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	return &Source{
		rl:      rl,
		cfg:     cfg,
		results: make(chan readResult, 1),
	}, nil
}

// ReadLine renders prompt and reads one line.
// A cancelled ctx interrupts the wait; the pending terminal read is picked up
// by the next call.
func (s *Source) ReadLine(ctx context.Context, prompt repl.Prompt) repl.Signal {
	if err := ctx.Err(); err != nil {
		return repl.Interrupted(err)
	}

	s.rl.SetPrompt(prompt.Render(s.mode()))

	s.mu.Lock()
	if !s.pending {
		s.pending = true
		go func() {
			line, err := s.rl.Readline()
			s.results <- readResult{line: line, err: err}
		}()
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return repl.Interrupted(ctx.Err())
	case res := <-s.results:
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
		return classify(res.line, res.err)
	}
}

// PrintAsync prints text above the prompt.
func (s *Source) PrintAsync(text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(s.rl.Stdout(), text)
	return err
}

// Close restores the terminal.
func (s *Source) Close() error {
	return s.rl.Close()
}

func (s *Source) mode() repl.EditMode {
	if s.rl.IsVimMode() {
		return repl.ModeViInsert
	}
	return repl.ModeDefault
}

func classify(line string, err error) repl.Signal {
	switch {
	case err == nil:
		return repl.Success(line)
	case errors.Is(err, backend.ErrInterrupt):
		return repl.Interrupted(nil)
	case errors.Is(err, io.EOF):
		return repl.Ended()
	default:
		return repl.Failed(err)
	}
}
