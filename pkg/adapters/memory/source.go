package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/replet/pkg/repl"
)

// Source implements repl.LineSource over an in-memory queue of signals.
// Safe for concurrent use: lines may be pushed from another goroutine while
// the loop is reading.
type Source struct {
	mu       sync.Mutex
	queue    []repl.Signal
	printed  []string
	prompts  []string
	blocking bool
	closed   bool
	notify   chan struct{}
}

// Option configures a Source.
type Option func(*Source)

// WithBlocking makes ReadLine wait for more input instead of reporting end of
// input when the queue is empty. Close ends the wait.
func WithBlocking() Option {
	return func(s *Source) {
		s.blocking = true
	}
}

// New creates a source that yields lines in order, then end of input.
func New(lines []string, opts ...Option) *Source {
	s := &Source{notify: make(chan struct{}, 1)}
	for _, opt := range opts {
		opt(s)
	}
	s.Push(lines...)
	return s
}

// Push appends lines to the queue.
func (s *Source) Push(lines ...string) {
	s.mu.Lock()
	for _, l := range lines {
		s.queue = append(s.queue, repl.Success(l))
	}
	s.mu.Unlock()
	s.wake()
}

// PushSignal appends an arbitrary signal, e.g. repl.Interrupted(nil).
func (s *Source) PushSignal(sig repl.Signal) {
	s.mu.Lock()
	s.queue = append(s.queue, sig)
	s.mu.Unlock()
	s.wake()
}

// Close marks the input as ended. Queued signals are still delivered.
func (s *Source) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wake()
}

func (s *Source) ReadLine(ctx context.Context, prompt repl.Prompt) repl.Signal {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt.Render(repl.ModeDefault))
	s.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return repl.Interrupted(err)
		}

		s.mu.Lock()
		if len(s.queue) > 0 {
			sig := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return sig
		}
		done := s.closed || !s.blocking
		s.mu.Unlock()

		if done {
			return repl.Ended()
		}

		select {
		case <-ctx.Done():
			return repl.Interrupted(ctx.Err())
		case <-s.notify:
		}
	}
}

func (s *Source) PrintAsync(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printed = append(s.printed, text)
	return nil
}

// Printed returns every text passed to PrintAsync, in order.
func (s *Source) Printed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.printed)
}

// Output returns the printed text concatenated.
func (s *Source) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.printed, "")
}

// Prompts returns the rendered prompt of every read.
func (s *Source) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.prompts)
}

func (s *Source) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
