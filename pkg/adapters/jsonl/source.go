package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/replet/pkg/repl"
)

// Event types written to the output stream.
const (
	EventPrompt = "prompt"
	EventOutput = "output"
)

// Control signals accepted in the "signal" field.
const (
	SignalInterrupt = "interrupt"
	SignalEOF       = "eof"
)

// Event is one line of output.
type Event struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Input is the object form of an input line.
type Input struct {
	Line   *string `json:"line,omitempty"`
	Signal string  `json:"signal,omitempty"`
}

// Source implements repl.LineSource over JSON Lines.
type Source struct {
	reader  *bufio.Reader
	prompts bool

	mu      sync.Mutex
	encoder *json.Encoder

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

// WithoutPromptEvents stops the source from announcing each read.
func WithoutPromptEvents() Option {
	return func(s *Source) {
		s.prompts = false
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
		reader:  bufio.NewReader(r),
		encoder: json.NewEncoder(w),
		prompts: true,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) pump() {
	defer close(s.lines)
	for {
		text, err := s.reader.ReadString('\n')
		if strings.TrimSpace(text) != "" && !s.send(readResult{text: text}) {
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

// Close releases the reading goroutine once its current read returns.
// Later reads report end of input. The underlying reader is left open.
func (s *Source) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// ReadLine announces the prompt and waits for the next input line.
func (s *Source) ReadLine(ctx context.Context, prompt repl.Prompt) repl.Signal {
	s.startOnce.Do(func() {
		s.lines = make(chan readResult)
		go s.pump()
	})

	if err := ctx.Err(); err != nil {
		return repl.Interrupted(err)
	}
	select {
	case <-s.done:
		return repl.Ended()
	default:
	}
	if s.prompts {
		if err := s.emit(Event{Type: EventPrompt, Text: prompt.Render(repl.ModeDefault)}); err != nil {
			return repl.Failed(err)
		}
	}

	select {
	case <-ctx.Done():
		return repl.Interrupted(ctx.Err())
	case <-s.done:
		return repl.Ended()
	case res, ok := <-s.lines:
		if !ok {
			return repl.Ended()
		}
		if res.err != nil {
			return repl.Failed(res.err)
		}
		return Decode(res.text)
	}
}

// PrintAsync writes text as an output event.
func (s *Source) PrintAsync(text string) error {
	return s.emit(Event{Type: EventOutput, Text: text})
}

func (s *Source) emit(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoder.Encode(ev)
}

// Decode classifies one input line.
func Decode(text string) repl.Signal {
	text = strings.TrimSpace(text)

	// Try to unquote if it's a JSON string
	var line string
	if err := json.Unmarshal([]byte(text), &line); err == nil {
		return repl.Success(line)
	}

	if strings.HasPrefix(text, "{") {
		var in Input
		if err := json.Unmarshal([]byte(text), &in); err == nil {
			switch {
			case in.Signal == SignalInterrupt:
				return repl.Interrupted(nil)
			case in.Signal == SignalEOF:
				return repl.Ended()
			case in.Signal != "":
				return repl.Failed(fmt.Errorf("unknown signal %q", in.Signal))
			case in.Line != nil:
				return repl.Success(*in.Line)
			}
		}
	}

	// Fallback: raw text (e.g. if they just sent plain text)
	return repl.Success(text)
}
