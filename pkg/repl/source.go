package repl

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// SignalKind tags the outcome of a single ReadLine call.
type SignalKind int

const (
	// SignalSuccess carries one line of text.
	SignalSuccess SignalKind = iota
	// SignalInterrupt means the user pressed Ctrl+C or the read was cancelled.
	SignalInterrupt
	// SignalEndOfInput means the input stream is exhausted (Ctrl+D, closed pipe).
	SignalEndOfInput
	// SignalIOFailure means the source could not read; Err holds the cause.
	SignalIOFailure
)

func (k SignalKind) String() string {
	switch k {
	case SignalSuccess:
		return "success"
	case SignalInterrupt:
		return "interrupt"
	case SignalEndOfInput:
		return "end_of_input"
	case SignalIOFailure:
		return "io_failure"
	default:
		return fmt.Sprintf("signal(%d)", int(k))
	}
}

// Signal is produced by a LineSource for every read. Exactly one kind is set.
type Signal struct {
	Kind SignalKind
	Text string
	Err  error
}

// Success returns a signal carrying a line of text.
func Success(text string) Signal {
	return Signal{Kind: SignalSuccess, Text: text}
}

// Interrupted returns an interrupt signal. cause may be nil.
func Interrupted(cause error) Signal {
	return Signal{Kind: SignalInterrupt, Err: cause}
}

// Ended returns an end-of-input signal.
func Ended() Signal {
	return Signal{Kind: SignalEndOfInput}
}

// Failed returns an I/O failure signal.
func Failed(err error) Signal {
	return Signal{Kind: SignalIOFailure, Err: err}
}

// LineSource reads lines from the user and prints out of band.
//
// ReadLine blocks until a line is available, the user interrupts, the input
// ends or ctx is done. Implementations report a cancelled ctx as SignalInterrupt.
// PrintAsync must be safe to call from any goroutine.
type LineSource interface {
	ReadLine(ctx context.Context, prompt Prompt) Signal
	PrintAsync(text string) error
}

type printWriter struct {
	src LineSource
}

func (w printWriter) Write(p []byte) (int, error) {
	// PrintAsync prints whole lines; the writer's own line break is dropped.
	if err := w.src.PrintAsync(strings.TrimSuffix(string(p), "\n")); err != nil {
		return 0, err
	}
	return len(p), nil
}

// PrintWriter adapts the print channel of src to an io.Writer, so policies and
// loggers can write through the line source without tearing the prompt.
func PrintWriter(src LineSource) io.Writer {
	return printWriter{src: src}
}
