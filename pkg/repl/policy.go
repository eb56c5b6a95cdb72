package repl

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Decision is the verdict of a Policy.
type Decision int

const (
	Continue Decision = iota
	Terminate
)

func (d Decision) String() string {
	if d == Terminate {
		return "terminate"
	}
	return "continue"
}

// Policy decides whether the loop survives a failed iteration.
// It is called once per non-success outcome and may perform side effects.
// The loop never overrides a Terminate, except for help and version requests
// which always continue.
type Policy interface {
	Decide(err *Error) Decision
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(err *Error) Decision

func (f PolicyFunc) Decide(err *Error) Decision {
	return f(err)
}

// ErrorFormatter styles rendered error text before it is written.
type ErrorFormatter func(kind Kind, text string) string

// DefaultPolicy terminates on interrupt, end of input, I/O failure and panics,
// and continues after grammar, decode and execution errors.
//
// Recoverable errors are logged at WARN and, when Output is set, rendered to it.
// Help and version text is always written to Output and logged at DEBUG.
type DefaultPolicy struct {
	Logger *slog.Logger
	// Output receives rendered messages. Typically PrintWriter(source).
	Output io.Writer
	// ContinueOnPanic turns handler panics into recoverable errors.
	ContinueOnPanic bool
	// Formatter styles rendered errors; help text is never formatted.
	Formatter ErrorFormatter

	mu       sync.Mutex
	exitCode int
}

// NewDefaultPolicy returns a DefaultPolicy that logs to logger and renders to out.
func NewDefaultPolicy(logger *slog.Logger, out io.Writer) *DefaultPolicy {
	return &DefaultPolicy{Logger: logger, Output: out}
}

func (p *DefaultPolicy) Decide(err *Error) Decision {
	logger := p.Logger
	if logger == nil {
		logger = nopLogger()
	}

	switch err.Kind {
	case KindInterrupt, KindEndOfInput, KindIO:
		logger.Debug("loop terminating", "kind", err.Kind, "err", err)
		return p.terminate(err)

	case KindPanic:
		logger.Error("command panicked", "line", err.Line, "panic", err.Payload, "stack", string(err.Stack))
		if p.ContinueOnPanic {
			p.render(err)
			return Continue
		}
		return p.terminate(err)

	case KindGrammar:
		if err.IsHelp() {
			g, _ := err.Grammar()
			logger.Debug("help requested", "kind", g.Kind, "line", err.Line)
			p.write(g.Render())
			return Continue
		}
		logger.Warn("invalid command", "kind", err.Kind, "line", err.Line, "err", err.Err)
		p.render(err)
		return Continue

	default:
		logger.Warn("command failed", "kind", err.Kind, "line", err.Line, "err", err.Err)
		p.render(err)
		return Continue
	}
}

// ExitCode returns the exit status of the last Terminate decision, or 0.
func (p *DefaultPolicy) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

func (p *DefaultPolicy) terminate(err *Error) Decision {
	p.mu.Lock()
	p.exitCode = ExitCode(err)
	p.mu.Unlock()
	return Terminate
}

func (p *DefaultPolicy) render(err *Error) {
	text := err.Render()
	if p.Formatter != nil {
		text = p.Formatter(err.Kind, text)
	}
	p.write(text)
}

func (p *DefaultPolicy) write(text string) {
	if p.Output == nil {
		return
	}
	fmt.Fprintln(p.Output, strings.TrimRight(text, "\n"))
}
