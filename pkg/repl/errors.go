package repl

import (
	"errors"
	"fmt"

	"github.com/aretw0/replet/pkg/grammar"
)

// Kind classifies the outcome of one loop iteration. The set is closed.
type Kind int

const (
	// KindInterrupt: the line source signaled an interrupt or ctx was cancelled.
	KindInterrupt Kind = iota
	// KindEndOfInput: the line source has no more input.
	KindEndOfInput
	// KindGrammar: the line did not match the grammar, or asked for help/version.
	KindGrammar
	// KindDecode: the line matched but could not be decoded into a command.
	KindDecode
	// KindPanic: the handler panicked.
	KindPanic
	// KindIO: the line source failed.
	KindIO
	// KindExecution: the handler returned an error.
	KindExecution
)

func (k Kind) String() string {
	switch k {
	case KindInterrupt:
		return "interrupt"
	case KindEndOfInput:
		return "end_of_input"
	case KindGrammar:
		return "grammar"
	case KindDecode:
		return "decode"
	case KindPanic:
		return "panic"
	case KindIO:
		return "io"
	case KindExecution:
		return "execution"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInterrupt  = &Error{Kind: KindInterrupt}
	ErrEndOfInput = &Error{Kind: KindEndOfInput}
	ErrGrammar    = &Error{Kind: KindGrammar}
	ErrDecode     = &Error{Kind: KindDecode}
	ErrPanic      = &Error{Kind: KindPanic}
	ErrIO         = &Error{Kind: KindIO}
	ErrExecution  = &Error{Kind: KindExecution}
)

// ErrTerminated is returned when Run or ReadOnce is called on a stopped REPL.
var ErrTerminated = errors.New("repl: loop already terminated")

// Error is the classified result of a failed iteration.
type Error struct {
	Kind Kind
	// Line is the raw input line, empty for source signals.
	Line string
	// Err is the cause: a *grammar.Error for KindGrammar, a *grammar.DecodeError
	// for KindDecode, the handler's error for KindExecution, the source error for KindIO.
	Err error
	// Payload is the recovered value for KindPanic.
	Payload any
	// Stack is the goroutine stack captured at the panic site.
	Stack []byte
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInterrupt:
		return "read was interrupted"
	case KindEndOfInput:
		return "end of input"
	case KindGrammar:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "grammar error"
	case KindDecode:
		return fmt.Sprintf("decode failed: %v", e.Err)
	case KindPanic:
		return fmt.Sprintf("command execution panicked: %v", e.Payload)
	case KindIO:
		return fmt.Sprintf("line source failed: %v", e.Err)
	case KindExecution:
		return fmt.Sprintf("command execution failed: %v", e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Err == nil && t.Payload == nil && t.Line == ""
}

// Grammar returns the grammar error behind a KindGrammar error.
func (e *Error) Grammar() (*grammar.Error, bool) {
	if e.Kind != KindGrammar {
		return nil, false
	}
	return grammar.AsError(e.Err)
}

// IsHelp reports whether e is a help or version request rather than a failure.
func (e *Error) IsHelp() bool {
	g, ok := e.Grammar()
	return ok && g.Kind.IsHelp()
}

// Render returns the text shown to the user. Grammar errors use the grammar
// renderer; everything else uses Error.
func (e *Error) Render() string {
	if g, ok := e.Grammar(); ok {
		return g.Render()
	}
	if e.Kind == KindExecution && e.Err != nil {
		return "error: " + e.Err.Error()
	}
	return "error: " + e.Error()
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Process exit statuses returned by ExitCode.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitInterrupt = 130
)

// ExitCode maps the result of Run to a process exit status.
// nil and end of input are a clean exit, an interrupt uses the conventional 130.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	e, ok := AsError(err)
	if !ok {
		return ExitFailure
	}
	switch e.Kind {
	case KindEndOfInput:
		return ExitOK
	case KindInterrupt:
		return ExitInterrupt
	default:
		return ExitFailure
	}
}
