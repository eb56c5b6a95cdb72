package repl

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/aretw0/replet/pkg/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKind(t *testing.T) {
	cause := errors.New("cause")
	err := &Error{Kind: KindExecution, Line: "x", Err: cause}

	assert.ErrorIs(t, err, ErrExecution)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrPanic)

	wrapped := fmt.Errorf("loop: %w", err)
	assert.ErrorIs(t, wrapped, ErrExecution)

	got, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Same(t, err, got)

	_, ok = AsError(io.EOF)
	assert.False(t, ok)
}

func TestError_Messages(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: KindInterrupt}, "read was interrupted"},
		{&Error{Kind: KindEndOfInput}, "end of input"},
		{&Error{Kind: KindPanic, Payload: "boom"}, "command execution panicked: boom"},
		{&Error{Kind: KindIO, Err: io.ErrClosedPipe}, "line source failed: io: read/write on closed pipe"},
		{&Error{Kind: KindExecution, Err: errors.New("x")}, "command execution failed: x"},
		{&Error{Kind: KindGrammar, Err: &grammar.Error{Message: "bad"}}, "bad"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Render(t *testing.T) {
	gerr := &Error{Kind: KindGrammar, Err: &grammar.Error{Kind: grammar.KindUnknownCommand, Message: `unknown command "x"`}}
	assert.Equal(t, `error: unknown command "x"`, gerr.Render())
	assert.False(t, gerr.IsHelp())

	help := &Error{Kind: KindGrammar, Err: &grammar.Error{Kind: grammar.KindDisplayHelp, Message: "Usage: x"}}
	assert.Equal(t, "Usage: x", help.Render())
	assert.True(t, help.IsHelp())

	exec := &Error{Kind: KindExecution, Err: errors.New("disk full")}
	assert.Equal(t, "error: disk full", exec.Render())
	_, ok := exec.Grammar()
	assert.False(t, ok)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitOK, ExitCode(&Error{Kind: KindEndOfInput}))
	assert.Equal(t, ExitInterrupt, ExitCode(&Error{Kind: KindInterrupt}))
	assert.Equal(t, ExitFailure, ExitCode(&Error{Kind: KindPanic}))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("plain")))
	assert.Equal(t, ExitFailure, ExitCode(ErrTerminated))
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "grammar", KindGrammar.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
	assert.Equal(t, "end_of_input", SignalEndOfInput.String())
	assert.Equal(t, "terminated", StateTerminated.String())
}
