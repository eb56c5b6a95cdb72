package repl

import (
	"context"
	"runtime"
	"strings"
	"time"

	"github.com/aretw0/replet/pkg/grammar"
)

const panicStackSize = 8192

// Dispatch runs one line against g inside the panic boundary without reading
// from the source or consulting the policy. g must be a clone; nil means a
// fresh clone of the canonical grammar.
func (r *REPL[C]) Dispatch(ctx context.Context, g *grammar.Grammar, line string) error {
	if g == nil {
		g = r.grammar.Clone()
	}
	if err := r.guarded(ctx, g, line); err != nil {
		return err
	}
	return nil
}

// guarded wraps one dispatch in the panic boundary and reports it to the hooks.
func (r *REPL[C]) guarded(ctx context.Context, g *grammar.Grammar, line string) *Error {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	start := time.Now()
	var path string
	err := r.recoverPanic(line, func() *Error {
		return r.dispatch(ctx, g, line, &path)
	})

	r.hooks.dispatch(DispatchEvent{
		Line:     line,
		Command:  path,
		Duration: time.Since(start),
		Err:      err,
	})
	return err
}

// recoverPanic converts a panic raised by fn into a KindPanic error.
func (r *REPL[C]) recoverPanic(line string, fn func() *Error) (result *Error) {
	defer func() {
		if p := recover(); p != nil {
			stack := make([]byte, panicStackSize)
			n := runtime.Stack(stack, false)
			result = &Error{Kind: KindPanic, Line: line, Payload: p, Stack: stack[:n]}
		}
	}()
	return fn()
}

// dispatch turns one line into at most one handler invocation.
func (r *REPL[C]) dispatch(ctx context.Context, g *grammar.Grammar, line string, path *string) *Error {
	tokens, err := g.Tokenize(line)
	if err != nil {
		return &Error{Kind: KindGrammar, Line: line, Err: err}
	}
	if len(tokens) == 0 {
		return nil
	}

	m, err := g.Match(tokens)
	if err != nil {
		return &Error{Kind: KindGrammar, Line: line, Err: err}
	}
	*path = m.Command()

	cmd, err := r.decoder.Decode(m)
	if err != nil {
		return &Error{Kind: KindDecode, Line: line, Err: err}
	}

	ectx := &ExecutionContext{
		ctx:      ctx,
		source:   r.source,
		grammar:  g,
		matches:  m,
		line:     line,
		logger:   r.logger,
		renderer: r.opts.renderer,
		onExit:   r.requestExit,
	}
	// Runs on panic too, so a leaked context cannot print into the next iteration.
	defer ectx.close()

	r.logger.Debug("dispatching command", "command", *path, "line", line)
	if err := r.handler.OnCommand(ectx, cmd); err != nil {
		return &Error{Kind: KindExecution, Line: line, Err: err}
	}
	return nil
}
