package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/aretw0/replet/pkg/grammar"
)

// ErrContextClosed is returned by ExecutionContext methods called after the
// handler returned.
var ErrContextClosed = errors.New("repl: execution context used after dispatch")

// ContentRenderer transforms content before it is printed (e.g. markdown to ANSI).
type ContentRenderer func(string) (string, error)

// ExecutionContext is handed to a Handler for exactly one dispatch.
// Handlers must not retain it; once the handler returns, printing through it fails.
type ExecutionContext struct {
	ctx      context.Context
	source   LineSource
	grammar  *grammar.Grammar
	matches  *grammar.Matches
	line     string
	logger   *slog.Logger
	renderer ContentRenderer
	onExit   func()

	closed atomic.Bool
}

// Context returns the context of the loop iteration.
func (c *ExecutionContext) Context() context.Context {
	return c.ctx
}

// Source returns the line source. Its editing surface is lent for the duration of the call.
func (c *ExecutionContext) Source() LineSource {
	return c.source
}

// Grammar returns the snapshot clone used for this dispatch. Changes made to it
// are discarded when the iteration ends.
func (c *ExecutionContext) Grammar() *grammar.Grammar {
	return c.grammar
}

// Matches returns the raw matches the command was decoded from.
func (c *ExecutionContext) Matches() *grammar.Matches {
	return c.matches
}

// Line returns the input line being executed.
func (c *ExecutionContext) Line() string {
	return c.line
}

func (c *ExecutionContext) Logger() *slog.Logger {
	return c.logger
}

// Print writes the operands through the print channel of the line source.
func (c *ExecutionContext) Print(a ...any) error {
	if c.closed.Load() {
		return ErrContextClosed
	}
	return c.source.PrintAsync(fmt.Sprint(a...))
}

// Printf formats and prints through the print channel.
func (c *ExecutionContext) Printf(format string, a ...any) error {
	return c.Print(fmt.Sprintf(format, a...))
}

// Markdown renders md with the configured renderer and prints it.
// Without a renderer, or when rendering fails, the raw text is printed.
func (c *ExecutionContext) Markdown(md string) error {
	out := md
	if c.renderer != nil {
		if rendered, err := c.renderer(md); err == nil {
			out = rendered
		} else {
			c.logger.Debug("markdown render failed", "err", err)
		}
	}
	return c.Print(strings.TrimSpace(out))
}

// HandleError prints the rendered form of a grammar error.
func (c *ExecutionContext) HandleError(err *grammar.Error) error {
	return c.Print(err.Render())
}

// Error builds a grammar error bound to the current command.
func (c *ExecutionContext) Error(kind grammar.Kind, format string, args ...any) *grammar.Error {
	gerr := c.grammar.Error(kind, format, args...)
	if c.matches != nil {
		gerr.Command = c.matches.Command()
		if cmd := c.grammar.Command(c.matches.Path...); cmd != nil {
			gerr.Usage = cmd.UsageString()
		}
	}
	return gerr
}

// Exit asks the loop to stop cleanly after this dispatch. Run then returns nil.
func (c *ExecutionContext) Exit() {
	if c.onExit != nil {
		c.onExit()
	}
}

func (c *ExecutionContext) close() {
	c.closed.Store(true)
}
