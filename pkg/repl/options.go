package repl

import (
	"io"
	"log/slog"
)

type options struct {
	prompt   Prompt
	policy   Policy
	logger   *slog.Logger
	hooks    hookChain
	renderer ContentRenderer
}

// Option configures a REPL.
type Option func(*options)

// WithPrompt sets the prompt passed to the line source on every read.
func WithPrompt(p Prompt) Option {
	return func(o *options) {
		o.prompt = p
	}
}

// WithPolicy replaces the DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger configures the structured logger.
// The DefaultPolicy inherits it unless a policy is set explicitly.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHooks adds observers. It may be given more than once.
func WithHooks(h Hooks) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, h)
	}
}

// WithRenderer configures the content renderer used by ExecutionContext.Markdown.
func WithRenderer(r ContentRenderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
