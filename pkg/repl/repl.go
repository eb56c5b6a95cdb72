package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/replet/pkg/grammar"
)

// State is the loop state. Terminated is absorbing.
type State int

const (
	StateRunning State = iota
	StateTerminated
)

func (s State) String() string {
	if s == StateTerminated {
		return "terminated"
	}
	return "running"
}

// REPL reads lines from a LineSource, dispatches them to a Handler and routes
// every failure through a Policy.
type REPL[C any] struct {
	source  LineSource
	grammar *grammar.Grammar
	decoder grammar.Decoder[C]
	handler Handler[C]
	policy  Policy
	logger  *slog.Logger
	hooks   hookChain
	opts    options

	mu            sync.Mutex
	state         State
	exitRequested bool
}

// New creates a REPL over the canonical grammar g.
// The canonical grammar is never matched against directly; every iteration
// works on a clone.
func New[C any](source LineSource, g *grammar.Grammar, decoder grammar.Decoder[C], handler Handler[C], opts ...Option) (*REPL[C], error) {
	switch {
	case source == nil:
		return nil, errors.New("repl: line source is required")
	case g == nil:
		return nil, errors.New("repl: grammar is required")
	case decoder == nil:
		return nil, errors.New("repl: decoder is required")
	case handler == nil:
		return nil, errors.New("repl: handler is required")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = nopLogger()
	}
	if o.prompt == nil {
		o.prompt = NewStaticPrompt("", "")
	}
	if o.policy == nil {
		o.policy = NewDefaultPolicy(o.logger, PrintWriter(source))
	}

	return &REPL[C]{
		source:  source,
		grammar: g,
		decoder: decoder,
		handler: handler,
		policy:  o.policy,
		logger:  o.logger,
		hooks:   o.hooks,
		opts:    o,
		state:   StateRunning,
	}, nil
}

// Grammar returns the canonical grammar.
func (r *REPL[C]) Grammar() *grammar.Grammar {
	return r.grammar
}

// Policy returns the active policy.
func (r *REPL[C]) Policy() Policy {
	return r.policy
}

// State returns the current loop state.
func (r *REPL[C]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Run reads and dispatches lines until the policy decides to terminate or a
// handler calls Exit. It returns the terminating *Error, or nil on a clean stop.
func (r *REPL[C]) Run(ctx context.Context) error {
	if r.State() == StateTerminated {
		return ErrTerminated
	}
	r.logger.Debug("loop started")

	for {
		err := r.iterate(ctx, r.grammar.Clone())
		if err != nil {
			if r.decide(err) == Terminate {
				r.terminate()
				r.logger.Debug("loop terminated", "kind", err.Kind)
				return err
			}
		}
		if r.exiting() {
			r.terminate()
			r.logger.Debug("loop exited by handler")
			return nil
		}
	}
}

// ReadOnce runs a single iteration on a fresh clone of the canonical grammar.
// The policy is not consulted; the classified error is returned as is.
func (r *REPL[C]) ReadOnce(ctx context.Context) error {
	return r.ReadWith(ctx, r.grammar.Clone())
}

// ReadWith runs a single iteration against g, which the caller may reuse
// across calls. The policy is not consulted.
func (r *REPL[C]) ReadWith(ctx context.Context, g *grammar.Grammar) error {
	if r.State() == StateTerminated {
		return ErrTerminated
	}
	if g == nil {
		g = r.grammar.Clone()
	}
	err := r.iterate(ctx, g)
	if r.exiting() {
		r.terminate()
	}
	if err != nil {
		return err
	}
	return nil
}

// iterate reads one signal and classifies its outcome.
func (r *REPL[C]) iterate(ctx context.Context, g *grammar.Grammar) *Error {
	if err := ctx.Err(); err != nil {
		return &Error{Kind: KindInterrupt, Err: err}
	}

	sig := r.source.ReadLine(ctx, r.opts.prompt)
	switch sig.Kind {
	case SignalSuccess:
		if err := ctx.Err(); err != nil {
			return &Error{Kind: KindInterrupt, Err: err}
		}
		return r.guarded(ctx, g, sig.Text)
	case SignalInterrupt:
		return &Error{Kind: KindInterrupt, Err: sig.Err}
	case SignalEndOfInput:
		return &Error{Kind: KindEndOfInput}
	case SignalIOFailure:
		return &Error{Kind: KindIO, Err: sig.Err}
	default:
		return &Error{Kind: KindIO, Err: fmt.Errorf("unknown signal kind %v", sig.Kind)}
	}
}

func (r *REPL[C]) decide(err *Error) Decision {
	d := r.policy.Decide(err)
	if err.IsHelp() {
		d = Continue
	}
	r.hooks.decision(err, d)
	return d
}

func (r *REPL[C]) requestExit() {
	r.mu.Lock()
	r.exitRequested = true
	r.mu.Unlock()
}

func (r *REPL[C]) exiting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exitRequested
}

func (r *REPL[C]) terminate() {
	r.mu.Lock()
	r.state = StateTerminated
	r.mu.Unlock()
}
