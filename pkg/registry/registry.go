// Package registry maps command paths to handler functions, for hosts that
// work with raw matches instead of decoding into their own command types.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/replet/pkg/grammar"
	"github.com/aretw0/replet/pkg/repl"
)

// ErrNotFound is returned for a matched command with no registered function.
var ErrNotFound = errors.New("no handler registered")

// CommandFunc defines the signature for a command implementation.
type CommandFunc func(ctx *repl.ExecutionContext, m *grammar.Matches) error

// Registry manages the available commands. It implements repl.Handler for
// *grammar.Matches; pair it with grammar.Raw.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]CommandFunc
	fallback CommandFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]CommandFunc),
	}
}

// Register adds a command under its space-separated path, e.g. "remote add".
// If a command with the same path exists, it is overwritten.
func (r *Registry) Register(path string, fn CommandFunc) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[normalize(path)] = fn
	return r
}

// Fallback sets the function for commands without an entry of their own.
func (r *Registry) Fallback(fn CommandFunc) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fn
	return r
}

// Paths returns the registered paths.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.commands))
	for p := range r.commands {
		out = append(out, p)
	}
	return out
}

// OnCommand looks up the matched command and executes it.
func (r *Registry) OnCommand(ctx *repl.ExecutionContext, m *grammar.Matches) error {
	r.mu.RLock()
	fn, ok := r.commands[m.Command()]
	if !ok {
		fn = r.fallback
	}
	r.mu.RUnlock()

	if fn == nil {
		return fmt.Errorf("%w for %q", ErrNotFound, m.Command())
	}
	return fn(ctx, m)
}

func normalize(path string) string {
	return strings.Join(strings.Fields(path), " ")
}
