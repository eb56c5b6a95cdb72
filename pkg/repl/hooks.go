package repl

import "time"

// DispatchEvent describes one completed dispatch.
type DispatchEvent struct {
	Line string
	// Command is the matched command path, empty when matching failed.
	Command  string
	Duration time.Duration
	// Err is nil on success.
	Err *Error
}

// Hooks observe the loop without influencing it. Nil fields are skipped.
type Hooks struct {
	// OnDispatch runs after every dispatch of a non-empty line, including panics.
	OnDispatch func(ev DispatchEvent)
	// OnDecision runs after the policy decided on a failed iteration.
	OnDecision func(err *Error, d Decision)
}

type hookChain []Hooks

func (h hookChain) dispatch(ev DispatchEvent) {
	for _, hk := range h {
		if hk.OnDispatch != nil {
			hk.OnDispatch(ev)
		}
	}
}

func (h hookChain) decision(err *Error, d Decision) {
	for _, hk := range h {
		if hk.OnDecision != nil {
			hk.OnDecision(err, d)
		}
	}
}
