package repl

// Handler executes decoded commands. It is invoked once per successful
// dispatch and must not retain ctx after returning.
type Handler[C any] interface {
	OnCommand(ctx *ExecutionContext, cmd C) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc[C any] func(ctx *ExecutionContext, cmd C) error

func (f HandlerFunc[C]) OnCommand(ctx *ExecutionContext, cmd C) error {
	return f(ctx, cmd)
}
