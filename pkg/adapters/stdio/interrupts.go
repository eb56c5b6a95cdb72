package stdio

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/replet/pkg/repl"
)

// eofGrace is how long an end of input waits for a signal to follow it.
// Some consoles deliver EOF on Ctrl+C slightly before the signal itself.
const eofGrace = 100 * time.Millisecond

// interrupts relays SIGINT and SIGTERM to ReadLine. A signal that arrives
// while no read is pending interrupts the next one; further signals coalesce.
type interrupts struct {
	ch    chan os.Signal
	grace time.Duration
}

func listenInterrupts() *interrupts {
	i := &interrupts{ch: make(chan os.Signal, 1), grace: eofGrace}
	signal.Notify(i.ch, os.Interrupt, syscall.SIGTERM)
	return i
}

// received is nil-safe; a nil channel never fires in a select.
func (i *interrupts) received() <-chan os.Signal {
	if i == nil {
		return nil
	}
	return i.ch
}

func interrupted(sig os.Signal) repl.Signal {
	return repl.Interrupted(fmt.Errorf("received %s", sig))
}

// afterEOF reports an end of input, unless a signal shows it was a Ctrl+C.
func (i *interrupts) afterEOF(ctx context.Context) repl.Signal {
	if i == nil {
		return repl.Ended()
	}
	timer := time.NewTimer(i.grace)
	defer timer.Stop()

	select {
	case sig := <-i.ch:
		return interrupted(sig)
	case <-ctx.Done():
		return repl.Interrupted(ctx.Err())
	case <-timer.C:
		return repl.Ended()
	}
}

func (i *interrupts) stop() {
	if i != nil {
		signal.Stop(i.ch)
	}
}
