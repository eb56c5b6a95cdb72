package observability

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/replet/pkg/adapters/memory"
	"github.com/aretw0/replet/pkg/grammar"
	"github.com/aretw0/replet/pkg/repl"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveDispatch(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveDispatch(repl.DispatchEvent{Command: "greet", Duration: time.Millisecond})
	m.ObserveDispatch(repl.DispatchEvent{Command: "greet", Duration: time.Millisecond})
	m.ObserveDispatch(repl.DispatchEvent{Err: &repl.Error{Kind: repl.KindGrammar}})
	m.ObserveDispatch(repl.DispatchEvent{Command: "boom", Err: &repl.Error{Kind: repl.KindPanic}})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dispatches.WithLabelValues("greet", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("unmatched", "grammar")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.panics.WithLabelValues("boom")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.duration))
}

func TestMetrics_ObserveDecision(t *testing.T) {
	m := NewMetrics("test")

	m.ObserveDecision(&repl.Error{Kind: repl.KindExecution}, repl.Continue)
	m.ObserveDecision(&repl.Error{Kind: repl.KindInterrupt}, repl.Terminate)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("execution", "continue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("interrupt", "terminate")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("replet")
	m.ObserveDispatch(repl.DispatchEvent{Command: "greet"})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `replet_dispatch_total{command="greet",outcome="ok"} 1`)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))
}

type cmd struct{ Name string }

func TestMetrics_WiredIntoLoop(t *testing.T) {
	m := NewMetrics("replet")
	g := grammar.MustCompile(&grammar.Schema{
		Name: "app",
		Commands: []grammar.CommandSpec{
			{Name: "greet", Args: []grammar.ArgSpec{{Name: "name", Required: true}}},
			{Name: "fail"},
		},
	})
	src := memory.New([]string{"greet Ada", "nope", "fail"})
	h := repl.HandlerFunc[cmd](func(c *repl.ExecutionContext, v cmd) error {
		if c.Matches().Command() == "fail" {
			return errors.New("failed")
		}
		return nil
	})

	r, err := repl.New[cmd](src, g, grammar.DecoderFunc[cmd](grammar.Bind[cmd]), h, repl.WithHooks(m.Hooks()))
	require.NoError(t, err)
	assert.ErrorIs(t, r.Run(t.Context()), repl.ErrEndOfInput)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("greet", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("unmatched", "grammar")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("fail", "execution")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("end_of_input", "terminate")))
}
