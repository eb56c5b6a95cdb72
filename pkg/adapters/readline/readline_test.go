package readline

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/replet/pkg/grammar"
	"github.com/aretw0/replet/pkg/repl"
	backend "github.com/chzyer/readline"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.Compile(&grammar.Schema{
		Name: "shop",
		Commands: []grammar.CommandSpec{
			{
				Name:  "buy",
				Args:  []grammar.ArgSpec{{Name: "item", Required: true}},
				Flags: []grammar.FlagSpec{{Name: "qty", Type: grammar.TypeInt, Default: "1"}, {Name: "quick", Type: grammar.TypeBool}},
			},
			{Name: "basket", Subcommands: []grammar.CommandSpec{{Name: "show"}, {Name: "clear"}}},
		},
	})
	require.NoError(t, err)
	return g
}

func runes(words ...string) [][]rune {
	out := make([][]rune, len(words))
	for i, w := range words {
		out[i] = []rune(w)
	}
	return out
}

func TestCompleter(t *testing.T) {
	c := NewCompleter(testGrammar(t))

	got, n := c.Do([]rune("b"), 1)
	assert.Equal(t, runes("asket ", "uy "), got)
	assert.Equal(t, 1, n)

	got, n = c.Do([]rune("basket "), 7)
	assert.Equal(t, runes("clear ", "show "), got)
	assert.Equal(t, 0, n)

	got, n = c.Do([]rune("buy apple --q"), 13)
	assert.Equal(t, runes("ty ", "uick "), got)
	assert.Equal(t, 3, n)

	got, _ = c.Do([]rune("zzz"), 3)
	assert.Empty(t, got)
}

func TestValidatingPainter(t *testing.T) {
	g := testGrammar(t)
	p := NewValidatingPainterWithProfile(g, termenv.ANSI256)

	assert.True(t, p.Valid("buy apple"))
	assert.True(t, p.Valid("buy --help"), "help requests are valid")
	assert.True(t, p.Valid("   "))
	assert.False(t, p.Valid("buy"))
	assert.False(t, p.Valid("sell apple"))

	valid := string(p.Paint([]rune("buy apple"), 9))
	invalid := string(p.Paint([]rune("sell apple"), 10))
	assert.Contains(t, valid, "buy apple")
	assert.Contains(t, invalid, "sell apple")
	assert.NotEqual(t, valid, "buy apple", "valid input is styled")
	validStyle := valid[:strings.Index(valid, "buy apple")]
	invalidStyle := invalid[:strings.Index(invalid, "sell apple")]
	assert.NotEqual(t, validStyle, invalidStyle, "valid and invalid input use different colours")

	assert.Equal(t, []rune("  "), p.Paint([]rune("  "), 2), "blank buffers are left alone")
}

func TestValidatingPainter_NeverTouchesCanonicalGrammar(t *testing.T) {
	g := testGrammar(t)
	p := NewValidatingPainterWithProfile(g, termenv.Ascii)

	for range 3 {
		p.Paint([]rune("buy apple --qty 9 --quick"), 0)
	}

	m, err := g.Clone().Match([]string{"buy", "pear"})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Flags["qty"])
	assert.Equal(t, false, m.Flags["quick"])
}

func TestClassify(t *testing.T) {
	assert.Equal(t, repl.Success("x"), classify("x", nil))
	assert.Equal(t, repl.SignalInterrupt, classify("", backend.ErrInterrupt).Kind)
	assert.Equal(t, repl.SignalEndOfInput, classify("", io.EOF).Kind)

	boom := errors.New("tty")
	sig := classify("", boom)
	assert.Equal(t, repl.SignalIOFailure, sig.Kind)
	assert.ErrorIs(t, sig.Err, boom)
}
