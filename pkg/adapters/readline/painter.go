package readline

import (
	"strings"

	"github.com/aretw0/replet/pkg/grammar"
	"github.com/muesli/termenv"
)

// ValidatingPainter colours the buffer by whether it currently matches the
// grammar. It always matches against a disposable clone, so live feedback
// never touches the canonical grammar.
type ValidatingPainter struct {
	grammar *grammar.Grammar
	profile termenv.Profile
	valid   termenv.Color
	invalid termenv.Color
}

// NewValidatingPainter creates a painter for g using the terminal colour profile.
func NewValidatingPainter(g *grammar.Grammar) *ValidatingPainter {
	return NewValidatingPainterWithProfile(g, termenv.ColorProfile())
}

// NewValidatingPainterWithProfile creates a painter rendering with profile p.
func NewValidatingPainterWithProfile(g *grammar.Grammar, p termenv.Profile) *ValidatingPainter {
	return &ValidatingPainter{
		grammar: g,
		profile: p,
		valid:   p.Color("#34d399"),
		invalid: p.Color("#f87171"),
	}
}

// Valid reports whether line would dispatch without a grammar error.
// Help and version requests count as valid.
func (p *ValidatingPainter) Valid(line string) bool {
	g := p.grammar.Clone()
	tokens, err := g.Tokenize(line)
	if err != nil {
		return false
	}
	if len(tokens) == 0 {
		return true
	}
	_, err = g.Match(tokens)
	if err == nil {
		return true
	}
	gerr, ok := grammar.AsError(err)
	return ok && gerr.Kind.IsHelp()
}

// Paint implements readline.Painter.
func (p *ValidatingPainter) Paint(line []rune, pos int) []rune {
	text := string(line)
	if strings.TrimSpace(text) == "" {
		return line
	}
	color := p.invalid
	if p.Valid(text) {
		color = p.valid
	}
	return []rune(p.profile.String(text).Foreground(color).String())
}
