package tui

import (
	"github.com/aretw0/replet/pkg/repl"
	"github.com/muesli/termenv"
)

// Theme holds the colours of interactive output.
type Theme struct {
	Profile termenv.Profile
	Prompt  string
	Error   string
	Warning string
}

// DefaultTheme uses the colour profile of stdout.
func DefaultTheme() Theme {
	return Theme{
		Profile: termenv.EnvColorProfile(),
		Prompt:  "#818cf8",
		Error:   "#f87171",
		Warning: "#fbbf24",
	}
}

// StyledPrompt colours the output of a prompt.
type StyledPrompt struct {
	Base  repl.Prompt
	Theme Theme
}

func (p StyledPrompt) Render(mode repl.EditMode) string {
	text := p.Base.Render(mode)
	return p.Theme.Profile.String(text).Foreground(p.Theme.Profile.Color(p.Theme.Prompt)).Bold().String()
}

// ErrorFormatter returns a formatter for repl.DefaultPolicy.
// Panics and execution errors use the error colour, grammar and decode errors the warning colour.
func ErrorFormatter(t Theme) repl.ErrorFormatter {
	return func(kind repl.Kind, text string) string {
		color := t.Error
		if kind == repl.KindGrammar || kind == repl.KindDecode {
			color = t.Warning
		}
		return t.Profile.String(text).Foreground(t.Profile.Color(color)).String()
	}
}
