package repl

// EditMode is the editing mode the line source is in when it renders the prompt.
type EditMode int

const (
	ModeDefault EditMode = iota
	ModeViInsert
	ModeViNormal
	ModeMultiline
)

// Prompt renders the text shown before the input buffer.
type Prompt interface {
	Render(mode EditMode) string
}

// PromptFunc adapts a function to the Prompt interface.
type PromptFunc func(mode EditMode) string

func (f PromptFunc) Render(mode EditMode) string {
	return f(mode)
}

// Indicators are the mode markers appended to the left prompt.
type Indicators struct {
	Default   string `yaml:"default" json:"default"`
	ViInsert  string `yaml:"vi_insert" json:"vi_insert"`
	ViNormal  string `yaml:"vi_normal" json:"vi_normal"`
	Multiline string `yaml:"multiline" json:"multiline"`
}

// DefaultIndicators returns the stock indicator set.
func DefaultIndicators() Indicators {
	return Indicators{
		Default:   "〉",
		ViInsert:  ": ",
		ViNormal:  "〉",
		Multiline: "::: ",
	}
}

// StaticPrompt is a prompt with fixed text on both sides.
// Right is rendered only by sources that support a right-aligned segment.
type StaticPrompt struct {
	Left       string
	Right      string
	Indicators Indicators
}

// NewStaticPrompt returns a StaticPrompt with the default indicators.
func NewStaticPrompt(left, right string) StaticPrompt {
	return StaticPrompt{Left: left, Right: right, Indicators: DefaultIndicators()}
}

// Render returns the left text followed by the indicator for mode.
func (p StaticPrompt) Render(mode EditMode) string {
	return p.Left + p.Indicator(mode)
}

// RightPrompt returns the right-aligned text.
func (p StaticPrompt) RightPrompt() string {
	return p.Right
}

// Indicator returns the marker for mode. Empty indicators fall back to the defaults.
func (p StaticPrompt) Indicator(mode EditMode) string {
	def := DefaultIndicators()
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	switch mode {
	case ModeViInsert:
		return pick(p.Indicators.ViInsert, def.ViInsert)
	case ModeViNormal:
		return pick(p.Indicators.ViNormal, def.ViNormal)
	case ModeMultiline:
		return pick(p.Indicators.Multiline, def.Multiline)
	default:
		return pick(p.Indicators.Default, def.Default)
	}
}
