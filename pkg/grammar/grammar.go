package grammar

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

const (
	defaultProgramName = "repl"
	helpCommand        = "help"

	// builtinAnnotation marks commands added by the engine rather than the schema.
	builtinAnnotation = "replet.builtin"
)

// Grammar is a compiled, runtime matcher for a Schema.
//
// Matching writes parsed flag values into the underlying cobra tree. Match
// resets the matched command before parsing, so one Grammar can match many
// lines in sequence, but it is not safe for concurrent use. Handlers may also
// edit the tree, so the canonical Grammar is kept as a template and every
// dispatch works on a Clone.
type Grammar struct {
	schema *Schema
	cfg    config
	root   *cobra.Command
	specs  map[*cobra.Command]*CommandSpec
}

// Option configures a Grammar at compile time.
type Option func(*config)

type config struct {
	maxLineSize int
}

// WithMaxLineSize overrides the maximum accepted line length in bytes.
func WithMaxLineSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxLineSize = n
		}
	}
}

// Compile validates the schema and builds a Grammar from it.
// It fails only when the schema itself is malformed; the error is a *SchemaError.
func Compile(s *Schema, opts ...Option) (*Grammar, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	cfg := config{maxLineSize: maxLineSizeFromEnv()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return build(copySchema(s), cfg), nil
}

// MustCompile is like Compile but panics on a malformed schema.
// It is intended for schemas declared as package-level literals.
func MustCompile(s *Schema, opts ...Option) *Grammar {
	g, err := Compile(s, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// Clone returns an independent Grammar built from the same schema.
// Clones share no mutable state with each other or with the receiver.
func (g *Grammar) Clone() *Grammar {
	return build(g.schema, g.cfg)
}

// Schema returns the schema the grammar was compiled from. Callers must not modify it.
func (g *Grammar) Schema() *Schema {
	return g.schema
}

// Root returns the root of the underlying cobra tree.
func (g *Grammar) Root() *cobra.Command {
	return g.root
}

// Command looks up the command at path, or returns nil.
// Handlers may modify the returned command (e.g. its Long help text); the
// change is confined to this Grammar.
func (g *Grammar) Command(path ...string) *cobra.Command {
	if len(path) == 0 {
		return g.root
	}
	c, rest, err := g.root.Find(path)
	if err != nil || c == g.root || len(rest) > 0 {
		return nil
	}
	return c
}

// Error builds a grammar error of the given kind bound to this grammar.
func (g *Grammar) Error(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Command: g.root.Name(),
	}
}

// Help renders the help text for the command at path (the root if path is empty).
func (g *Grammar) Help(path ...string) (string, error) {
	c := g.Command(path...)
	if c == nil {
		return "", g.Error(KindUnknownCommand, "unknown command %q", strings.Join(path, " "))
	}
	return helpText(c), nil
}

// Match resolves tokens against the grammar.
// On failure the returned error is always a *Error.
func (g *Grammar) Match(tokens []string) (*Matches, error) {
	if len(tokens) == 0 {
		return nil, &Error{Kind: KindDisplayHelpOnMissingSubcommand, Message: helpText(g.root), Command: g.root.Name()}
	}

	c, rest, err := g.root.Find(tokens)
	if err != nil {
		return nil, &Error{Kind: KindUnknownCommand, Message: err.Error(), Command: g.root.Name()}
	}

	if c.Annotations[builtinAnnotation] == helpCommand {
		return nil, g.helpFor(rest)
	}

	if err := g.resetFlags(c); err != nil {
		return nil, &Error{Kind: KindValueValidation, Message: err.Error(), Command: c.CommandPath()}
	}
	if err := c.ParseFlags(rest); err != nil {
		return nil, flagError(c, err)
	}
	if flagTrue(c, "help") {
		return nil, &Error{Kind: KindDisplayHelp, Message: helpText(c), Command: c.CommandPath()}
	}

	args := c.Flags().Args()

	if c == g.root {
		if g.root.Version != "" && flagTrue(c, "version") {
			return nil, &Error{
				Kind:    KindDisplayVersion,
				Message: fmt.Sprintf("%s version %s", g.root.Name(), g.root.Version),
				Command: c.Name(),
			}
		}
		if len(args) > 0 {
			return nil, &Error{
				Kind:        KindUnknownCommand,
				Message:     fmt.Sprintf("unknown command %q", args[0]),
				Command:     c.Name(),
				Suggestions: c.SuggestionsFor(args[0]),
				Usage:       g.helpHint(),
			}
		}
		return nil, &Error{Kind: KindDisplayHelpOnMissingSubcommand, Message: helpText(c), Command: c.Name()}
	}

	spec := g.specs[c]
	if spec.IsGroup() {
		if len(args) > 0 {
			return nil, &Error{
				Kind:        KindInvalidSubcommand,
				Message:     fmt.Sprintf("unknown subcommand %q for %q", args[0], c.CommandPath()),
				Command:     c.CommandPath(),
				Suggestions: c.SuggestionsFor(args[0]),
				Usage:       c.UsageString(),
			}
		}
		return nil, &Error{Kind: KindDisplayHelpOnMissingSubcommand, Message: helpText(c), Command: c.CommandPath()}
	}

	if err := c.ValidateArgs(args); err != nil {
		if gerr, ok := AsError(err); ok {
			return nil, gerr
		}
		return nil, &Error{Kind: KindUnknownArgument, Message: err.Error(), Command: c.CommandPath(), Usage: c.UsageString()}
	}
	if err := c.ValidateRequiredFlags(); err != nil {
		return nil, &Error{Kind: KindMissingRequiredArgument, Message: err.Error(), Command: c.CommandPath(), Usage: c.UsageString()}
	}
	if err := c.ValidateFlagGroups(); err != nil {
		return nil, &Error{Kind: KindArgumentConflict, Message: err.Error(), Command: c.CommandPath(), Usage: c.UsageString()}
	}

	return g.collect(c, spec, tokens, args)
}

func (g *Grammar) helpFor(topic []string) error {
	target := g.root
	if len(topic) > 0 {
		c, rest, err := g.root.Find(topic)
		if err != nil || c == g.root || len(rest) > 0 {
			return &Error{
				Kind:        KindUnknownCommand,
				Message:     fmt.Sprintf("unknown help topic %q", strings.Join(topic, " ")),
				Command:     g.root.Name(),
				Suggestions: g.root.SuggestionsFor(topic[0]),
			}
		}
		target = c
	}
	return &Error{Kind: KindDisplayHelp, Message: helpText(target), Command: target.CommandPath()}
}

func (g *Grammar) helpHint() string {
	if g.schema.DisableHelpCommand {
		return "For more information, try '--help'."
	}
	return "For more information, try 'help'."
}

func (g *Grammar) collect(c *cobra.Command, spec *CommandSpec, tokens, args []string) (*Matches, error) {
	m := &Matches{
		Path:    commandPath(c),
		Tokens:  slices.Clone(tokens),
		Args:    make(map[string]any, len(spec.Args)),
		Flags:   make(map[string]any, len(spec.Flags)),
		Changed: make(map[string]bool),
	}

	for i, a := range spec.Args {
		if a.Variadic {
			vals, err := parseVariadic(a.Type, args[min(i, len(args)):])
			if err != nil {
				return nil, valueError(c, a.Name, err)
			}
			m.Args[a.Name] = vals
			break
		}
		if i >= len(args) {
			continue
		}
		v, err := parseValue(a.Type, args[i])
		if err != nil {
			return nil, valueError(c, a.Name, err)
		}
		m.Args[a.Name] = v
	}

	for _, f := range spec.Flags {
		v, err := flagValue(c, f)
		if err != nil {
			return nil, valueError(c, f.Name, err)
		}
		m.Flags[f.Name] = v
		if fl := c.Flags().Lookup(f.Name); fl != nil && fl.Changed {
			m.Changed[f.Name] = true
		}
	}
	return m, nil
}

func build(s *Schema, cfg config) *Grammar {
	g := &Grammar{
		schema: s,
		cfg:    cfg,
		specs:  make(map[*cobra.Command]*CommandSpec),
	}

	name := s.Name
	if name == "" {
		name = defaultProgramName
	}
	root := &cobra.Command{
		Use:               name,
		Version:           s.Version,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},

		SuggestionsMinimumDistance: 2,
	}
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	for i := range s.Commands {
		root.AddCommand(g.command(&s.Commands[i]))
	}
	if !s.DisableHelpCommand {
		root.AddCommand(&cobra.Command{
			Use:         "help [command]",
			Short:       "Help about any command",
			Args:        cobra.ArbitraryArgs,
			Run:         func(*cobra.Command, []string) {},
			Annotations: map[string]string{builtinAnnotation: helpCommand},
		})
	}

	root.InitDefaultHelpFlag()
	if s.Version != "" {
		root.InitDefaultVersionFlag()
	}
	g.root = root
	return g
}

func (g *Grammar) command(spec *CommandSpec) *cobra.Command {
	c := &cobra.Command{
		Use:     spec.usage(),
		Aliases: spec.Aliases,
		Short:   spec.Short,
		Long:    spec.Long,
		Hidden:  spec.Hidden,
		Args:    cobra.ArbitraryArgs,

		SuggestionsMinimumDistance: 2,
	}
	g.specs[c] = spec

	if !spec.IsGroup() {
		c.Run = func(*cobra.Command, []string) {}
		c.Args = positional(spec)
	}

	for _, f := range spec.Flags {
		defineFlag(c, f)
		if f.Required {
			_ = c.MarkFlagRequired(f.Name)
		}
	}
	for _, group := range spec.Exclusive {
		c.MarkFlagsMutuallyExclusive(group...)
	}
	for i := range spec.Subcommands {
		c.AddCommand(g.command(&spec.Subcommands[i]))
	}

	c.InitDefaultHelpFlag()
	return c
}

func positional(spec *CommandSpec) cobra.PositionalArgs {
	required, maxArgs := 0, len(spec.Args)
	for _, a := range spec.Args {
		if a.Required {
			required++
		}
		if a.Variadic {
			maxArgs = -1
		}
	}

	return func(c *cobra.Command, args []string) error {
		if len(args) < required {
			missing := spec.Args[len(args)]
			return &Error{
				Kind:    KindMissingRequiredArgument,
				Message: fmt.Sprintf("missing required argument <%s>", missing.Name),
				Command: c.CommandPath(),
				Usage:   c.UsageString(),
			}
		}
		if maxArgs >= 0 && len(args) > maxArgs {
			return &Error{
				Kind:    KindUnknownArgument,
				Message: fmt.Sprintf("unexpected argument %q", args[maxArgs]),
				Command: c.CommandPath(),
				Usage:   c.UsageString(),
			}
		}
		return nil
	}
}

func helpText(c *cobra.Command) string {
	var b strings.Builder
	desc := c.Long
	if desc == "" {
		desc = c.Short
	}
	if desc = strings.TrimSpace(desc); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}
	b.WriteString(c.UsageString())
	return b.String()
}

func commandPath(c *cobra.Command) []string {
	var path []string
	for cur := c; cur.HasParent(); cur = cur.Parent() {
		path = append(path, cur.Name())
	}
	slices.Reverse(path)
	return path
}

func flagTrue(c *cobra.Command, name string) bool {
	f := c.Flags().Lookup(name)
	if f == nil {
		return false
	}
	if _, ok := f.Annotations[cobra.FlagSetByCobraAnnotation]; !ok {
		return false
	}
	return f.Value.String() == "true"
}

func flagError(c *cobra.Command, err error) *Error {
	msg := err.Error()
	kind := KindValueValidation
	switch {
	case strings.HasPrefix(msg, "unknown flag"),
		strings.HasPrefix(msg, "unknown shorthand flag"),
		strings.HasPrefix(msg, "bad flag syntax"):
		kind = KindUnknownArgument
	case strings.HasPrefix(msg, "flag needs an argument"):
		kind = KindInvalidValue
	}
	return &Error{Kind: kind, Message: msg, Command: c.CommandPath(), Usage: c.UsageString()}
}

func valueError(c *cobra.Command, name string, err error) *Error {
	return &Error{
		Kind:    KindValueValidation,
		Message: fmt.Sprintf("invalid value for %q: %v", name, err),
		Command: c.CommandPath(),
		Usage:   c.UsageString(),
	}
}

func copySchema(s *Schema) *Schema {
	out := *s
	out.Commands = copyCommands(s.Commands)
	return &out
}

func copyCommands(cmds []CommandSpec) []CommandSpec {
	if cmds == nil {
		return nil
	}
	out := make([]CommandSpec, len(cmds))
	for i, c := range cmds {
		c.Aliases = slices.Clone(c.Aliases)
		c.Args = slices.Clone(c.Args)
		c.Flags = slices.Clone(c.Flags)
		c.Exclusive = make([][]string, len(c.Exclusive))
		for j, group := range cmds[i].Exclusive {
			c.Exclusive[j] = slices.Clone(group)
		}
		c.Subcommands = copyCommands(c.Subcommands)
		out[i] = c
	}
	return out
}
