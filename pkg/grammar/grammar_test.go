package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return &Schema{
		Name:    "app",
		Version: "1.2.3",
		Commands: []CommandSpec{
			{
				Name:    "greet",
				Aliases: []string{"hi"},
				Short:   "Greet someone",
				Args:    []ArgSpec{{Name: "name", Required: true}},
				Flags: []FlagSpec{
					{Name: "times", Short: "n", Type: TypeInt, Default: "1"},
					{Name: "shout", Type: TypeBool},
				},
			},
			{
				Name: "sum",
				Args: []ArgSpec{{Name: "values", Type: TypeInt, Variadic: true, Required: true}},
			},
			{
				Name:  "remote",
				Short: "Manage remotes",
				Subcommands: []CommandSpec{
					{Name: "add", Args: []ArgSpec{{Name: "name", Required: true}, {Name: "url", Required: true}}},
					{Name: "remove", Args: []ArgSpec{{Name: "name", Required: true}}},
				},
			},
			{
				Name: "deploy",
				Flags: []FlagSpec{
					{Name: "env", Required: true},
					{Name: "dry-run", Type: TypeBool},
					{Name: "force", Type: TypeBool},
					{Name: "timeout", Type: TypeDuration, Default: "30s"},
				},
				Exclusive: [][]string{{"dry-run", "force"}},
			},
		},
	}
}

func mustMatchErr(t *testing.T, g *Grammar, line string) *Error {
	t.Helper()
	_, err := g.Clone().Match(strings.Fields(line))
	require.Error(t, err, "line %q should not match", line)
	gerr, ok := AsError(err)
	require.True(t, ok, "expected *grammar.Error, got %T", err)
	return gerr
}

func TestCompile_RejectsMalformedSchema(t *testing.T) {
	s := &Schema{
		Commands: []CommandSpec{
			{Name: "dup"},
			{Name: "dup"},
			{Name: "help"},
			{
				Name: "bad",
				Args: []ArgSpec{
					{Name: "rest", Variadic: true},
					{Name: "after", Required: true},
				},
				Flags: []FlagSpec{{Name: "count", Type: TypeInt, Default: "many"}},
			},
			{Name: "group", Args: []ArgSpec{{Name: "x"}}, Subcommands: []CommandSpec{{Name: "leaf"}}},
		},
	}

	_, err := Compile(s)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.GreaterOrEqual(t, len(schemaErr.Issues), 5)
	assert.Contains(t, err.Error(), "duplicate command name")
	assert.Contains(t, err.Error(), "reserved")
	assert.Contains(t, err.Error(), "only the last argument may be variadic")
	assert.Contains(t, err.Error(), "invalid default")
	assert.Contains(t, err.Error(), "command groups cannot take positional arguments")
}

func TestCompile_EmptySchema(t *testing.T) {
	_, err := Compile(&Schema{})
	assert.ErrorContains(t, err, "no commands")
}

func TestMatch_PositionalAndFlags(t *testing.T) {
	g, err := Compile(testSchema())
	require.NoError(t, err)

	m, err := g.Clone().Match([]string{"greet", "Ada"})
	require.NoError(t, err)
	assert.Equal(t, []string{"greet"}, m.Path)
	assert.Equal(t, "Ada", m.Args["name"])
	assert.Equal(t, 1, m.Flags["times"])
	assert.Equal(t, false, m.Flags["shout"])
	assert.Empty(t, m.Changed)

	m, err = g.Clone().Match([]string{"hi", "--shout", "Grace", "-n", "3"})
	require.NoError(t, err)
	assert.Equal(t, "greet", m.Command(), "aliases resolve to the canonical name")
	assert.Equal(t, "Grace", m.Args["name"])
	assert.Equal(t, 3, m.Flags["times"])
	assert.Equal(t, true, m.Flags["shout"])
	assert.True(t, m.Changed["shout"])
	assert.True(t, m.Changed["times"])
}

func TestMatch_Variadic(t *testing.T) {
	g := MustCompile(testSchema())

	m, err := g.Clone().Match([]string{"sum", "1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, m.Args["values"])

	gerr := mustMatchErr(t, g, "sum 1 two")
	assert.Equal(t, KindValueValidation, gerr.Kind)
	assert.Contains(t, gerr.Message, "values")
}

func TestMatch_Subcommands(t *testing.T) {
	g := MustCompile(testSchema())

	m, err := g.Clone().Match([]string{"remote", "add", "origin", "git@example.com:x.git"})
	require.NoError(t, err)
	assert.Equal(t, []string{"remote", "add"}, m.Path)
	assert.Equal(t, "origin", m.Args["name"])

	gerr := mustMatchErr(t, g, "remote")
	assert.Equal(t, KindDisplayHelpOnMissingSubcommand, gerr.Kind)
	assert.True(t, gerr.Kind.IsHelp())
	assert.Contains(t, gerr.Message, "Manage remotes")

	gerr = mustMatchErr(t, g, "remote ad")
	assert.Equal(t, KindInvalidSubcommand, gerr.Kind)
	assert.Contains(t, gerr.Suggestions, "add")
}

func TestMatch_ErrorKinds(t *testing.T) {
	g := MustCompile(testSchema())

	tests := []struct {
		line string
		kind Kind
	}{
		{"foo", KindUnknownCommand},
		{"greet", KindMissingRequiredArgument},
		{"greet Ada Bob", KindUnknownArgument},
		{"greet Ada --bogus", KindUnknownArgument},
		{"greet Ada --times", KindInvalidValue},
		{"greet Ada --times many", KindValueValidation},
		{"deploy", KindMissingRequiredArgument},
		{"deploy --env prod --dry-run --force", KindArgumentConflict},
		{"deploy --env prod --timeout soon", KindValueValidation},
		{"greet --help", KindDisplayHelp},
		{"help greet", KindDisplayHelp},
		{"help", KindDisplayHelp},
		{"help nope", KindUnknownCommand},
		{"--version", KindDisplayVersion},
		{"--help", KindDisplayHelp},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			gerr := mustMatchErr(t, g, tt.line)
			assert.Equal(t, tt.kind, gerr.Kind, "message: %s", gerr.Message)
		})
	}
}

func TestMatch_UnknownCommandSuggestions(t *testing.T) {
	g := MustCompile(testSchema())

	gerr := mustMatchErr(t, g, "gret Ada")
	assert.Equal(t, KindUnknownCommand, gerr.Kind)
	assert.Contains(t, gerr.Suggestions, "greet")

	rendered := gerr.Render()
	assert.True(t, strings.HasPrefix(rendered, `error: unknown command "gret"`), rendered)
	assert.Contains(t, rendered, "Did you mean this?")
	assert.Contains(t, rendered, "try 'help'")
}

func TestMatch_HelpAndVersionText(t *testing.T) {
	g := MustCompile(testSchema())

	gerr := mustMatchErr(t, g, "greet -h")
	assert.Contains(t, gerr.Render(), "Greet someone")
	assert.Contains(t, gerr.Render(), "--times")
	assert.NotContains(t, gerr.Render(), "error:")

	gerr = mustMatchErr(t, g, "--version")
	assert.Equal(t, "app version 1.2.3", gerr.Render())
}

func TestMatch_StableOnSameSnapshotState(t *testing.T) {
	g := MustCompile(testSchema())

	first := mustMatchErr(t, g, "greet Ada Bob")
	second := mustMatchErr(t, g, "greet Ada Bob")
	assert.Equal(t, first.Kind, second.Kind)
	assert.Equal(t, first.Message, second.Message)
}

func TestMatch_ReusedGrammarStartsClean(t *testing.T) {
	g := MustCompile(testSchema()).Clone()

	m, err := g.Match([]string{"greet", "--shout", "-n", "3", "Ada"})
	require.NoError(t, err)
	assert.Equal(t, true, m.Flags["shout"])

	m, err = g.Match([]string{"greet", "Bob"})
	require.NoError(t, err)
	assert.Equal(t, false, m.Flags["shout"])
	assert.Equal(t, 1, m.Flags["times"])
	assert.Empty(t, m.Changed)

	_, err = g.Match([]string{"greet", "--help"})
	gerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindDisplayHelp, gerr.Kind)

	m, err = g.Match([]string{"greet", "Ada"})
	require.NoError(t, err, "a help request must not stick to the next line")
	assert.Equal(t, "Ada", m.Args["name"])

	_, err = g.Match([]string{"--version"})
	require.Error(t, err)
	_, err = g.Match([]string{"greet", "Cy"})
	assert.NoError(t, err)
}

func TestMatch_ReusedGrammarResetsSliceFlags(t *testing.T) {
	g := MustCompile(&Schema{
		Name: "app",
		Commands: []CommandSpec{{
			Name:  "tag",
			Flags: []FlagSpec{{Name: "label", Type: TypeStrings, Default: "base"}},
		}},
	}).Clone()

	m, err := g.Match([]string{"tag", "--label", "a", "--label", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, m.Flags["label"])

	m, err = g.Match([]string{"tag"})
	require.NoError(t, err)
	assert.Equal(t, []string{"base"}, m.Flags["label"])

	m, err = g.Match([]string{"tag", "--label", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, m.Flags["label"])
}

func TestClone_Isolation(t *testing.T) {
	g := MustCompile(testSchema())

	a := g.Clone()
	_, err := a.Match([]string{"greet", "Ada", "--shout", "-n", "5"})
	require.NoError(t, err)

	b := g.Clone()
	m, err := b.Match([]string{"greet", "Bob"})
	require.NoError(t, err)
	assert.Equal(t, false, m.Flags["shout"], "flag state must not leak between clones")
	assert.Equal(t, 1, m.Flags["times"])

	a.Command("greet").Long = "Patched help"
	help, err := g.Help("greet")
	require.NoError(t, err)
	assert.NotContains(t, help, "Patched help")

	help, err = a.Help("greet")
	require.NoError(t, err)
	assert.Contains(t, help, "Patched help")
}

func TestClone_IdempotentMatches(t *testing.T) {
	g := MustCompile(testSchema())

	m1, err := g.Clone().Match([]string{"greet", "Ada", "--shout"})
	require.NoError(t, err)
	m2, err := g.Clone().Match([]string{"greet", "Ada", "--shout"})
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
}

func TestCompile_CopiesSchema(t *testing.T) {
	s := testSchema()
	g := MustCompile(s)

	s.Commands[0].Name = "renamed"
	_, err := g.Clone().Match([]string{"greet", "Ada"})
	assert.NoError(t, err)
}

func TestGrammar_Command(t *testing.T) {
	g := MustCompile(testSchema())

	assert.Equal(t, g.Root(), g.Command())
	assert.Equal(t, "add", g.Command("remote", "add").Name())
	assert.Nil(t, g.Command("nope"))

	_, err := g.Help("nope")
	assert.Error(t, err)
}

func TestGrammar_Error(t *testing.T) {
	g := MustCompile(testSchema())

	gerr := g.Error(KindCustom, "bad %s", "input")
	assert.Equal(t, "bad input", gerr.Error())
	assert.Equal(t, "error: bad input", gerr.Render())
	assert.Equal(t, "app", gerr.Command)
}

func TestDisableHelpCommand(t *testing.T) {
	s := testSchema()
	s.DisableHelpCommand = true
	s.Commands = append(s.Commands, CommandSpec{Name: "help"})
	g, err := Compile(s)
	require.NoError(t, err)

	m, err := g.Clone().Match([]string{"help"})
	require.NoError(t, err)
	assert.Equal(t, "help", m.Command())
}
