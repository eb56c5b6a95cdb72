/*
Package grammar compiles a declarative command Schema into a runtime matcher.

It is the grammar engine used by package repl. A Schema lists commands,
subcommands, positional arguments and flags; Compile validates it and builds a
cobra command tree. The tree is stateful while a line is being parsed, so the
compiled Grammar is treated as an immutable template and each line is matched
against a Clone.

# Pipeline

  - Tokenize: sanitize the line and split it on whitespace.
  - Match: resolve the command path, parse flags, validate positional
    arguments, required flags and exclusive groups. Failures are *Error values
    carrying a Kind and a rendered message. Help and version requests are
    reported as errors of a help kind.
  - Decode: a Decoder turns Matches into the host's typed command. Bind and
    Into use mapstructure; Router selects a decoder by command path.

# Usage

	g, err := grammar.Compile(&grammar.Schema{
		Commands: []grammar.CommandSpec{
			{Name: "greet", Args: []grammar.ArgSpec{{Name: "name", Required: true}}},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	m, err := g.Clone().Match([]string{"greet", "Ada"})
*/
package grammar
