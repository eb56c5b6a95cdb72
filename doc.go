/*
Package replet is an embeddable read-eval-print loop for command-driven programs.

A host describes its commands once, as a schema, and receives typed values for
every line the user enters. Parsing, help, completion and error reporting come
from the schema; the host only implements what the commands do.

# Concept

One iteration of the loop is Read, Parse, Decode, Dispatch:

  - A LineSource produces a line, an interrupt, an end of input or an I/O failure.
  - The grammar turns the line into Matches, or a classified grammar error.
  - A Decoder turns Matches into the host's command type.
  - The Handler runs the command with an ExecutionContext for output.

Every failure becomes a *repl.Error of a known Kind, and a Policy decides whether
the loop continues or terminates. Handler panics are recovered and reported like
any other error, so one bad command cannot take down the session.

# Packages

  - pkg/grammar: schemas, matching, help text, completion and decoding.
  - pkg/repl: the loop, errors, policies, prompts and the execution context.
  - pkg/adapters/readline: interactive terminal source with completion and validation colours.
  - pkg/adapters/stdio: plain reader/writer source for pipes.
  - pkg/adapters/redis: remote source over Redis lists.
  - pkg/adapters/jsonl: JSON Lines source for programs driving the loop.
  - pkg/adapters/memory: scripted source for tests.
  - pkg/registry: command functions looked up by command path.
  - pkg/observability: Prometheus metrics fed by loop hooks.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/replet/pkg/adapters/stdio"
		"github.com/aretw0/replet/pkg/grammar"
		"github.com/aretw0/replet/pkg/repl"
	)

	type greet struct {
		Name  string
		Shout bool
	}

	func main() {
		g := grammar.MustCompile(&grammar.Schema{
			Name: "hello",
			Commands: []grammar.CommandSpec{{
				Name:  "greet",
				Args:  []grammar.ArgSpec{{Name: "name", Required: true}},
				Flags: []grammar.FlagSpec{{Name: "shout", Type: grammar.TypeBool}},
			}},
		})

		handler := repl.HandlerFunc[greet](func(ctx *repl.ExecutionContext, cmd greet) error {
			return ctx.Printf("Hello, %s!", cmd.Name)
		})

		r, err := repl.New(stdio.New(os.Stdin, os.Stdout), g, grammar.DecoderFunc[greet](grammar.Bind[greet]), handler)
		if err != nil {
			log.Fatal(err)
		}
		os.Exit(repl.ExitCode(r.Run(context.Background())))
	}
*/
package replet
