/*
Package repl implements the read-evaluate-print loop.

A REPL owns a canonical grammar compiled once from a schema. Every iteration
reads a Signal from a LineSource, matches the line against a private clone of
the grammar, decodes the matches into a typed command and hands it to a Handler
together with an ExecutionContext. Handler panics are recovered and classified.

# Outcomes

Every failed iteration produces exactly one *Error of a closed set of kinds:

  - KindInterrupt, KindEndOfInput, KindIO: signals from the line source.
  - KindGrammar: the line did not match, or asked for help or the version.
  - KindDecode: the line matched but could not be turned into a command.
  - KindPanic: the handler panicked. Payload and Stack are preserved.
  - KindExecution: the handler returned an error.

A Policy decides whether the loop continues. DefaultPolicy terminates on source
signals and panics, and continues after everything else. Help and version
requests always continue.

# Usage

	g := grammar.MustCompile(schema)
	decoder := grammar.NewRouter[Command]().
		Handle("greet", grammar.Into[Command, Greet]())

	r, err := repl.New[Command](source, g, decoder, repl.HandlerFunc[Command](handle),
		repl.WithPrompt(repl.NewStaticPrompt("app", "")),
		repl.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	os.Exit(repl.ExitCode(r.Run(ctx)))
*/
package repl
