/*
Package readline provides an interactive line source with line editing,
tab completion and live validation.

	g := grammar.MustCompile(schema)
	src, err := readline.New(
		readline.WithCompleter(readline.NewCompleter(g)),
		readline.WithPainter(readline.NewValidatingPainter(g)),
	)
	if err != nil {
		return err
	}
	defer src.Close()
*/
package readline
