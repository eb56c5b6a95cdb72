package readline

import (
	"strings"
	"unicode"

	"github.com/aretw0/replet/pkg/grammar"
)

// Completer completes command names, subcommands and flags from a schema.
type Completer struct {
	schema *grammar.Schema
}

// NewCompleter returns a completer over the schema of g.
func NewCompleter(g *grammar.Grammar) *Completer {
	return &Completer{schema: g.Schema()}
}

// Do implements readline.AutoCompleter. It returns the missing suffix of every
// candidate and the length of the prefix already typed.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	if pos > len(line) {
		pos = len(line)
	}
	head := string(line[:pos])

	prefix := ""
	if head != "" && !unicode.IsSpace(line[pos-1]) {
		fields := strings.Fields(head)
		prefix = fields[len(fields)-1]
	}

	candidates := c.schema.Complete(head, len(head))
	out := make([][]rune, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, []rune(strings.TrimPrefix(cand, prefix)+" "))
	}
	return out, len([]rune(prefix))
}
