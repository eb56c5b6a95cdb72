package grammar

import (
	"slices"
	"strings"
)

// Complete returns completion candidates for the word under the cursor.
// Candidates are full words; callers trim the already-typed prefix as needed.
// Only the text before pos is considered.
func (s *Schema) Complete(line string, pos int) []string {
	if pos < 0 || pos > len(line) {
		pos = len(line)
	}
	head := line[:pos]
	words := strings.Fields(head)

	prefix := ""
	if len(words) > 0 && !strings.HasSuffix(head, " ") && !strings.HasSuffix(head, "\t") {
		prefix = words[len(words)-1]
		words = words[:len(words)-1]
	}

	cmds := s.Commands
	var current *CommandSpec
	for _, w := range words {
		if strings.HasPrefix(w, "-") {
			continue
		}
		next := findSpec(cmds, w)
		if next == nil {
			if current == nil && w == helpCommand && !s.DisableHelpCommand {
				// "help <topic>" completes like the top level.
				continue
			}
			break
		}
		current = next
		cmds = next.Subcommands
	}

	var candidates []string
	if strings.HasPrefix(prefix, "-") {
		if current == nil {
			return nil
		}
		for _, f := range current.Flags {
			candidates = append(candidates, "--"+f.Name)
		}
		candidates = append(candidates, "--help")
	} else {
		for _, c := range cmds {
			if c.Hidden {
				continue
			}
			candidates = append(candidates, c.Name)
			candidates = append(candidates, c.Aliases...)
		}
		if current == nil && !s.DisableHelpCommand {
			candidates = append(candidates, helpCommand)
		}
	}

	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func findSpec(cmds []CommandSpec, name string) *CommandSpec {
	for i := range cmds {
		if cmds[i].Name == name || slices.Contains(cmds[i].Aliases, name) {
			return &cmds[i]
		}
	}
	return nil
}
