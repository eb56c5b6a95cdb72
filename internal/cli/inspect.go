package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/replet/pkg/grammar"
	"github.com/aretw0/replet/pkg/repl"
	"gopkg.in/yaml.v3"
)

// inspection is what a user schema run prints for every matched line.
type inspection struct {
	Command string         `yaml:"command"`
	Args    map[string]any `yaml:"args,omitempty"`
	Flags   map[string]any `yaml:"flags,omitempty"`
	Changed []string       `yaml:"changed,omitempty"`
}

// handleInspect prints the matches as YAML, so a schema can be tried out
// before any handler exists for it.
func handleInspect(ctx *repl.ExecutionContext, m *grammar.Matches) error {
	out := inspection{
		Command: m.Command(),
		Args:    m.Args,
		Flags:   m.Flags,
	}
	for name, changed := range m.Changed {
		if changed {
			out.Changed = append(out.Changed, name)
		}
	}
	// yaml.v3 sorts map keys; the slice needs the same treatment.
	slices.Sort(out.Changed)

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode matches: %w", err)
	}
	return ctx.Print(strings.TrimRight(string(data), "\n"))
}
