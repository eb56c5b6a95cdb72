package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/replet/internal/presentation/graph"
	"github.com/aretw0/replet/pkg/grammar"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		schema   *grammar.Schema
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name:   "Program Node Shape",
			schema: &grammar.Schema{Name: "git"},
			contains: []string{
				"graph TD",
				`git(("git"))`,
			},
		},
		{
			name: "Group And Leaf Shapes",
			schema: &grammar.Schema{Name: "git", Commands: []grammar.CommandSpec{
				{Name: "status"},
				{Name: "remote", Subcommands: []grammar.CommandSpec{
					{Name: "add", Args: []grammar.ArgSpec{{Name: "name", Required: true}, {Name: "url"}}},
				}},
			}},
			contains: []string{
				`cmd_status["status"]`,
				`cmd_remote[["remote"]]`,
				`cmd_remote_add[/"add &lt;name&gt; [url]"/]`,
				"git --> cmd_remote",
				"cmd_remote --> cmd_remote_add",
			},
		},
		{
			name: "Aliases And Hidden Commands",
			schema: &grammar.Schema{Name: "app", Commands: []grammar.CommandSpec{
				{Name: "exit", Aliases: []string{"quit", "q"}},
				{Name: "debug-dump", Hidden: true},
			}},
			contains: []string{
				`app -- "quit, q" --> cmd_exit`,
				"app -.-> cmd_debug_dump",
			},
		},
		{
			name: "Variadic Arguments",
			schema: &grammar.Schema{Name: "app", Commands: []grammar.CommandSpec{
				{Name: "echo", Args: []grammar.ArgSpec{{Name: "words", Variadic: true}}},
			}},
			contains: []string{
				`cmd_echo[/"echo [words...]"/]`,
			},
		},
		{
			name: "Overlay",
			schema: &grammar.Schema{Name: "app", Commands: []grammar.CommandSpec{
				{Name: "greet"}, {Name: "echo"},
			}},
			overlay: &graph.Overlay{Visited: []string{"greet", "greet"}, Current: "echo"},
			contains: []string{
				"classDef visited",
				"class cmd_greet visited;",
				"class cmd_echo current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.schema, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			if strings.Count(got, "class cmd_greet visited;") > 1 {
				t.Errorf("visited commands must be deduplicated:\n%v", got)
			}
		})
	}
}
