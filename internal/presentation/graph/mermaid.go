package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/replet/pkg/grammar"
)

// Overlay marks commands to highlight on the graph.
type Overlay struct {
	// Visited holds space-separated command paths, e.g. "remote add".
	Visited []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of a command schema.
// It applies semantic styling:
// - Program: ((Circle))
// - Group: [[Subroutine]]
// - Command with positional arguments: [/Parallelogram/]
// - Default: [Rectangle]
// Hidden commands hang off a dotted edge. Aliases label the edge.
func GenerateMermaid(s *grammar.Schema, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	root := s.Name
	if root == "" {
		root = "root"
	}
	rootID := sanitizeMermaidID(root)
	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", rootID, escapeLabel(root)))
	writeCommands(&sb, rootID, nil, s.Commands)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, path := range overlay.Visited {
			id := pathID(strings.Fields(path))
			if !seen[id] && id != "" {
				seen[id] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", id))
			}
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", pathID(strings.Fields(overlay.Current))))
		}
	}

	return sb.String()
}

func writeCommands(sb *strings.Builder, parentID string, parent []string, cmds []grammar.CommandSpec) {
	for _, c := range cmds {
		path := append(append([]string{}, parent...), c.Name)
		id := pathID(path)

		opener, closer := "[", "]"
		switch {
		case c.IsGroup():
			opener, closer = "[[", "]]"
		case len(c.Args) > 0:
			opener, closer = "[/", "/]"
		}

		label := c.Name
		for _, a := range c.Args {
			label += " " + argLabel(a)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, escapeLabel(label), closer))

		arrow := "-->"
		if c.Hidden {
			arrow = "-.->"
		}
		if len(c.Aliases) > 0 {
			aliases := escapeLabel(strings.Join(c.Aliases, ", "))
			arrow = fmt.Sprintf("-- \"%s\" -->", aliases)
			if c.Hidden {
				arrow = fmt.Sprintf("-. \"%s\" .->", aliases)
			}
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", parentID, arrow, id))

		writeCommands(sb, id, path, c.Subcommands)
	}
}

func argLabel(a grammar.ArgSpec) string {
	name := a.Name
	if a.Variadic {
		name += "..."
	}
	if a.Required {
		return "&lt;" + name + "&gt;"
	}
	return "[" + name + "]"
}

// pathID is prefixed so a command can never collide with the program node.
func pathID(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return "cmd_" + sanitizeMermaidID(strings.Join(path, "_"))
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
