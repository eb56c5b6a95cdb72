package grammar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ValueType names the type a positional argument or flag is parsed as.
type ValueType string

const (
	TypeString   ValueType = "string"
	TypeInt      ValueType = "int"
	TypeFloat    ValueType = "float"
	TypeBool     ValueType = "bool"
	TypeDuration ValueType = "duration"
	TypeStrings  ValueType = "strings"
)

// Schema is the static description of a command set.
// It is owned by the host application and never mutated by the grammar engine.
type Schema struct {
	// Name is the program name shown in usage lines.
	Name     string        `yaml:"name" json:"name"`
	Version  string        `yaml:"version" json:"version"`
	Commands []CommandSpec `yaml:"commands" json:"commands"`
	// DisableHelpCommand removes the builtin "help [command]" entry.
	DisableHelpCommand bool `yaml:"disable_help_command" json:"disable_help_command"`
}

// CommandSpec describes one command or command group.
// A spec with Subcommands is a group and cannot take positional arguments.
type CommandSpec struct {
	Name        string        `yaml:"name" json:"name"`
	Aliases     []string      `yaml:"aliases" json:"aliases"`
	Short       string        `yaml:"short" json:"short"`
	Long        string        `yaml:"long" json:"long"`
	Hidden      bool          `yaml:"hidden" json:"hidden"`
	Args        []ArgSpec     `yaml:"args" json:"args"`
	Flags       []FlagSpec    `yaml:"flags" json:"flags"`
	Exclusive   [][]string    `yaml:"exclusive" json:"exclusive"`
	Subcommands []CommandSpec `yaml:"subcommands" json:"subcommands"`
}

// ArgSpec describes a positional argument.
type ArgSpec struct {
	Name     string    `yaml:"name" json:"name"`
	Type     ValueType `yaml:"type" json:"type"`
	Required bool      `yaml:"required" json:"required"`
	// Variadic consumes every remaining token. Only the last argument may be variadic.
	Variadic bool   `yaml:"variadic" json:"variadic"`
	Help     string `yaml:"help" json:"help"`
}

// FlagSpec describes a named flag.
type FlagSpec struct {
	Name     string    `yaml:"name" json:"name"`
	Short    string    `yaml:"short" json:"short"`
	Type     ValueType `yaml:"type" json:"type"`
	Default  string    `yaml:"default" json:"default"`
	Required bool      `yaml:"required" json:"required"`
	Help     string    `yaml:"help" json:"help"`
}

// IsGroup reports whether the command only dispatches to subcommands.
func (c CommandSpec) IsGroup() bool {
	return len(c.Subcommands) > 0
}

func (c CommandSpec) usage() string {
	var b strings.Builder
	b.WriteString(c.Name)
	if c.IsGroup() {
		b.WriteString(" [command]")
		return b.String()
	}
	for _, a := range c.Args {
		b.WriteByte(' ')
		name := a.Name
		if a.Variadic {
			name += "..."
		}
		if a.Required {
			b.WriteString("<" + name + ">")
		} else {
			b.WriteString("[" + name + "]")
		}
	}
	return b.String()
}

// LoadSchema reads a schema file. Files ending in .json are decoded as JSON, anything else as YAML.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		var s Schema
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return &s, nil
	}
	return ParseSchema(data)
}

// ParseSchema decodes a YAML schema document.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return &s, nil
}

// SchemaIssue is a single problem found while validating a schema.
type SchemaIssue struct {
	Path   string // Command path, e.g. "remote add"
	Reason string
}

func (i SchemaIssue) Error() string {
	if i.Path == "" {
		return i.Reason
	}
	return fmt.Sprintf("command %q: %s", i.Path, i.Reason)
}

// SchemaError aggregates every issue found in a malformed schema.
type SchemaError struct {
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid schema: " + e.Issues[0].Error()
	}
	msg := fmt.Sprintf("invalid schema: %d issues:\n", len(e.Issues))
	for i, issue := range e.Issues {
		msg += fmt.Sprintf("  %d. %s\n", i+1, issue.Error())
	}
	return msg
}

// Validate checks the schema for structural problems. It returns a *SchemaError or nil.
func (s *Schema) Validate() error {
	v := &validator{}
	if s == nil {
		v.add("", "schema is nil")
		return v.err()
	}
	if len(s.Commands) == 0 {
		v.add("", "schema defines no commands")
	}
	v.commands("", s.Commands, !s.DisableHelpCommand)
	return v.err()
}

type validator struct {
	issues []SchemaIssue
}

func (v *validator) add(path, format string, args ...any) {
	v.issues = append(v.issues, SchemaIssue{Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (v *validator) err() error {
	if len(v.issues) == 0 {
		return nil
	}
	return &SchemaError{Issues: v.issues}
}

func (v *validator) commands(parent string, cmds []CommandSpec, reserveHelp bool) {
	seen := map[string]bool{}
	for _, c := range cmds {
		path := strings.TrimSpace(parent + " " + c.Name)
		if !validName(c.Name) {
			v.add(path, "invalid command name %q", c.Name)
		}
		if reserveHelp && c.Name == helpCommand {
			v.add(path, "%q is reserved for the builtin help command", helpCommand)
		}
		for _, n := range append([]string{c.Name}, c.Aliases...) {
			if seen[n] {
				v.add(path, "duplicate command name or alias %q", n)
			}
			seen[n] = true
		}
		if c.IsGroup() && len(c.Args) > 0 {
			v.add(path, "command groups cannot take positional arguments")
		}
		v.args(path, c.Args)
		v.flags(path, c)
		v.commands(path, c.Subcommands, false)
	}
}

func (v *validator) args(path string, args []ArgSpec) {
	seen := map[string]bool{}
	optional := false
	for i, a := range args {
		if !validName(a.Name) {
			v.add(path, "invalid argument name %q", a.Name)
		}
		if seen[a.Name] {
			v.add(path, "duplicate argument %q", a.Name)
		}
		seen[a.Name] = true
		if !validType(a.Type) {
			v.add(path, "argument %q has unknown type %q", a.Name, a.Type)
		}
		if a.Type == TypeStrings {
			v.add(path, "argument %q: use variadic instead of type %q", a.Name, TypeStrings)
		}
		if a.Variadic && i != len(args)-1 {
			v.add(path, "only the last argument may be variadic (%q)", a.Name)
		}
		if a.Required && optional {
			v.add(path, "required argument %q follows an optional one", a.Name)
		}
		if !a.Required {
			optional = true
		}
	}
}

func (v *validator) flags(path string, c CommandSpec) {
	names := map[string]bool{}
	shorts := map[string]bool{}
	for _, f := range c.Flags {
		if !validName(f.Name) {
			v.add(path, "invalid flag name %q", f.Name)
		}
		if names[f.Name] {
			v.add(path, "duplicate flag --%s", f.Name)
		}
		names[f.Name] = true
		if f.Short != "" {
			if len(f.Short) != 1 {
				v.add(path, "flag --%s: shorthand %q must be a single character", f.Name, f.Short)
			}
			if shorts[f.Short] {
				v.add(path, "duplicate shorthand -%s", f.Short)
			}
			shorts[f.Short] = true
		}
		if !validType(f.Type) {
			v.add(path, "flag --%s has unknown type %q", f.Name, f.Type)
			continue
		}
		if f.Default != "" {
			if _, err := parseValue(f.Type, f.Default); err != nil {
				v.add(path, "flag --%s: invalid default %q: %v", f.Name, f.Default, err)
			}
		}
	}
	for _, group := range c.Exclusive {
		if len(group) < 2 {
			v.add(path, "exclusive group %v needs at least two flags", group)
		}
		for _, name := range group {
			if !names[name] {
				v.add(path, "exclusive group references unknown flag --%s", name)
			}
		}
	}
}

func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, "-") {
		return false
	}
	return !strings.ContainsAny(name, " \t\r\n")
}

func validType(t ValueType) bool {
	switch t {
	case "", TypeString, TypeInt, TypeFloat, TypeBool, TypeDuration, TypeStrings:
		return true
	}
	return false
}

// parseValue converts a raw token into the Go value for t.
func parseValue(t ValueType, raw string) (any, error) {
	switch t {
	case "", TypeString:
		return raw, nil
	case TypeInt:
		return strconv.Atoi(raw)
	case TypeFloat:
		return strconv.ParseFloat(raw, 64)
	case TypeBool:
		return strconv.ParseBool(raw)
	case TypeDuration:
		return time.ParseDuration(raw)
	case TypeStrings:
		if raw == "" {
			return []string{}, nil
		}
		return strings.Split(raw, ","), nil
	}
	return nil, fmt.Errorf("unknown type %q", t)
}
