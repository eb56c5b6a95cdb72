package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a grammar failure.
type Kind int

const (
	// KindUnknownCommand means the first token names no command.
	KindUnknownCommand Kind = iota
	// KindInvalidSubcommand means a group received a token that names none of its subcommands.
	KindInvalidSubcommand
	// KindUnknownArgument covers unknown flags and surplus positional arguments.
	KindUnknownArgument
	// KindInvalidValue means a flag was given without its value.
	KindInvalidValue
	// KindValueValidation means a value could not be parsed as its declared type.
	KindValueValidation
	// KindMissingRequiredArgument covers missing positional arguments and required flags.
	KindMissingRequiredArgument
	// KindArgumentConflict means flags of an exclusive group were combined.
	KindArgumentConflict
	// KindInvalidUTF8 means the line was not valid UTF-8.
	KindInvalidUTF8
	// KindDisplayHelp is a request for help text (--help or the help command).
	KindDisplayHelp
	// KindDisplayHelpOnMissingSubcommand is emitted when a group is invoked without a subcommand.
	KindDisplayHelpOnMissingSubcommand
	// KindDisplayVersion is a request for the version string.
	KindDisplayVersion
	// KindCustom is used for errors raised by handlers through Grammar.Error.
	KindCustom
)

var kindNames = map[Kind]string{
	KindUnknownCommand:                 "unknown_command",
	KindInvalidSubcommand:              "invalid_subcommand",
	KindUnknownArgument:                "unknown_argument",
	KindInvalidValue:                   "invalid_value",
	KindValueValidation:                "value_validation",
	KindMissingRequiredArgument:        "missing_required_argument",
	KindArgumentConflict:               "argument_conflict",
	KindInvalidUTF8:                    "invalid_utf8",
	KindDisplayHelp:                    "display_help",
	KindDisplayHelpOnMissingSubcommand: "display_help_on_missing_subcommand",
	KindDisplayVersion:                 "display_version",
	KindCustom:                         "custom",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsHelp reports whether the kind represents a handled help or version request
// rather than a malformed line.
func (k Kind) IsHelp() bool {
	return k == KindDisplayHelp || k == KindDisplayHelpOnMissingSubcommand || k == KindDisplayVersion
}

// Error is a structured grammar failure produced by Match.
type Error struct {
	Kind Kind
	// Message is the one-line description, or the full text for help kinds.
	Message string
	// Command is the path of the command the error relates to, if any.
	Command     string
	Suggestions []string
	// Usage is the usage text of the command the error relates to.
	Usage string
}

func (e *Error) Error() string {
	return e.Message
}

// Render returns the display string for the error.
// Help and version kinds render their text unchanged.
func (e *Error) Render() string {
	if e.Kind.IsHelp() {
		return strings.TrimRight(e.Message, "\n")
	}

	var b strings.Builder
	b.WriteString("error: ")
	b.WriteString(e.Message)
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nDid you mean this?\n")
		for _, s := range e.Suggestions {
			b.WriteString("\t" + s + "\n")
		}
	}
	if e.Usage != "" {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(e.Usage, "\n"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}

// ErrNoRoute is returned by Router when no decoder is registered for a command path.
var ErrNoRoute = errors.New("no decoder registered for command")

// DecodeError is returned when matched values cannot be decoded into a typed command.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode: %v", e.Err)
	}
	return fmt.Sprintf("decode %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
