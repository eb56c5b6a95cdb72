package grammar

import (
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Matches is the raw result of a successful Match.
type Matches struct {
	// Path is the canonical command path, e.g. ["remote", "add"].
	Path   []string
	Tokens []string
	// Args holds positional values by argument name. Optional arguments that
	// were not given are absent.
	Args map[string]any
	// Flags holds every declared flag, defaults included.
	Flags map[string]any
	// Changed records the flags explicitly set on the line.
	Changed map[string]bool
}

// Command returns the command path joined by spaces.
func (m *Matches) Command() string {
	return strings.Join(m.Path, " ")
}

// Values merges flags and positional arguments into one map.
// Positional arguments win on a name clash.
func (m *Matches) Values() map[string]any {
	out := make(map[string]any, len(m.Args)+len(m.Flags))
	maps.Copy(out, m.Flags)
	maps.Copy(out, m.Args)
	return out
}

// Get returns a single value by name.
func (m *Matches) Get(name string) (any, bool) {
	if v, ok := m.Args[name]; ok {
		return v, true
	}
	v, ok := m.Flags[name]
	return v, ok
}

// Decoder turns Matches into a typed command.
type Decoder[C any] interface {
	Decode(m *Matches) (C, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc[C any] func(m *Matches) (C, error)

func (f DecoderFunc[C]) Decode(m *Matches) (C, error) {
	return f(m)
}

// Bind decodes the matched values into a new T using mapstructure.
// Field names are matched case-insensitively against argument and flag names;
// use `mapstructure:"dry-run"` tags for names that are not valid identifiers.
func Bind[T any](m *Matches) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: false,
		ErrorUnused:      false,
	})
	if err != nil {
		return out, &DecodeError{Path: m.Command(), Err: err}
	}
	if err := dec.Decode(m.Values()); err != nil {
		return out, &DecodeError{Path: m.Command(), Err: err}
	}
	return out, nil
}

// Into returns a decoder that binds matches into T and converts the result to C.
// T must implement (or be assignable to) C.
func Into[C any, T any]() DecoderFunc[C] {
	return func(m *Matches) (C, error) {
		var zero C
		t, err := Bind[T](m)
		if err != nil {
			return zero, err
		}
		c, ok := any(t).(C)
		if !ok {
			return zero, &DecodeError{Path: m.Command(), Err: fmt.Errorf("%T does not implement %s", t, reflect.TypeFor[C]())}
		}
		return c, nil
	}
}

// Router dispatches decoding by command path.
type Router[C any] struct {
	routes map[string]DecoderFunc[C]
}

// NewRouter creates an empty Router.
func NewRouter[C any]() *Router[C] {
	return &Router[C]{routes: make(map[string]DecoderFunc[C])}
}

// Handle registers a decoder for the space-separated command path.
func (r *Router[C]) Handle(path string, d DecoderFunc[C]) *Router[C] {
	r.routes[strings.Join(strings.Fields(path), " ")] = d
	return r
}

// Decode finds the decoder for m's command path.
func (r *Router[C]) Decode(m *Matches) (C, error) {
	d, ok := r.routes[m.Command()]
	if !ok {
		var zero C
		return zero, &DecodeError{Path: m.Command(), Err: ErrNoRoute}
	}
	c, err := d(m)
	if err != nil {
		if _, ok := err.(*DecodeError); !ok {
			err = &DecodeError{Path: m.Command(), Err: err}
		}
		return c, err
	}
	return c, nil
}

// Raw returns a decoder that passes the matches through unchanged.
func Raw() DecoderFunc[*Matches] {
	return func(m *Matches) (*Matches, error) {
		return m, nil
	}
}
