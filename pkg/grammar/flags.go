package grammar

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// defineFlag registers f on c. Defaults were checked by Schema.Validate.
func defineFlag(c *cobra.Command, f FlagSpec) {
	fs := c.Flags()
	def, _ := parseValue(f.Type, f.Default)

	switch f.Type {
	case TypeInt:
		v, _ := def.(int)
		fs.IntP(f.Name, f.Short, v, f.Help)
	case TypeFloat:
		v, _ := def.(float64)
		fs.Float64P(f.Name, f.Short, v, f.Help)
	case TypeBool:
		v, _ := def.(bool)
		fs.BoolP(f.Name, f.Short, v, f.Help)
	case TypeDuration:
		v, _ := def.(time.Duration)
		fs.DurationP(f.Name, f.Short, v, f.Help)
	case TypeStrings:
		v, _ := def.([]string)
		fs.StringSliceP(f.Name, f.Short, v, f.Help)
	default:
		fs.StringP(f.Name, f.Short, f.Default, f.Help)
	}
}

// resetFlags restores every flag of c to its default. Parsed values stick to
// the flag set, so a grammar matched twice would otherwise carry the flags of
// one line into the next.
func (g *Grammar) resetFlags(c *cobra.Command) error {
	var err error
	c.Flags().VisitAll(func(fl *pflag.Flag) {
		fl.Changed = false
		if _, ok := fl.Value.(pflag.SliceValue); ok {
			// Slice values append once set and cannot be rewound, so swap in a fresh one.
			scratch := pflag.NewFlagSet(fl.Name, pflag.ContinueOnError)
			scratch.StringSlice(fl.Name, g.sliceDefault(c, fl.Name), "")
			fl.Value = scratch.Lookup(fl.Name).Value
			return
		}
		if serr := fl.Value.Set(fl.DefValue); serr != nil && err == nil {
			err = fmt.Errorf("failed to reset flag --%s: %w", fl.Name, serr)
		}
	})
	return err
}

func (g *Grammar) sliceDefault(c *cobra.Command, name string) []string {
	spec := g.specs[c]
	if spec == nil {
		return nil
	}
	for _, f := range spec.Flags {
		if f.Name == name {
			def, _ := parseValue(f.Type, f.Default)
			v, _ := def.([]string)
			return v
		}
	}
	return nil
}

func flagValue(c *cobra.Command, f FlagSpec) (any, error) {
	fs := c.Flags()
	switch f.Type {
	case TypeInt:
		return fs.GetInt(f.Name)
	case TypeFloat:
		return fs.GetFloat64(f.Name)
	case TypeBool:
		return fs.GetBool(f.Name)
	case TypeDuration:
		return fs.GetDuration(f.Name)
	case TypeStrings:
		return fs.GetStringSlice(f.Name)
	default:
		return fs.GetString(f.Name)
	}
}

// parseVariadic converts the remaining tokens into a typed slice.
func parseVariadic(t ValueType, raw []string) (any, error) {
	switch t {
	case TypeInt:
		return parseEach[int](t, raw)
	case TypeFloat:
		return parseEach[float64](t, raw)
	case TypeBool:
		return parseEach[bool](t, raw)
	case TypeDuration:
		return parseEach[time.Duration](t, raw)
	default:
		return parseEach[string](TypeString, raw)
	}
}

func parseEach[T any](t ValueType, raw []string) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		v, err := parseValue(t, r)
		if err != nil {
			return nil, err
		}
		tv, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected %T for %s", v, t)
		}
		out = append(out, tv)
	}
	return out, nil
}
