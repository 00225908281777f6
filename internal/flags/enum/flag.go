// Package enum provides a pflag.Value restricted to a fixed set of options.
// The first option is the default.
package enum

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// Type is the type name shown in the flag usage.
const Type = "enum"

// Flag holds one of a fixed set of options.
type Flag struct {
	options []string
	value   string
}

// New creates a flag defaulting to the first option. It panics without
// options.
func New(options ...string) *Flag {
	if len(options) == 0 {
		panic("enum flag needs at least one option")
	}

	return &Flag{options: options, value: options[0]}
}

func (f *Flag) String() string { return f.value }

func (f *Flag) Set(s string) error {
	if !slices.Contains(f.options, s) {
		return fmt.Errorf("invalid value %q, must be one of: %s", s, strings.Join(f.options, ", "))
	}

	f.value = s

	return nil
}

func (f *Flag) Type() string { return Type }

// Options returns the allowed values.
func (f *Flag) Options() []string { return slices.Clone(f.options) }

// Var adds an enum flag to the flag set.
func Var(fs *pflag.FlagSet, name string, options []string, usage string) {
	VarP(fs, name, "", options, usage)
}

// VarP is like Var but accepts a shorthand letter.
func VarP(fs *pflag.FlagSet, name, shorthand string, options []string, usage string) {
	fs.VarP(New(options...), name, shorthand, fmt.Sprintf("%s (must be one of %v)", usage, options))
}

// Get returns the value of an enum flag.
func Get(fs *pflag.FlagSet, name string) (string, error) {
	flag := fs.Lookup(name)
	if flag == nil {
		return "", fmt.Errorf("flag %q not found", name)
	}

	value, ok := flag.Value.(*Flag)
	if !ok {
		return "", fmt.Errorf("flag %q is a %s, not an enum", name, flag.Value.Type())
	}

	return value.String(), nil
}
