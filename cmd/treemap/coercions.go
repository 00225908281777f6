package main

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"tree-mapper/options"
	"tree-mapper/primitive"
)

const withoutFlag = "without"

var categoryNames = map[string]options.CategoryEnum{
	"safe-number":   options.CategorySafeNumber,
	"unsafe-number": options.CategoryUnsafeNumber,
	"text-number":   options.CategoryTextNumber,
	"numeric-bool":  options.CategoryNumericBool,
	"textual-bool":  options.CategoryTextualBool,
	"datetime":      options.CategoryDatetime,
	"timestamp":     options.CategoryTimestamp,
	"duration":      options.CategoryDuration,
	"nanoseconds":   options.CategoryNanoseconds,
	"seconds":       options.CategorySeconds,
}

func newCoercionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coercions",
		Short: "List the scalar coercions a policy allows",
		Long: `Coercions prints every scalar conversion the default mapper policy allows,
  one "from -> to" pair per line. Conversions between identical kinds are
  always allowed and not listed.`,
		Example: `  treemap coercions --without unsafe-number,text-number`,
		Args:    cobra.NoArgs,
		RunE:    runCoercions,
	}

	cmd.Flags().StringSlice(withoutFlag, nil,
		"categories to leave out, any of: "+strings.Join(slices.Sorted(maps.Keys(categoryNames)), ", "))

	return cmd
}

func runCoercions(cmd *cobra.Command, _ []string) error {
	without, err := cmd.Flags().GetStringSlice(withoutFlag)
	if err != nil {
		return err
	}

	policy := options.CategoryDefault

	for _, name := range without {
		category, ok := categoryNames[name]
		if !ok {
			return fmt.Errorf("unknown category %q", name)
		}

		policy = policy.Without(category)
	}

	pairs := slices.SortedFunc(maps.Keys(primitive.AllowedSet(policy)), func(a, b primitive.ConversionPair) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})

	out := cmd.OutOrStdout()
	for _, pair := range pairs {
		if pair.From == pair.To {
			continue
		}

		if _, err := fmt.Fprintf(out, "%s -> %s\n", kindName(pair.From), kindName(pair.To)); err != nil {
			return err
		}
	}

	return nil
}

func kindName(k primitive.KindEnum) string {
	return strings.ToLower(strings.TrimPrefix(k.String(), "Kind"))
}
