package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tree-mapper/internal/flags/enum"
	"tree-mapper/internal/flags/log"
	"tree-mapper/tree"
)

const (
	leftFlag    = "left"
	rightFlag   = "right"
	orderedFlag = "ordered"
)

var ErrDifferent = errors.New("documents differ")

func newEqualCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equal <a> <b>",
		Short: "Compare two documents",
		Long: `Equal loads two documents, possibly in different formats, and fails when
  their trees differ. Mapping order is ignored unless --ordered is set.`,
		Example: `  treemap equal --left yaml --right json config.yaml config.json`,
		Args:    cobra.ExactArgs(2),
		RunE:    runEqual,
	}

	enum.Var(cmd.Flags(), leftFlag, formats, "format of the first document")
	enum.Var(cmd.Flags(), rightFlag, formats, "format of the second document")
	cmd.Flags().Bool(orderedFlag, false, "also compare mapping order")

	return cmd
}

func runEqual(cmd *cobra.Command, args []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return err
	}

	left, err := enum.Get(cmd.Flags(), leftFlag)
	if err != nil {
		return err
	}

	right, err := enum.Get(cmd.Flags(), rightFlag)
	if err != nil {
		return err
	}

	ordered, err := cmd.Flags().GetBool(orderedFlag)
	if err != nil {
		return err
	}

	a, err := load(cmd.InOrStdin(), args[0], left)
	if err != nil {
		return err
	}

	b, err := load(cmd.InOrStdin(), args[1], right)
	if err != nil {
		return err
	}

	same := tree.EqualUnordered(a, b)
	if ordered {
		same = tree.Equal(a, b)
	}

	logger.Debug("documents compared", "a", args[0], "b", args[1], "ordered", ordered, "equal", same)

	if !same {
		return fmt.Errorf("%w: %s and %s", ErrDifferent, args[0], args[1])
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), "equal")

	return err
}
