package main

import (
	"github.com/spf13/cobra"

	"tree-mapper/internal/flags/log"
)

// New builds the root command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "treemap [sub-command]",
		Short: "Convert and compare tree documents",
		Long: `treemap reads YAML, JSON and MessagePack documents into an ordered tree
  and writes them back in any of these formats.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	log.RegisterLoggingFlags(cmd.PersistentFlags())
	cmd.AddCommand(newConvertCommand())
	cmd.AddCommand(newEqualCommand())
	cmd.AddCommand(newCoercionsCommand())

	return cmd
}
