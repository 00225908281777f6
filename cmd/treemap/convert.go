package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tree-mapper/internal/flags/enum"
	"tree-mapper/internal/flags/log"
)

const (
	fromFlag   = "from"
	toFlag     = "to"
	indentFlag = "indent"
	outputFlag = "output"
)

func newConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a document between formats",
		Long: `Convert reads a document (stdin when no file or "-" is given) and writes it
  in another format. Mapping order is preserved.`,
		Example: `  treemap convert --from yaml --to json config.yaml
  cat doc.json | treemap convert -f json -t msgpack -o doc.msgpack`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConvert,
	}

	enum.VarP(cmd.Flags(), fromFlag, "f", formats, "input format")
	enum.VarP(cmd.Flags(), toFlag, "t", []string{formatJSON, formatYAML, formatMsgpack}, "output format")
	cmd.Flags().Int(indentFlag, 2, "JSON indentation width, 0 writes compact JSON")
	cmd.Flags().StringP(outputFlag, "o", "", "output file, stdout when empty")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return err
	}

	from, err := enum.Get(cmd.Flags(), fromFlag)
	if err != nil {
		return err
	}

	to, err := enum.Get(cmd.Flags(), toFlag)
	if err != nil {
		return err
	}

	indent, err := cmd.Flags().GetInt(indentFlag)
	if err != nil {
		return err
	}

	output, err := cmd.Flags().GetString(outputFlag)
	if err != nil {
		return err
	}

	input := "-"
	if len(args) == 1 {
		input = args[0]
	}

	n, err := load(cmd.InOrStdin(), input, from)
	if err != nil {
		return err
	}

	data, err := encode(to, n, indent)
	if err != nil {
		return fmt.Errorf("encoding as %s: %w", to, err)
	}

	logger.Debug("document converted", "input", input, "from", from, "to", to, "bytes", len(data))

	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	return nil
}
