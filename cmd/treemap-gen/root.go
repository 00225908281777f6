package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tree-mapper/internal/analyze"
	"tree-mapper/internal/diagnostic"
	"tree-mapper/internal/flags/log"
	"tree-mapper/internal/gen"
)

const (
	filenameFlag = "filename"
	dryRunFlag   = "dry-run"
	strictFlag   = "strict"
)

// New builds the root command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "treemap-gen [packages]",
		Short: "Generate Constructor methods for tree mapper records",
		Long: `treemap-gen loads the given packages ("." by default), finds exported structs
  with a NewT function whose parameters match the struct's properties in
  declaration order, and writes their Constructor methods into one file per
  package.`,
		Example: `  treemap-gen ./...
  treemap-gen --dry-run tree-mapper/examples/records`,
		RunE:              run,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	log.RegisterLoggingFlags(cmd.PersistentFlags())
	cmd.Flags().String(filenameFlag, gen.DefaultGeneratorConfig().Filename, "name of the generated file in each package")
	cmd.Flags().Bool(dryRunFlag, false, "print generated files to stdout instead of writing them")
	cmd.Flags().Bool(strictFlag, false, "fail on warnings, e.g. a NewT function that does not match its struct")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return err
	}

	filename, err := cmd.Flags().GetString(filenameFlag)
	if err != nil {
		return err
	}

	dryRun, err := cmd.Flags().GetBool(dryRunFlag)
	if err != nil {
		return err
	}

	strict, err := cmd.Flags().GetBool(strictFlag)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"."}
	}

	pkgs, err := analyze.NewAnalyzer(logger).LoadPackages(args...)
	if err != nil {
		return err
	}

	cfg := gen.DefaultGeneratorConfig()
	cfg.Filename = filename
	cfg.Logger = logger
	generator := gen.NewGenerator(cfg)

	var (
		files []*gen.GeneratedFile
		diags diagnostic.Diagnostics
	)

	for _, pkg := range pkgs {
		file, err := generator.Generate(pkg)
		if err != nil {
			return fmt.Errorf("package %s: %w", pkg.Path, err)
		}

		for _, d := range pkg.Diagnostics.All() {
			logger.Info("diagnostic", "package", pkg.Path, "severity", d.Severity.String(), "detail", d.String())
		}

		if strict {
			for _, w := range pkg.Diagnostics.Warnings {
				diags.AddError(w.Code, w.Message, pkg.Name+"."+w.Type, w.Field)
			}
		}

		diags.Merge(diagnostic.Diagnostics{Errors: pkg.Diagnostics.Errors})
		files = append(files, file)
	}

	if err := diags.Error(); err != nil {
		return err
	}

	if dryRun {
		for _, file := range files {
			if file.Empty() {
				continue
			}

			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "// %s\n%s", file.Path(), file.Content); err != nil {
				return err
			}
		}

		return nil
	}

	return gen.WriteFiles(files)
}
