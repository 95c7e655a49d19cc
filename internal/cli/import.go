package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dragsort/internal/compiler"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
	Strict   bool
}

// ImportResult is the JSON payload of a successful import.
type ImportResult struct {
	Database   string                     `json:"database"`
	Sections   int                        `json:"sections"`
	Categories int                        `json:"categories"`
	Tasks      int                        `json:"tasks"`
	Playable   int                        `json:"playable"`
	Warnings   []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <catalogue-dir>",
		Short: "Validate a catalogue and load it into the database",
		Long: `Compile and validate a CUE catalogue, then replace the catalogue
tables of the database with it. Recorded sessions are kept.

Nothing is written when validation fails.

Examples:
  dragsort import --db ./dragsort.db ./catalogue
  dragsort import --db ./dragsort.db ./catalogue --strict`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat warnings as errors")

	return cmd
}

func runImport(opts *ImportOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadCatalogue(dir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}
	cat := loadResult.Catalogue

	findings := compiler.Validate(cat)
	failures := compiler.Failures(findings, opts.Strict)
	warnings := warningsOnly(findings, opts.Strict)
	if len(failures) > 0 {
		return outputValidationErrors(formatter, failures, warnings)
	}

	st, err := openStore(opts.Database, false)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.WriteCatalogue(cmd.Context(), cat); err != nil {
		return outputCompileError(formatter, ErrCodeDatabase, fmt.Sprintf("writing catalogue: %v", err), nil)
	}

	stats := calculateStats(cat)
	opts.logger().Info("catalogue imported",
		"db", opts.Database,
		"sections", stats.SectionCount,
		"tasks", stats.TaskCount,
	)

	if opts.Format == "json" {
		return formatter.Success(ImportResult{
			Database:   opts.Database,
			Sections:   stats.SectionCount,
			Categories: stats.CategoryCount,
			Tasks:      stats.TaskCount,
			Playable:   stats.PlayableCount,
			Warnings:   warnings,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Imported %d section(s), %d category(ies), %d task(s) (%d playable) into %s\n",
		stats.SectionCount, stats.CategoryCount, stats.TaskCount, stats.PlayableCount, opts.Database)
	printFindings(formatter, warnings)
	return nil
}
