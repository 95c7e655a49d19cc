package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dragsort/internal/compiler"
	"github.com/roach88/dragsort/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	SectionCount  int
	CategoryCount int
	TaskCount     int
	PlayableCount int // tasks with a sorting puzzle
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <catalogue-dir>",
		Short: "Compile a CUE catalogue to IR",
		Long: `Compile a CUE catalogue of sections, categories and tasks to IR.

The compiler parses CUE files, turns every sorting and classification
task into a playable puzzle, and outputs JSON for import or inspection.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Use shared loader with collect-all mode
	loadResult, loadErrors := LoadCatalogue(dir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	cat := loadResult.Catalogue
	for _, s := range cat.Sections {
		formatter.VerboseLog("Compiling section: %s", s.ID)
	}
	for _, t := range cat.Tasks {
		formatter.VerboseLog("Compiling task: %s/%s (%s)", t.CategoryID, t.ID, t.Template)
	}

	// Handle compilation errors
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	stats := calculateStats(cat)

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeIRToFile(cat, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, cat, stats, opts.Output)
}

// calculateStats computes summary statistics from a compiled catalogue.
func calculateStats(cat *ir.Catalogue) CompilationStats {
	stats := CompilationStats{
		SectionCount: len(cat.Sections),
		TaskCount:    len(cat.Tasks),
	}
	for _, s := range cat.Sections {
		stats.CategoryCount += len(s.Categories)
	}
	for _, t := range cat.Tasks {
		if t.Puzzle != nil {
			stats.PlayableCount++
		}
	}
	return stats
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, cat *ir.Catalogue, stats CompilationStats, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(cat)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d section(s), %d category(ies), %d task(s) (%d playable)\n\n",
		stats.SectionCount, stats.CategoryCount, stats.TaskCount, stats.PlayableCount)

	if len(cat.Sections) > 0 {
		fmt.Fprintln(formatter.Writer, "Sections:")
		for _, s := range cat.Sections {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", s.ID, s.Title)
			for _, c := range s.Categories {
				fmt.Fprintf(formatter.Writer, "    %s: %d task(s)\n", c.ID, countTasks(cat, c.ID))
			}
		}
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote catalogue IR to %s\n", outputFile)
	}

	return nil
}

func countTasks(cat *ir.Catalogue, categoryID string) int {
	n := 0
	for _, t := range cat.Tasks {
		if t.CategoryID == categoryID {
			n++
		}
	}
	return n
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		if err := formatter.Respond(response); err != nil {
			return err
		}

		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeIRToFile writes the compiled catalogue to a file.
func writeIRToFile(cat *ir.Catalogue, filename string) error {
	// Indented for readability; canonical JSON is only used for hashing.
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
