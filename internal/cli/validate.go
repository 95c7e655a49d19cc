package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/dragsort/internal/compiler"
	"github.com/roach88/dragsort/internal/ir"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // warnings fail validation
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <catalogue-dir>",
		Short: "Validate a catalogue without writing anything",
		Long: `Validate a CUE catalogue: syntax, schema and consistency checks.

Duplicate ids, zones that accept nothing and tasks under undeclared
categories are errors. Items that no zone accepts are warnings, since
such a puzzle can never be completed; --strict turns warnings into
failures.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat warnings as errors")

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Use shared loader with fail-fast mode for validation
	loadResult, loadErrors := LoadCatalogue(dir, LoadModeFailFast)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	var findings []compiler.ValidationError
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			findings = append(findings, compiler.ValidationError{
				Field:    "load",
				Message:  loadErr.Message,
				Code:     loadErr.Code,
				Severity: compiler.SeverityError,
				Line:     getLineFromCuePos(loadErr.Pos),
			})
		}
	}
	if len(loadErrors) == 0 {
		findings = append(findings, validateAll(loadResult.Catalogue, formatter)...)
	}

	failures := compiler.Failures(findings, opts.Strict)
	warnings := warningsOnly(findings, opts.Strict)
	if len(failures) > 0 {
		return outputValidationErrors(formatter, failures, warnings)
	}

	return outputValidateSuccess(formatter, warnings)
}

// validateAll runs schema validation over the compiled catalogue.
func validateAll(cat *ir.Catalogue, formatter *OutputFormatter) []compiler.ValidationError {
	for _, t := range cat.Tasks {
		formatter.VerboseLog("Validating task: %s/%s", t.CategoryID, t.ID)
	}
	return compiler.Validate(cat)
}

// warningsOnly returns the warnings that did not fail validation.
func warningsOnly(findings []compiler.ValidationError, strict bool) []compiler.ValidationError {
	if strict {
		return nil
	}
	var out []compiler.ValidationError
	for _, f := range findings {
		if f.IsWarning() {
			out = append(out, f)
		}
	}
	return out
}

// getLineFromCuePos extracts line number from a token.Pos.
func getLineFromCuePos(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, warnings []compiler.ValidationError) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Warnings: warnings})
	}

	fmt.Fprintln(formatter.Writer, "✓ Catalogue valid")
	printFindings(formatter, warnings)
	return nil
}

func printFindings(formatter *OutputFormatter, findings []compiler.ValidationError) {
	for _, f := range findings {
		if f.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", f.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s: %s\n", f.Severity, f.Code, f.Field, f.Message)
	}
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation failures.
func outputValidationErrors(formatter *OutputFormatter, errs, warnings []compiler.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:    false,
			Errors:   errs,
			Warnings: warnings,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		if err := formatter.Respond(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	printFindings(formatter, errs)
	printFindings(formatter, warnings)

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
