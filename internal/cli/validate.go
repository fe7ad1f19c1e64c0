package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/schemata/internal/compiler"
	"github.com/roach88/schemata/internal/model"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Models []string `json:"models,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Check models without writing output",
		Long: `Check the CUE model declarations in a directory.

Runs the same checks as compile and then builds every record type, so
defaults and model references are known to work. Invalid models exit
with code 1; a missing or empty directory exits with code 2.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, err := LoadSpecs(specsDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && !loadErr.commandError() {
			return outputValidationErrors(formatter, []CLIError{loadErrorDetails(loadErr)})
		}
		return outputLoadError(formatter, err)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	names, errs := validateModels(loadResult.Specs, formatter)
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Models: names})
	}
	fmt.Fprintf(formatter.Writer, "✓ All models valid (%d)\n", len(names))
	return nil
}

// validateModels checks specs and builds them into a scratch registry.
func validateModels(specs []compiler.SchemaSpec, formatter *OutputFormatter) ([]string, []CLIError) {
	names := make([]string, len(specs))
	for i, spec := range specs {
		formatter.VerboseLog("Validating model: %s", spec.Name)
		names[i] = spec.Name
	}

	if errs := compiler.ValidateAll(specs, nil); len(errs) > 0 {
		return names, validationErrors(errs)
	}

	if _, err := compiler.Build(specs, model.NewRegistry(), compiler.BuildOptions{}); err != nil {
		var buildErr *compiler.BuildError
		if errors.As(err, &buildErr) {
			return names, validationErrors(buildErr.Errors)
		}
		return names, []CLIError{{Code: ErrCodeGeneric, Message: err.Error()}}
	}
	return names, nil
}

func loadErrorDetails(e *LoadError) CLIError {
	out := CLIError{Code: e.Code, Message: e.Message}
	if loc := e.Location(); loc != "" {
		out.Details = loc
	}
	return out
}

// outputValidationErrors outputs validation errors. Invalid models are a
// validation failure (exit code 1).
func outputValidationErrors(formatter *OutputFormatter, errs []CLIError) error {
	if formatter.Format != "json" {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
	}
	if err := formatter.Errors(errs); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
