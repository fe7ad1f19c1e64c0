package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/schemata/internal/compiler"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled model specs.
type CompilationResult struct {
	Models []compiler.SchemaSpec `json:"models"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile CUE models to schema specs",
		Long: `Compile the CUE model declarations in a directory to schema specs.

Every model is checked: field types must be built-in types or other
declared models, and models may not reference each other in a cycle.

Example:
  schemata compile ./specs
  schemata compile ./specs -o models.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, err := LoadSpecs(specsDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)
	for _, spec := range loadResult.Specs {
		formatter.VerboseLog("Compiling model: %s", spec.Name)
	}

	if errs := compiler.ValidateAll(loadResult.Specs, nil); len(errs) > 0 {
		if formatter.Format != "json" {
			fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
			fmt.Fprintln(formatter.Writer)
		}
		if err := formatter.Errors(validationErrors(errs)); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	result := &CompilationResult{Models: loadResult.Specs}

	if opts.Output != "" {
		if err := writeSpecsToFile(result, opts.Output); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d model(s)\n\n", len(result.Models))

	fmt.Fprintln(formatter.Writer, "Models:")
	for _, spec := range result.Models {
		line := fmt.Sprintf("  %s: %d field(s)", spec.Name, len(spec.Fields))
		if refs := spec.References(); len(refs) > 0 {
			line += " → " + strings.Join(refs, ", ")
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	fmt.Fprintln(formatter.Writer)

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote model specs to %s\n", outputFile)
	}

	return nil
}

// outputLoadError reports a failed LoadSpecs. Load failures are
// command-level errors (exit code 2).
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
	}

	var details any
	if loc := loadErr.Location(); loc != "" {
		details = loc
	}
	_ = formatter.Error(loadErr.Code, loadErr.Message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
}

// writeSpecsToFile writes the compiled specs as indented JSON.
func writeSpecsToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling specs: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
