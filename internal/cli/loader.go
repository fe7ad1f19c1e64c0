package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/schemata/internal/compiler"
)

// LoadResult contains the models compiled from a specs directory.
type LoadResult struct {
	Specs     []compiler.SchemaSpec
	FileCount int
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Location returns "file:line:col" when the error has a position.
func (e *LoadError) Location() string {
	if !e.Pos.IsValid() {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
}

// commandError reports whether the error is about the directory itself
// rather than the models in it.
func (e *LoadError) commandError() bool {
	switch e.Code {
	case ErrCodeNotFound, ErrCodeScanError, ErrCodeNoFiles:
		return true
	}
	return false
}

// LoadSpecs compiles the CUE package in dir. Every failure is a *LoadError.
// Model references are not checked here; see compiler.ValidateAll.
func LoadSpecs(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	specs, err := compiler.CompileDir(dir)
	if err != nil {
		return nil, convertCompileError(err)
	}
	if len(specs) == 0 {
		return nil, &LoadError{Code: ErrCodeNoModels, Message: "no models found in specs"}
	}

	return &LoadResult{Specs: specs, FileCount: len(cueFiles)}, nil
}

// FindCUEFiles returns the .cue files directly inside dir, the ones that
// make up its CUE package.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// validationErrors converts compiler validation errors for output. The
// offending field goes in the details.
func validationErrors(errs []compiler.ValidationError) []CLIError {
	out := make([]CLIError, len(errs))
	for i, e := range errs {
		out[i] = CLIError{Code: e.Code, Message: e.Message, Details: e.Field}
	}
	return out
}

// Error code constants, shared by all commands. Model validation codes
// (E1xx) come from the compiler package.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No CUE files found
	ErrCodeLoadFailed   = "E004" // CUE load failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBuildFailed  = "E006" // CUE evaluation failed
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeNoModels     = "E008" // No model declarations
	ErrCodeInvalidModel = "E009" // Model declaration cannot be compiled
	ErrCodeInvalidInput = "E010" // Bad --data
	ErrCodeUnknownModel = "E011" // Model name not declared
	ErrCodeRecordFailed = "E012" // Record construction failed
	ErrCodeStoreFailed  = "E013" // Store open or save failed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cue":
		return ErrCodeBuildFailed
	case field == "model":
		return compiler.ErrModelNameInvalid
	case field == "type":
		return compiler.ErrInvalidTypeName
	case field == "default":
		return compiler.ErrDefaultNotScalar
	case strings.HasPrefix(field, "model."):
		return ErrCodeInvalidModel
	default:
		return ErrCodeGeneric
	}
}
