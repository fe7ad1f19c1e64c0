package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schemata/internal/compiler"
)

var testSpecsDir = filepath.Join("..", "..", "testdata", "specs")

// writeSpecs writes src as the only CUE file of a fresh directory.
func writeSpecs(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.cue"), []byte(src), 0644))
	return dir
}

const cyclicSpecs = `
package specs

model: A: b: {...} @attr(B)
model: B: a: {...} @attr(A)
`

const unknownTypeSpecs = `
package specs

model: Person: {
	name:    string
	address: {...} @attr(Adress)
}
`

func TestCompileValidSpecs(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{testSpecsDir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ Compiled 2 model(s)")
	assert.Contains(t, output, "  Person: 8 field(s) → Address")
	assert.Contains(t, output, "  Address: 2 field(s)\n")
}

func TestCompileValidSpecsJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{testSpecsDir})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Models, 2)

	person := resp.Data.Models[0]
	assert.Equal(t, "Person", person.Name)
	assert.Equal(t, compiler.FieldSpec{Name: "sex", Type: "string", Default: "Male"}, person.Fields[4])
	assert.Equal(t, compiler.FieldSpec{Name: "aliases", Type: "string", Repeated: true}, person.Fields[6])
	assert.Equal(t, compiler.FieldSpec{Name: "address", Type: "Address"}, person.Fields[7])
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "models.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{testSpecsDir, "--output", outputFile})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Wrote model specs to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Models, 2)
	assert.Equal(t, "Address", result.Models[1].Name)
	assert.Equal(t, true, result.Models[0].Fields[5].Default)
}

func TestCompileOutputToUnwritablePath(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "missing", "models.json")

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{testSpecsDir, "-o", outputFile})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E007]")
}

func TestCompileNonExistentDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/directory/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "not found")
}

func TestCompileEmptyDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
	assert.Contains(t, buf.String(), "no CUE files found")
}

func TestCompileNoModels(t *testing.T) {
	dir := writeSpecs(t, "package specs\n\nother: 1\n")

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoModels)
	assert.Contains(t, buf.String(), "no models found")
}

func TestCompileInvalidSpec(t *testing.T) {
	dir := writeSpecs(t, unknownTypeSpecs)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "compilation failed with 1 error(s)")
	assert.Contains(t, buf.String(), "✗ Compilation failed")
	assert.Contains(t, buf.String(), "Person.address\n  E112: unknown type \"Adress\"")
}

func TestCompileInvalidSpecJSON(t *testing.T) {
	dir := writeSpecs(t, cyclicSpecs)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrModelCycle, resp.Error.Code)
	assert.Equal(t, "model reference cycle: A -> B -> A", resp.Error.Message)
}

func TestCompileUnsupportedFieldKind(t *testing.T) {
	dir := writeSpecs(t, "package specs\n\nmodel: Bad: nothing: null\n")

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeInvalidModel)
	assert.Contains(t, buf.String(), "unsupported type kind")
}

func TestCompileSyntaxError(t *testing.T) {
	dir := writeSpecs(t, "package specs\n\nmodel: Person: {\n")

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [")
}

func TestCompileVerboseOutput(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json", Verbose: true}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{testSpecsDir})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, errOut.String(), "Found 1 CUE file(s)")
	assert.Contains(t, errOut.String(), "Compiling model: Person")
	assert.Contains(t, errOut.String(), "Compiling model: Address")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp), "verbose logs must not corrupt JSON")
}

func TestFindCUEFiles(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a.cue"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "b.cue"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte(""), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "nested", "c.cue"), []byte(""), 0644))

	files, err := FindCUEFiles(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmpDir, "a.cue"), filepath.Join(tmpDir, "b.cue")}, files)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field    string
		expected string
	}{
		{"cue", ErrCodeBuildFailed},
		{"model", compiler.ErrModelNameInvalid},
		{"type", compiler.ErrInvalidTypeName},
		{"default", compiler.ErrDefaultNotScalar},
		{"model.Person", ErrCodeInvalidModel},
		{"model.Person.age", ErrCodeInvalidModel},
		{"unknown", ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapFieldToErrorCode(tt.field))
		})
	}
}

func TestLoadError(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files found in x"}
	assert.Equal(t, "E003: no CUE files found in x", err.Error())
	assert.Empty(t, err.Location())
	assert.True(t, err.commandError())

	assert.False(t, (&LoadError{Code: ErrCodeInvalidModel}).commandError())
}
