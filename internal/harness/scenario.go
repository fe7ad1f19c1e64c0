package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Step operations.
const (
	OpNew     = "new"
	OpSet     = "set"
	OpAssign  = "assign"
	OpSave    = "save"
	OpDestroy = "destroy"
	OpFind    = "find"
	OpFindAll = "find_all"
)

// Backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Scenario defines a record lifecycle test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists paths to CUE spec files declaring the models used.
	Specs []string `yaml:"specs"`

	// Backend selects the store: "memory" (default) or "sqlite".
	Backend string `yaml:"backend,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and stored state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation on a model or a named record.
type Step struct {
	// Op is one of new, set, assign, save, destroy, find, find_all.
	Op string `yaml:"op"`

	// Model names the record type (new, find, find_all).
	Model string `yaml:"model,omitempty"`

	// Ref names a record created by an earlier step (set, assign, save,
	// destroy).
	Ref string `yaml:"ref,omitempty"`

	// As names the record this step produces (new, find).
	As string `yaml:"as,omitempty"`

	// Data is the input for new, set and assign.
	Data map[string]any `yaml:"data,omitempty"`

	// Query is an identifier or a field subset (find, find_all).
	Query any `yaml:"query,omitempty"`

	// Expect is a subset of the resulting record's projection.
	Expect map[string]any `yaml:"expect,omitempty"`

	// ExpectCount is the number of records find_all must return.
	ExpectCount *int `yaml:"expect_count,omitempty"`

	// ExpectError is the error code the step must fail with, such as
	// not_found.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates the trace or stored state after all steps ran.
type Assertion struct {
	// Type is trace_contains, trace_order, trace_count or final_state.
	Type string `yaml:"type"`

	// Op is the step operation (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Model restricts trace assertions to one model; required by
	// final_state.
	Model string `yaml:"model,omitempty"`

	// Record is a subset the traced record must match (trace_contains).
	Record map[string]any `yaml:"record,omitempty"`

	// Ops is the expected operation order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Where selects the stored record (final_state).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected field values (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file. Relative spec paths
// are resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving relative spec paths against basePath. Unknown fields are
// rejected so typos surface as errors.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	for _, specPath := range scenario.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: spec file not found: %s", specPath)
		}
	}

	return scenario, nil
}

// ParseScenario parses and validates scenario YAML. Spec paths are left as
// written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	switch s.Backend {
	case "", BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	switch step.Op {
	case OpNew:
		if step.Model == "" || step.As == "" {
			return fmt.Errorf("steps[%d]: new requires model and as", index)
		}
	case OpSet, OpAssign:
		if step.Ref == "" {
			return fmt.Errorf("steps[%d]: %s requires ref", index, step.Op)
		}
		if step.Data == nil {
			return fmt.Errorf("steps[%d]: %s requires data", index, step.Op)
		}
	case OpSave, OpDestroy:
		if step.Ref == "" {
			return fmt.Errorf("steps[%d]: %s requires ref", index, step.Op)
		}
	case OpFind:
		if step.Model == "" {
			return fmt.Errorf("steps[%d]: find requires model", index)
		}
	case OpFindAll:
		if step.Model == "" {
			return fmt.Errorf("steps[%d]: find_all requires model", index)
		}
		if step.Expect != nil {
			return fmt.Errorf("steps[%d]: find_all checks expect_count, not expect", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if step.ExpectCount != nil && step.Op != OpFindAll {
		return fmt.Errorf("steps[%d]: expect_count is only valid for find_all", index)
	}
	if step.ExpectError != "" && step.Expect != nil {
		return fmt.Errorf("steps[%d]: expect and expect_error are exclusive", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Model == "" {
			return fmt.Errorf("assertions[%d]: model is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
