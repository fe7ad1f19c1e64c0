package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/schemata/internal/model"
	"github.com/roach88/schemata/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %s\n", event.Seq, event.Op, event.Model, event.Ref)
		}
	}

	return buf.String()
}

// eventMatches reports whether event has the given op and, when set, model.
func eventMatches(event TraceEvent, op, modelName string) bool {
	if event.Op != op || event.Error != "" {
		return false
	}
	return modelName == "" || event.Model == modelName
}

// assertTraceContains checks if the trace holds a successful step with the
// assertion's op and model whose record matches the expected subset.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if eventMatches(event, assertion.Op, assertion.Model) && store.Matches(event.Record, assertion.Record) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("%s %s with record %v", assertion.Op, assertion.Model, assertion.Record),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first occurrences of the given ops
// appear in order. Other steps may come in between.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for _, event := range trace {
		if event.Error != "" {
			continue
		}
		if _, seen := positions[event.Op]; !seen {
			positions[event.Op] = int(event.Seq)
		}
	}

	for _, op := range assertion.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", assertion.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Ops); i++ {
		prev := assertion.Ops[i-1]
		curr := assertion.Ops[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", assertion.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks that the op succeeded exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if eventMatches(event, assertion.Op, assertion.Model) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertFinalState finds the one stored record of the model matching Where
// and checks its projection against Expect.
func assertFinalState(ctx context.Context, registry *model.Registry, assertion Assertion) error {
	t, ok := registry.Lookup(assertion.Model)
	if !ok {
		return fmt.Errorf("final_state: unknown model %q", assertion.Model)
	}

	var where any
	if len(assertion.Where) > 0 {
		where = assertion.Where
	}
	records, err := t.FindAll(ctx, where)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query %s", assertion.Model),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}

	switch len(records) {
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s where %v", assertion.Model, assertion.Where),
			Actual:   "record not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one %s where %v", assertion.Model, assertion.Where),
			Actual:   fmt.Sprintf("%d records matched (assertion is ambiguous)", len(records)),
		}
	}

	actual := records[0].ToJSON()
	for key, want := range assertion.Expect {
		have, exists := actual[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not in %s", key, assertion.Model),
			}
		}
		if !store.Equal(have, want) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, want, want),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, have, have),
			}
		}
	}

	return nil
}

// EvaluateAssertions evaluates all assertions against the result and the
// stored records of registry. Returns a message per failed assertion.
func EvaluateAssertions(ctx context.Context, result *Result, assertions []Assertion, registry *model.Registry) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			if registry == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires a registry", i)
			} else {
				err = assertFinalState(ctx, registry, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}
