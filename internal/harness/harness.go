package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/schemata/internal/attr"
	"github.com/roach88/schemata/internal/compiler"
	"github.com/roach88/schemata/internal/ident"
	"github.com/roach88/schemata/internal/model"
	"github.com/roach88/schemata/internal/store"
	"github.com/roach88/schemata/internal/store/memstore"
	"github.com/roach88/schemata/internal/store/sqlstore"
)

// Harness executes the steps of one scenario.
type Harness struct {
	registry *model.Registry
	refs     map[string]*model.Record
	logger   *slog.Logger
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger step execution is reported to. Runs are
// silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against fresh stores with one identifier sequence per
// model. Steps run in order; a step that fails unexpectedly is recorded in
// the result and ends the run, since later steps usually depend on it.
// Errors in the scenario itself, such as an unknown model or ref, are
// returned as errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	specs, err := compiler.CompileFiles(scenario.Specs...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile specs: %w", err)
	}

	storeFor, closeStores, err := backend(scenario.Backend)
	if err != nil {
		return nil, err
	}
	defer closeStores()

	h := &Harness{
		registry: model.NewRegistry(),
		refs:     make(map[string]*model.Record),
		logger:   cfg.logger,
	}
	if _, err := compiler.Build(specs, h.registry, compiler.BuildOptions{Store: storeFor}); err != nil {
		return nil, fmt.Errorf("failed to build models: %w", err)
	}

	ctx := context.Background()
	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, err
	}

	if result.Pass {
		for _, msg := range EvaluateAssertions(ctx, result, scenario.Assertions, h.registry) {
			result.AddError(msg)
		}
	}

	return result, nil
}

// backend returns the store factory for a scenario backend and a func
// releasing what it opened.
func backend(name string) (func(string) (store.Store, error), func(), error) {
	sequence := func(model string) ident.Generator {
		return ident.NewSequence(strings.ToLower(model))
	}

	switch name {
	case "", BackendMemory:
		return func(model string) (store.Store, error) {
			return memstore.New(memstore.WithGenerator(sequence(model))), nil
		}, func() {}, nil

	case BackendSQLite:
		db, err := sqlstore.Open(":memory:")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		return func(model string) (store.Store, error) {
			return db.Collection(model, sqlstore.WithGenerator(sequence(model))), nil
		}, func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", name)
}

func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		event, err := h.execute(ctx, step)
		if err != nil {
			var se *scenarioError
			if errors.As(err, &se) {
				return fmt.Errorf("step %d: %w", i, err)
			}
		}

		code := ""
		if err != nil {
			code = ErrorCode(err)
		}

		switch {
		case err != nil && step.ExpectError == "":
			result.AddTrace(event)
			result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %v", i, step.Op, err))
			return nil

		case step.ExpectError != "" && code != step.ExpectError:
			actual := "success"
			if err != nil {
				actual = fmt.Sprintf("%s (%v)", code, err)
			}
			result.AddTrace(event)
			result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got %s", i, step.Op, step.ExpectError, actual))
			return nil

		case err != nil:
			event.Error = code
			event.Record = nil
			event.Records = nil
		}

		result.AddTrace(event)
		h.check(i, step, event, result)

		h.logger.Info("step completed",
			"step", i,
			"op", step.Op,
			"model", event.Model,
			"ref", event.Ref,
			"error", event.Error,
		)
	}
	return nil
}

// check compares a successful step against its expectations.
func (h *Harness) check(index int, step Step, event TraceEvent, result *Result) {
	if step.Expect != nil && event.Error == "" && !store.Matches(event.Record, step.Expect) {
		result.AddError(fmt.Sprintf("step %d (%s): expected %v, got %v", index, step.Op, step.Expect, event.Record))
	}
	if step.ExpectCount != nil && event.Error == "" && len(event.Records) != *step.ExpectCount {
		result.AddError(fmt.Sprintf("step %d (%s): expected %d records, got %d", index, step.Op, *step.ExpectCount, len(event.Records)))
	}
}

// execute runs one step. Errors from the operation itself are returned as
// is; mistakes in the scenario are returned as *scenarioError.
func (h *Harness) execute(ctx context.Context, step Step) (TraceEvent, error) {
	event := TraceEvent{Op: step.Op, Model: step.Model, Ref: step.Ref}

	switch step.Op {
	case OpNew:
		t, err := h.model(step.Model)
		if err != nil {
			return event, err
		}
		event.Ref = step.As
		r, err := t.New(step.Data)
		if err != nil {
			return event, err
		}
		h.refs[step.As] = r
		event.Record = r.ToJSON()
		return event, nil

	case OpSet, OpAssign, OpSave, OpDestroy:
		r, err := h.ref(step.Ref)
		if err != nil {
			return event, err
		}
		event.Model = r.Type().Name()

		switch step.Op {
		case OpSet:
			r.SetProperties(step.Data)
		case OpAssign:
			err = r.Assign(step.Data)
		case OpSave:
			_, err = r.Save(ctx)
		case OpDestroy:
			err = r.Destroy(ctx)
		}
		event.Record = r.ToJSON()
		return event, err

	case OpFind:
		t, err := h.model(step.Model)
		if err != nil {
			return event, err
		}
		r, err := t.Find(ctx, step.Query)
		if err != nil {
			return event, err
		}
		if step.As != "" {
			event.Ref = step.As
			h.refs[step.As] = r
		}
		event.Record = r.ToJSON()
		return event, nil

	case OpFindAll:
		t, err := h.model(step.Model)
		if err != nil {
			return event, err
		}
		records, err := t.FindAll(ctx, step.Query)
		if err != nil {
			return event, err
		}
		event.Records = make([]any, len(records))
		for i, r := range records {
			event.Records[i] = r.ToJSON()
		}
		return event, nil
	}

	return event, &scenarioError{msg: fmt.Sprintf("unknown op %q", step.Op)}
}

func (h *Harness) model(name string) (*model.Type, error) {
	t, ok := h.registry.Lookup(name)
	if !ok {
		return nil, &scenarioError{msg: fmt.Sprintf("unknown model %q", name)}
	}
	return t, nil
}

func (h *Harness) ref(name string) (*model.Record, error) {
	r, ok := h.refs[name]
	if !ok {
		return nil, &scenarioError{msg: fmt.Sprintf("unknown ref %q", name)}
	}
	return r, nil
}

// scenarioError reports a mistake in the scenario rather than a failure of
// the operation under test.
type scenarioError struct {
	msg string
}

func (e *scenarioError) Error() string { return e.msg }

// ErrorCode classifies err into the codes scenarios use in expect_error.
func ErrorCode(err error) string {
	var (
		seqErr   *attr.SequenceError
		queryErr *store.QueryError
	)

	switch {
	case err == nil:
		return ""
	case store.IsNotFound(err):
		return "not_found"
	case errors.Is(err, model.ErrNoStore):
		return "no_store"
	case errors.Is(err, model.ErrReadOnly):
		return "read_only"
	case model.IsSchemaRequired(err):
		return "schema_required"
	case store.IsAbstractInstantiation(err):
		return "abstract"
	case errors.As(err, &seqErr):
		return "sequence"
	case errors.As(err, &queryErr):
		return "query"
	case attr.IsConfigurationError(err):
		return "configuration"
	}
	if _, ok := store.IsNotImplemented(err); ok {
		return "not_implemented"
	}
	return "error"
}
