package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Op    string `json:"op"`
	Model string `json:"model,omitempty"`
	Ref   string `json:"ref,omitempty"`

	// Record is the projection of the record the step produced or touched.
	Record map[string]any `json:"record,omitempty"`

	// Records holds the projections returned by find_all.
	Records []any `json:"records,omitempty"`

	// Error is the error code of a step that failed as expected.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace lists executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event, numbering it after the previous one.
func (r *Result) AddTrace(event TraceEvent) {
	event.Seq = int64(len(r.Trace) + 1)
	r.Trace = append(r.Trace, event)
}
