package harness

import "github.com/roach88/contactdb/internal/notify"

// TraceEvent is the record of one executed step. IDs holds the handles
// of the contacts of a save step after the call.
type TraceEvent struct {
	Seq    int               `json:"seq"`
	Op     string            `json:"op"`
	Code   string            `json:"code"`
	Errors map[int]string    `json:"errors,omitempty"`
	IDs    []uint32          `json:"ids,omitempty"`
	Events []notify.Event    `json:"events,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one entry per step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
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

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Events returns every event of the trace in publication order.
func (r *Result) Events() []notify.Event {
	var out []notify.Event
	for _, step := range r.Trace {
		out = append(out, step.Events...)
	}
	return out
}
