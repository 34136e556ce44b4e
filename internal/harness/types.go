package harness

import (
	"database/sql"
	"strconv"

	"github.com/roach88/datediff/internal/ir"
)

// Outcome is what one evaluation path produced for one case and unit.
type Outcome struct {
	Kind  ExpectKind
	Value int32

	// Err holds the message of a failure other than overflow.
	Err string
}

// ExpectError marks an outcome that failed for a reason other than
// overflow. It never appears in scenario files.
const ExpectError ExpectKind = "error"

func valueOutcome(v sql.Null[int32]) Outcome {
	if !v.Valid {
		return Outcome{Kind: ExpectUnknown}
	}
	return Outcome{Kind: ExpectValue, Value: v.V}
}

// String formats o like an Expectation.
func (o Outcome) String() string {
	switch o.Kind {
	case ExpectValue:
		return strconv.FormatInt(int64(o.Value), 10)
	case ExpectError:
		return "error: " + o.Err
	default:
		return string(o.Kind)
	}
}

// Matches reports whether o satisfies e. A zero Expectation (written as
// null in YAML) means unknown.
func (o Outcome) Matches(e Expectation) bool {
	kind := e.Kind
	if kind == "" {
		kind = ExpectUnknown
	}
	if o.Kind != kind {
		return false
	}
	return kind != ExpectValue || o.Value == e.Value
}

// toIR converts o for the canonical trace: an integer, or the kind name.
func (o Outcome) toIR() ir.IRValue {
	switch o.Kind {
	case ExpectValue:
		return ir.IRInt(o.Value)
	case ExpectError:
		return ir.NewIRObject(ir.O("error", ir.IRString(o.Err)))
	default:
		return ir.IRString(o.Kind)
	}
}

// MarshalJSON writes o the way it appears in traces.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return ir.MarshalIRValue(o.toIR())
}

// TraceEvent records both evaluations of one case for one unit.
type TraceEvent struct {
	Case   string  `json:"case"`
	Sample string  `json:"sample"`
	Unit   string  `json:"unit"`
	SQL    string  `json:"sql"`
	Client Outcome `json:"client"`
	Server Outcome `json:"server"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success: the paths agree everywhere and
	// every expectation holds.
	Pass bool `json:"pass"`

	// Trace contains one event per case and unit, cases in file order and
	// units coarsest first.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
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

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
