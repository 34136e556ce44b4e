package harness

import (
	"fmt"
	"strings"
)

// Assertion types.
const (
	AssertAgreement   = "agreement"
	AssertExpectation = "expectation"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Case     string
	Unit     string
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	SQL      string // Compiled query, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s (%s, %s)\n", e.Type, e.Case, e.Unit)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.SQL != "" {
		fmt.Fprintf(&buf, "  SQL: %s\n", e.SQL)
	}

	return buf.String()
}

// assertAgreement checks that the client and server paths produced the
// same outcome. Two failures other than overflow never agree.
func assertAgreement(ev TraceEvent) error {
	same := ev.Client.Kind == ev.Server.Kind &&
		(ev.Client.Kind != ExpectValue || ev.Client.Value == ev.Server.Value)
	if same && ev.Client.Kind != ExpectError {
		return nil
	}
	return &AssertionError{
		Type:     AssertAgreement,
		Case:     ev.Case,
		Unit:     ev.Unit,
		Expected: fmt.Sprintf("server %s (as client)", ev.Client),
		Actual:   fmt.Sprintf("server %s", ev.Server),
		SQL:      ev.SQL,
	}
}

// assertExpectation checks both paths against the scenario's expectation.
func assertExpectation(ev TraceEvent, want Expectation) []error {
	var errs []error
	for _, side := range []struct {
		name string
		got  Outcome
	}{
		{"client", ev.Client},
		{"server", ev.Server},
	} {
		if side.got.Matches(want) {
			continue
		}
		errs = append(errs, &AssertionError{
			Type:     AssertExpectation,
			Case:     ev.Case,
			Unit:     ev.Unit,
			Expected: fmt.Sprintf("%s %s", side.name, want),
			Actual:   fmt.Sprintf("%s %s", side.name, side.got),
			SQL:      ev.SQL,
		})
	}
	return errs
}

// EvaluateAssertions checks one trace event and records every failure on
// result.
func EvaluateAssertions(result *Result, ev TraceEvent, want *Expectation) {
	if err := assertAgreement(ev); err != nil {
		result.AddError(err.Error())
	}
	if want == nil {
		return
	}
	for _, err := range assertExpectation(ev, *want) {
		result.AddError(err.Error())
	}
}
