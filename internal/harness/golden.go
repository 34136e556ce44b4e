package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/datediff/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toIR converts a TraceSnapshot to an IR object for canonical JSON
// serialization.
func (s *TraceSnapshot) toIR() ir.IRObject {
	trace := make(ir.IRArray, len(s.Trace))
	for i, ev := range s.Trace {
		trace[i] = ir.NewIRObject(
			ir.O("case", ir.IRString(ev.Case)),
			ir.O("sample", ir.IRString(ev.Sample)),
			ir.O("unit", ir.IRString(ev.Unit)),
			ir.O("sql", ir.IRString(ev.SQL)),
			ir.O("client", ev.Client.toIR()),
			ir.O("server", ev.Server.toIR()),
		)
	}
	return ir.NewIRObject(
		ir.O("scenario_name", ir.IRString(s.ScenarioName)),
		ir.O("trace", trace),
	)
}

// MarshalTrace returns the canonical JSON of a scenario's trace. The bytes
// are what golden files hold.
func MarshalTrace(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: scenarioName, Trace: result.Trace}
	return ir.MarshalCanonical(snapshot.toIR())
}

// HashTrace returns the content hash of a scenario's canonical trace.
func HashTrace(scenarioName string, result *Result) (string, error) {
	snapshot := TraceSnapshot{ScenarioName: scenarioName, Trace: result.Trace}
	return ir.TraceHash(snapshot.toIR())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
