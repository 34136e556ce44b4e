// Package harness runs DateDiff conformance scenarios.
//
// Every case of a scenario is evaluated twice for every unit: directly with
// datediff.Diff (the client path) and through a compiled DateDiff query
// against a fresh in-memory store (the server path). The two must agree, and
// both must match the case's expectations when it has any.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: leap_february
//	description: "February of a leap year"
//	units: [month, day]          # optional, defaults to every unit
//	cases:
//	  - name: whole month        # optional
//	    start: "2024-02-01 00:00:00"
//	    end: "2024-03-01 00:00:00"
//	    expect:
//	      month: 1
//	      day: 29
//	      millisecond: overflow
//	  - start: null
//	    end: "2024-03-01 00:00:00"
//	    expect: { day: unknown }
//
// Timestamps without an offset are naive; "2024-03-01T00:00:00+02:00" is
// offset-aware. A case must not mix the two kinds.
//
// # Expectations
//
//   - an integer: both paths return that value
//   - unknown: both paths return an absent result
//   - overflow: both paths fail with an arithmetic overflow
//
// # Deterministic Testing
//
// Samples get content-addressed IDs (ir.SampleID), and traces are written
// as canonical JSON, so identical scenarios produce byte-identical golden
// files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/leap.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
