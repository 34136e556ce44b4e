package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/datediff/internal/datediff"
	"github.com/roach88/datediff/internal/harness"
)

// DiffResult is the JSON payload of the diff command. Result is nil when
// either operand is null.
type DiffResult struct {
	Unit   string  `json:"unit"`
	Start  *string `json:"start"`
	End    *string `json:"end"`
	Result *int32  `json:"result"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <unit> <start> <end>",
		Short: "Count unit boundaries between two timestamps",
		Long: `Count the unit boundaries crossed going from start to end.

Operands are ISO-8601 timestamps. An offset (or Z) makes a timestamp
aware; aware operands are compared on their UTC wall clock. Both operands
must be of the same kind. "null" is an absent operand and yields null.

Units: year, month, day, hour, minute, second, millisecond, microsecond,
nanosecond, or their DATEDIFF abbreviations (yy, mm, dd, hh, mi, ss, ms,
mcs, ns).

Example:
  datediff diff month "2024-01-31 23:59:59" "2024-02-01"
  datediff diff day 2024-03-10T23:00:00-02:00 2024-03-11T00:00:00Z`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], args[2], cmd)
		},
	}

	return cmd
}

func runDiff(opts *RootOptions, unitArg, startArg, endArg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	unit, err := datediff.ParseUnit(unitArg)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidUnit, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid unit", err)
	}

	c := harness.Case{Start: operand(startArg), End: operand(endArg)}
	outcome, err := harness.Evaluate(c, unit)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidTimestamp, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid operand", err)
	}
	opts.logger().Debug("diff evaluated", "unit", unit, "start", startArg, "end", endArg, "outcome", outcome.String())

	switch outcome.Kind {
	case harness.ExpectOverflow:
		msg := fmt.Sprintf("%s difference does not fit in int32", unit)
		_ = formatter.Error(ErrCodeOverflow, msg, nil)
		return NewExitError(ExitFailure, msg)
	case harness.ExpectError:
		_ = formatter.Error(ErrCodeGeneric, outcome.Err, nil)
		return NewExitError(ExitFailure, outcome.Err)
	}

	result := DiffResult{Unit: unit.String(), Start: c.Start, End: c.End}
	if outcome.Kind == harness.ExpectValue {
		v := outcome.Value
		result.Result = &v
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if result.Result == nil {
		return formatter.Success("null")
	}
	return formatter.Success(*result.Result)
}

// operand returns nil for a null operand.
func operand(arg string) *string {
	if strings.EqualFold(arg, "null") {
		return nil
	}
	return &arg
}
