package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/datediff/internal/datediff"
	"github.com/roach88/datediff/internal/dbfunc"
	"github.com/roach88/datediff/internal/ir"
	"github.com/roach88/datediff/internal/queryir"
	"github.com/roach88/datediff/internal/querysql"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	From  string // source table
	Model string // CUE model file or directory; empty for the built-in model
}

// SQLResult is the translation of one DateDiff call.
type SQLResult struct {
	SQL      string `json:"sql"`
	Params   []any  `json:"params"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <unit> <start> <end>",
		Short: "Show the SQL a DateDiff call compiles to",
		Long: `Compile DateDiff(unit, start, end) in a query over --from and print the
SQL, its parameters and the result type.

Operands are column names of the source table or :name bound parameters.
The unit must be a constant: a :name unit is rejected.

Example:
  datediff sql day :now birthday
  datediff sql month start_at end_at --from samples
  datediff sql hour a b --from events --model ./model.cue`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "people", "source table")
	cmd.Flags().StringVar(&opts.Model, "model", "", "CUE model file or directory (default: built-in model)")

	return cmd
}

func runSQL(opts *SQLOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, err := LoadModel(opts.Model)
	if err != nil {
		code, items := modelErrors(err)
		_ = formatter.Error(code, items[0].Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load model", err)
	}
	table, ok := loaded.Model.Table(opts.From)
	if !ok {
		msg := fmt.Sprintf("unknown table %q", opts.From)
		_ = formatter.Error(ErrCodeCompileFailed, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	c := querysql.NewSQLCompiler(loaded.Model)
	exprs := make([]queryir.Expr, len(args))
	for i, arg := range args {
		if name, bound := strings.CutPrefix(arg, ":"); bound {
			c.BoundValues[name] = arg
			exprs[i] = queryir.Bound{Var: name}
			continue
		}
		if i == 0 {
			exprs[i] = queryir.Literal{Value: ir.IRString(arg)}
			continue
		}
		if _, ok := table.Column(arg); !ok {
			msg := fmt.Sprintf("table %s has no column %q", table.Name, arg)
			_ = formatter.Error(ErrCodeCompileFailed, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		exprs[i] = queryir.Field{Name: arg}
	}
	call := queryir.Call{Func: dbfunc.FuncName, Args: exprs}

	result, err := compileCall(c, opts.From, call)
	if err != nil {
		code := ErrCodeCompileFailed
		switch {
		case errors.Is(err, dbfunc.ErrNonConstantUnit):
			code = ErrCodeNonConstantUnit
		case datediff.IsInvalidUnit(err):
			code = ErrCodeInvalidUnit
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "compile failed", err)
	}
	opts.logger().Debug("compiled DateDiff", "from", opts.From, "sql", result.SQL)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "SQL:    %s\n", result.SQL)
	fmt.Fprintf(w, "Params: %v\n", result.Params)
	nullability := "not null"
	if result.Nullable {
		nullability = "nullable"
	}
	fmt.Fprintf(w, "Type:   %s (%s)\n", result.Type, nullability)
	return nil
}

// compileCall lowers call for its type and compiles it as the only output
// of a query over from.
func compileCall(c *querysql.SQLCompiler, from string, call queryir.Call) (SQLResult, error) {
	lowered, err := c.LowerExpr(from, call)
	if err != nil {
		return SQLResult{}, err
	}
	fc, ok := lowered.(queryir.FuncCall)
	if !ok {
		return SQLResult{}, fmt.Errorf("%s lowered to %T, want a native call", call.Func, lowered)
	}

	sqlText, params, err := c.Compile(queryir.Select{
		From:     from,
		Computed: map[string]queryir.Expr{"diff": call},
	})
	if err != nil {
		return SQLResult{}, err
	}
	if params == nil {
		params = []any{}
	}
	return SQLResult{SQL: sqlText, Params: params, Type: string(fc.Type), Nullable: fc.Nullable}, nil
}
