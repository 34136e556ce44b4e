// Package dbfunc defines DateDiff as a model function and the rule that
// rewrites a DateDiff call into the native DATEDIFF(<unit>, start, end).
//
// The unit must be a compile-time constant. It is emitted as a bare keyword
// (day, not 'day'), which is why it travels as a queryir.Fragment: the
// target engine does not accept a string or a parameter in that position.
package dbfunc

import (
	"errors"
	"fmt"

	"github.com/roach88/datediff/internal/datediff"
	"github.com/roach88/datediff/internal/ir"
	"github.com/roach88/datediff/internal/model"
	"github.com/roach88/datediff/internal/queryir"
)

const (
	// FuncName is the host-level function queries call.
	FuncName = "DateDiff"

	// NativeName is the SQL function the call is rewritten to.
	NativeName = "DATEDIFF"
)

// ErrNonConstantUnit is returned when the unit argument of a DateDiff call
// is not a compile-time constant.
var ErrNonConstantUnit = errors.New("DateDiff unit must be a constant")

// DateDiff returns the function definition: DateDiff(unit, start, end) int.
// Each call returns a fresh value.
func DateDiff() model.Function {
	return model.Function{
		Name:      FuncName,
		Params:    []queryir.Type{queryir.TypeUnit, queryir.TypeTimestamp, queryir.TypeTimestamp},
		Result:    queryir.TypeInt,
		Translate: translate,
	}
}

// Register adds DateDiff to b and returns b.
func Register(b *model.Builder) *model.Builder {
	return b.HasFunction(DateDiff())
}

// Call builds a DateDiff call the way a query author writes it.
func Call(unit datediff.Unit, start, end queryir.Expr) queryir.Call {
	return queryir.Call{
		Func: FuncName,
		Args: []queryir.Expr{queryir.Literal{Value: ir.IRInt(unit)}, start, end},
	}
}

func translate(ctx model.TranslateContext, args []queryir.Expr) (queryir.Expr, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("%s expects 3 arguments, got %d", FuncName, len(args))
	}

	unit, err := constantUnit(ctx, args[0])
	if err != nil {
		return nil, err
	}
	start, end := args[1], args[2]

	return queryir.FuncCall{
		Name:     NativeName,
		Args:     []queryir.Expr{queryir.Fragment{SQL: unit.String()}, start, end},
		Type:     queryir.TypeInt,
		Nullable: ctx.Nullable(start) || ctx.Nullable(end),
	}, nil
}

// constantUnit accepts the enumeration value or a unit name.
func constantUnit(ctx model.TranslateContext, e queryir.Expr) (datediff.Unit, error) {
	v, ok := ctx.Constant(e)
	if !ok {
		return 0, fmt.Errorf("%w: got %T", ErrNonConstantUnit, e)
	}

	switch val := v.(type) {
	case ir.IRInt:
		u := datediff.Unit(val)
		if err := u.Validate(); err != nil {
			return 0, err
		}
		return u, nil
	case ir.IRString:
		return datediff.ParseUnit(string(val))
	default:
		return 0, &datediff.Error{
			Code:    datediff.ErrCodeInvalidUnit,
			Unit:    -1,
			Message: fmt.Sprintf("constant of type %T is not a unit", v),
		}
	}
}
