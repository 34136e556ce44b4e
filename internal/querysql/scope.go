package querysql

import (
	"fmt"

	"github.com/roach88/datediff/internal/ir"
	"github.com/roach88/datediff/internal/model"
	"github.com/roach88/datediff/internal/queryir"
)

// scope is the translation context for one compilation. It is created per
// Compile call and never shared.
type scope struct {
	model *model.Model
	table model.Table
	known bool
}

func (c *SQLCompiler) newScope(from string) (*scope, error) {
	s := &scope{model: c.model}
	if c.model == nil {
		return s, nil
	}
	t, ok := c.model.Table(from)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", from)
	}
	s.table, s.known = t, true
	return s, nil
}

// Constant implements model.TranslateContext. Only literals are constant;
// bound values change between executions.
func (s *scope) Constant(e queryir.Expr) (ir.IRValue, bool) {
	if lit, ok := e.(queryir.Literal); ok && lit.Value != nil {
		return lit.Value, true
	}
	return nil, false
}

// Nullable implements model.TranslateContext.
func (s *scope) Nullable(e queryir.Expr) bool {
	switch expr := e.(type) {
	case queryir.Field:
		if !s.known {
			return true
		}
		col, ok := s.table.Column(expr.Name)
		return !ok || col.Nullable
	case queryir.Literal:
		_, isNull := expr.Value.(ir.IRNull)
		return isNull
	case queryir.FuncCall:
		return expr.Nullable
	case queryir.Fragment:
		return false
	default:
		return true
	}
}

// lower replaces a Call with its registered translation. Arguments have
// already been lowered when lower sees the call.
func (s *scope) lower(e queryir.Expr) (queryir.Expr, error) {
	call, ok := e.(queryir.Call)
	if !ok {
		return e, nil
	}
	if s.model == nil {
		return nil, fmt.Errorf("call to %s needs a model", call.Func)
	}
	fn, ok := s.model.Function(call.Func)
	if !ok {
		return nil, fmt.Errorf("unknown function %q", call.Func)
	}
	if len(call.Args) != len(fn.Params) {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", fn.Name, len(fn.Params), len(call.Args))
	}

	out, err := fn.Translate(s, call.Args)
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", fn.Name, err)
	}
	if _, still := out.(queryir.Call); still || out == nil {
		return nil, fmt.Errorf("translate %s: translation did not produce a native expression", fn.Name)
	}
	return out, nil
}
