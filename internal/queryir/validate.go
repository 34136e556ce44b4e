package queryir

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/datediff/internal/ir"
)

// ValidationResult contains portability analysis of a query.
type ValidationResult struct {
	// IsPortable is true when the query uses no backend-specific features.
	IsPortable bool

	// Warnings lists backend-specific features used in the query.
	Warnings []string
}

// Validate checks a query for backend-specific features:
//  1. Comparisons against NULL literals
//  2. Raw SQL fragments
//  3. Native function calls
//  4. SELECT * (no bindings and no computed outputs)
//
// Non-portable queries still compile. Validate is a pure function.
func Validate(query Query) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validateQuery(query)
	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addWarning("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.addWarning("Unknown query type: %T - portability cannot be verified", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if len(sel.Bindings) == 0 && len(sel.Computed) == 0 {
		v.addWarning("Empty bindings (SELECT *) - explicit outputs are required")
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
	for _, name := range sortedNames(sel.Computed) {
		v.validateExpr(sel.Computed[name])
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case BoundEquals, *BoundEquals:
		// Bound values are checked at compile time.
	case And:
		v.validateAnd(pred)
	case *And:
		v.validateAnd(*pred)
	case Compare:
		v.validateCompare(pred)
	case *Compare:
		v.validateCompare(*pred)
	default:
		v.addWarning("Unknown predicate type: %T - portability cannot be verified", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	if _, isNull := eq.Value.(ir.IRNull); isNull {
		v.addWarning("Field '%s' compared to NULL - the comparison is never true", eq.Field)
	}
}

func (v *validator) validateAnd(and And) {
	for _, sub := range and.Predicates {
		v.validatePredicate(sub)
	}
}

func (v *validator) validateCompare(c Compare) {
	if !c.Op.Valid() {
		v.addWarning("Unknown comparison operator %q", c.Op)
	}
	v.validateExpr(c.Left)
	v.validateExpr(c.Right)
}

func (v *validator) validateExpr(e Expr) {
	switch expr := e.(type) {
	case nil:
		v.addWarning("nil expression")
	case Literal:
		if _, isNull := expr.Value.(ir.IRNull); isNull {
			v.addWarning("NULL literal - comparisons with NULL are never true")
		}
	case Field, Bound:
	case Call:
		for _, a := range expr.Args {
			v.validateExpr(a)
		}
	case Fragment:
		v.addWarning("SQL fragment %q is backend-specific", expr.SQL)
	case FuncCall:
		v.addWarning("Native function %s is backend-specific", expr.Name)
		for _, a := range expr.Args {
			v.validateExpr(a)
		}
	default:
		v.addWarning("Unknown expression type: %T - portability cannot be verified", e)
	}
}

func sortedNames(m map[string]Expr) []string {
	return slices.Sorted(maps.Keys(m))
}
