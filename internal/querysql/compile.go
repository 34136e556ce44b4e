// Package querysql compiles Query IR to parameterized SQL for SQLite.
//
// Host-level Call nodes are lowered first, through the translators
// registered in the model; the lowered tree is then rendered. Every value
// is sent as a ? parameter. The only text copied verbatim into the SQL is a
// Fragment, and only translators produce fragments.
package querysql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/datediff/internal/ir"
	"github.com/roach88/datediff/internal/model"
	"github.com/roach88/datediff/internal/queryir"
)

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// CRITICAL: ALL queries include ORDER BY for deterministic results.
// CRITICAL: All values are parameterized, never interpolated.
type SQLCompiler struct {
	// BoundValues holds the values for Bound expressions and BoundEquals
	// predicates. Must be set by the caller before compilation.
	BoundValues map[string]any

	model *model.Model
}

// NewSQLCompiler creates a compiler that lowers calls through m. A nil
// model is allowed for queries without calls.
func NewSQLCompiler(m *model.Model) *SQLCompiler {
	return &SQLCompiler{
		BoundValues: make(map[string]any),
		model:       m,
	}
}

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error).
//
// MANDATORY: Every query includes ORDER BY with a deterministic tiebreaker.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	switch query := q.(type) {
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil query")
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// LowerExpr lowers the calls in e as if e appeared in a query over the
// source table from. It is what Compile does to each expression before
// rendering.
func (c *SQLCompiler) LowerExpr(from string, e queryir.Expr) (queryir.Expr, error) {
	s, err := c.newScope(from)
	if err != nil {
		return nil, err
	}
	return queryir.RewriteExpr(e, s.lower)
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	s, err := c.newScope(q.From)
	if err != nil {
		return "", nil, err
	}

	targets := boundTargets(q.Bindings)
	for name := range q.Computed {
		if _, clash := targets[name]; clash {
			return "", nil, fmt.Errorf("computed output %q collides with a binding", name)
		}
	}

	var params []any
	selectClause, selectParams, err := c.compileOutputs(s, q)
	if err != nil {
		return "", nil, err
	}
	params = append(params, selectParams...)

	var whereClause string
	if q.Filter != nil {
		lowered, err := queryir.RewritePredicate(q.Filter, s.lower)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		filterSQL, filterParams, err := c.compilePredicate(lowered)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = append(params, filterParams...)
	}

	// MANDATORY: Always add ORDER BY
	orderByClause := " ORDER BY " + c.stableOrderKey(q)

	sql := fmt.Sprintf("SELECT %s FROM %s%s%s",
		selectClause,
		q.From,
		whereClause,
		orderByClause)

	return sql, params, nil
}

// compileOutputs renders the bindings then the computed outputs, each group
// sorted by name.
func (c *SQLCompiler) compileOutputs(s *scope, q queryir.Select) (string, []any, error) {
	if len(q.Bindings) == 0 && len(q.Computed) == 0 {
		return "*", nil, nil
	}

	parts := []string{}
	if len(q.Bindings) > 0 {
		parts = append(parts, c.compileBindings(q.Bindings))
	}

	names := make([]string, 0, len(q.Computed))
	for name := range q.Computed {
		names = append(names, name)
	}
	sort.Strings(names)

	var params []any
	for _, name := range names {
		lowered, err := queryir.RewriteExpr(q.Computed[name], s.lower)
		if err != nil {
			return "", nil, fmt.Errorf("compile output %s: %w", name, err)
		}
		exprSQL, exprParams, err := c.compileExpr(lowered)
		if err != nil {
			return "", nil, fmt.Errorf("compile output %s: %w", name, err)
		}
		parts = append(parts, fmt.Sprintf("%s AS %s", exprSQL, name))
		params = append(params, exprParams...)
	}

	return strings.Join(parts, ", "), params, nil
}

// compileBindings converts bindings map to SELECT column list.
// Example: {"start_at": "start"} → "start_at AS start"
// Keys are sorted for deterministic output.
func (c *SQLCompiler) compileBindings(bindings map[string]string) string {
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, sourceField := range keys {
		boundVar := bindings[sourceField]
		if sourceField == boundVar {
			parts = append(parts, sourceField)
		} else {
			parts = append(parts, fmt.Sprintf("%s AS %s", sourceField, boundVar))
		}
	}
	return strings.Join(parts, ", ")
}

func boundTargets(bindings map[string]string) map[string]struct{} {
	out := make(map[string]struct{}, len(bindings))
	for _, v := range bindings {
		out[v] = struct{}{}
	}
	return out
}

// stableOrderKey returns the ORDER BY clause for a query.
// MANDATORY: Every query MUST call this function.
// COLLATE BINARY keeps text ordering identical across SQLite versions.
func (c *SQLCompiler) stableOrderKey(q queryir.Select) string {
	return "id ASC COLLATE BINARY"
}

// compilePredicate compiles a lowered predicate to a WHERE fragment.
// CRITICAL: Values NEVER interpolated - always ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	case queryir.BoundEquals:
		return c.compileBoundEquals(pred)
	case *queryir.BoundEquals:
		return c.compileBoundEquals(*pred)
	case queryir.Compare:
		return c.compileCompare(pred)
	case *queryir.Compare:
		return c.compileCompare(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	param, err := ir.DriverValue(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}
	return fmt.Sprintf("%s = ?", eq.Field), []any{param}, nil
}

func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	var sqlParts []string
	var allParams []any
	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		switch pred.(type) {
		case queryir.And, *queryir.And:
			sql = "(" + sql + ")"
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}
	return strings.Join(sqlParts, " AND "), allParams, nil
}

func (c *SQLCompiler) compileBoundEquals(beq queryir.BoundEquals) (string, []any, error) {
	val, err := c.boundValue(beq.BoundVar)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s = ?", beq.Field), []any{val}, nil
}

func (c *SQLCompiler) compileCompare(cmp queryir.Compare) (string, []any, error) {
	if !cmp.Op.Valid() {
		return "", nil, fmt.Errorf("unsupported comparison operator %q", cmp.Op)
	}
	left, leftParams, err := c.compileExpr(cmp.Left)
	if err != nil {
		return "", nil, fmt.Errorf("left operand: %w", err)
	}
	right, rightParams, err := c.compileExpr(cmp.Right)
	if err != nil {
		return "", nil, fmt.Errorf("right operand: %w", err)
	}
	return fmt.Sprintf("%s %s %s", left, cmp.Op, right), append(leftParams, rightParams...), nil
}

// compileExpr renders a lowered expression.
func (c *SQLCompiler) compileExpr(e queryir.Expr) (string, []any, error) {
	switch expr := e.(type) {
	case queryir.Field:
		return expr.Name, nil, nil
	case queryir.Literal:
		param, err := ir.DriverValue(expr.Value)
		if err != nil {
			return "", nil, fmt.Errorf("convert value: %w", err)
		}
		return "?", []any{param}, nil
	case queryir.Bound:
		val, err := c.boundValue(expr.Var)
		if err != nil {
			return "", nil, err
		}
		return "?", []any{val}, nil
	case queryir.Fragment:
		return expr.SQL, nil, nil
	case queryir.FuncCall:
		parts := make([]string, len(expr.Args))
		var params []any
		for i, a := range expr.Args {
			sql, p, err := c.compileExpr(a)
			if err != nil {
				return "", nil, fmt.Errorf("%s argument %d: %w", expr.Name, i, err)
			}
			parts[i] = sql
			params = append(params, p...)
		}
		return fmt.Sprintf("%s(%s)", expr.Name, strings.Join(parts, ", ")), params, nil
	case queryir.Call:
		return "", nil, fmt.Errorf("call to %s was not lowered", expr.Func)
	default:
		return "", nil, fmt.Errorf("unsupported expression type: %T", e)
	}
}

func (c *SQLCompiler) boundValue(name string) (any, error) {
	val, ok := c.BoundValues[name]
	if !ok {
		return nil, fmt.Errorf("no value bound for %q", name)
	}
	return val, nil
}
