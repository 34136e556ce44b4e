package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/datediff/internal/ir"
)

// Query is a sealed interface for query nodes.
type Query interface {
	queryNode()
}

// Predicate is a sealed interface for filter conditions.
type Predicate interface {
	predicateNode()
}

// Expr is a sealed interface for scalar expressions.
type Expr interface {
	exprNode()
}

// Select is a single-source query.
//
//	SELECT <bindings>, <computed> FROM <from> WHERE <filter>
//
// Example:
//
//	Select{
//	  From:     "people",
//	  Filter: Compare{
//	    Left:  Call{Func: "DateDiff", Args: []Expr{Literal{Value: ir.IRInt(2)}, Bound{Var: "now"}, Field{Name: "birthday"}}},
//	    Op:    OpLt,
//	    Right: Literal{Value: ir.IRInt(50)},
//	  },
//	  Bindings: map[string]string{"id": "id", "name": "name"},
//	}
type Select struct {
	From     string            // View or table name
	Filter   Predicate         // WHERE conditions (nil = no filter)
	Bindings map[string]string // source_field → output name
	Computed map[string]Expr   // output name → expression
}

func (Select) queryNode() {}

// Equals is field = literal.
type Equals struct {
	Field string
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// BoundEquals is field = bound variable. The value is supplied at compile
// time through the compiler's bound values.
type BoundEquals struct {
	Field    string
	BoundVar string
}

func (BoundEquals) predicateNode() {}

// And is a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// CompareOp is a binary comparison operator.
type CompareOp string

const (
	OpEq CompareOp = "="
	OpNe CompareOp = "<>"
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// Valid reports whether op is one of the defined operators.
func (op CompareOp) Valid() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Compare is <left> <op> <right> over arbitrary expressions. A comparison
// with an unknown (NULL) side is never true.
type Compare struct {
	Left  Expr
	Op    CompareOp
	Right Expr
}

func (Compare) predicateNode() {}

// Field references a column of the query source.
type Field struct {
	Name string
}

func (Field) exprNode() {}

// Literal is a constant value. It is always sent as a parameter.
type Literal struct {
	Value ir.IRValue
}

func (Literal) exprNode() {}

// Bound references a value supplied at compile time. Bound values are
// never constant for translation purposes.
type Bound struct {
	Var string
}

func (Bound) exprNode() {}

// Call invokes a function registered in the model. The SQL compiler replaces
// it with the function's translation; a Call never reaches the SQL text.
type Call struct {
	Func string
	Args []Expr
}

func (Call) exprNode() {}

// Fragment is raw SQL emitted verbatim. Only translators create fragments,
// and only from closed enumerations.
type Fragment struct {
	SQL string
}

func (Fragment) exprNode() {}

// FuncCall is a native SQL function call with a declared result type.
//
//	DATEDIFF(day, ?, birthday)
type FuncCall struct {
	Name     string
	Args     []Expr
	Type     Type
	Nullable bool
}

func (FuncCall) exprNode() {}

// Type is a column, parameter or result type.
type Type string

const (
	TypeInt         Type = "int"
	TypeString      Type = "string"
	TypeBool        Type = "bool"
	TypeTimestamp   Type = "timestamp"
	TypeTimestampTZ Type = "timestamptz"
	TypeUnit        Type = "unit"
)

// ParseType resolves a type name, ignoring case.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeInt, TypeString, TypeBool, TypeTimestamp, TypeTimestampTZ, TypeUnit:
		return t, nil
	}
	return "", fmt.Errorf("unknown type %q", s)
}
