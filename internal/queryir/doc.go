// Package queryir provides the abstract query representation that queries
// are written in before the SQL compiler lowers them.
//
// ARCHITECTURE:
//
//	[query author] → [Query IR] → [model translation] → [SQL Backend]
//
// A query author writes host-level Call nodes (for example a DateDiff call
// with an enumeration literal as its first argument). The SQL compiler asks
// the model for each function's translator, which replaces the Call with a
// native FuncCall whose arguments may include raw Fragment syntax. Only
// translators produce Fragment and FuncCall nodes.
//
// NODES:
//
//   - Query: Select
//   - Predicate: Equals, BoundEquals, And, Compare
//   - Expr: Field, Literal, Bound, Call, Fragment, FuncCall
//
// SEALED INTERFACES:
//
// Query, Predicate and Expr are sealed with marker methods. Only types in
// this package implement them, so backends can switch exhaustively:
//
//	switch e := expr.(type) {
//	case queryir.Field:
//	case queryir.Literal:
//	...
//	}
//
// IMMUTABILITY:
//
// Trees are values. RewriteExpr and RewritePredicate return new trees and
// never modify their input, so one query may be compiled concurrently by
// several compilers.
//
// PORTABILITY:
//
// Validate reports features that tie a query to the SQL backend: raw
// fragments, native function calls and NULL comparisons. Such queries still
// compile; the warnings only inform.
//
// All literal values are ir.IRValue types (no floats).
package queryir
