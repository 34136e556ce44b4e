package queryir

import "fmt"

// RewriteFunc replaces one node. Returning the node unchanged is allowed.
type RewriteFunc func(Expr) (Expr, error)

// RewriteExpr applies fn bottom-up: children are rewritten first, then fn
// sees the rebuilt parent. The input tree is never modified; argument
// slices are always freshly allocated.
func RewriteExpr(e Expr, fn RewriteFunc) (Expr, error) {
	switch n := e.(type) {
	case nil:
		return nil, fmt.Errorf("cannot rewrite nil expression")
	case Call:
		args, err := rewriteArgs(n.Args, fn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Func, err)
		}
		return fn(Call{Func: n.Func, Args: args})
	case *Call:
		return RewriteExpr(*n, fn)
	case FuncCall:
		args, err := rewriteArgs(n.Args, fn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Name, err)
		}
		return fn(FuncCall{Name: n.Name, Args: args, Type: n.Type, Nullable: n.Nullable})
	case *FuncCall:
		return RewriteExpr(*n, fn)
	default:
		return fn(e)
	}
}

func rewriteArgs(args []Expr, fn RewriteFunc) ([]Expr, error) {
	out := make([]Expr, len(args))
	for i, a := range args {
		r, err := RewriteExpr(a, fn)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

// RewritePredicate applies RewriteExpr to every expression inside p and
// returns a new predicate tree.
func RewritePredicate(p Predicate, fn RewriteFunc) (Predicate, error) {
	switch n := p.(type) {
	case nil:
		return nil, nil
	case Compare:
		left, err := RewriteExpr(n.Left, fn)
		if err != nil {
			return nil, fmt.Errorf("left operand: %w", err)
		}
		right, err := RewriteExpr(n.Right, fn)
		if err != nil {
			return nil, fmt.Errorf("right operand: %w", err)
		}
		return Compare{Left: left, Op: n.Op, Right: right}, nil
	case *Compare:
		return RewritePredicate(*n, fn)
	case And:
		preds := make([]Predicate, len(n.Predicates))
		for i, sub := range n.Predicates {
			r, err := RewritePredicate(sub, fn)
			if err != nil {
				return nil, err
			}
			preds[i] = r
		}
		return And{Predicates: preds}, nil
	case *And:
		return RewritePredicate(*n, fn)
	default:
		// Equals and BoundEquals hold no expressions.
		return p, nil
	}
}
