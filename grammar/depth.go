package grammar

import "errors"

// DefaultMaxExpressionDepth bounds expression nesting depth so a
// pathological query (thousands of nested parentheses) fails fast with a
// ParseError instead of recursing deeply through the AST walkers.
const DefaultMaxExpressionDepth = 200

// ErrExpressionTooDeep is returned by CheckDepth when an expression nests
// more deeply than the configured maximum.
var ErrExpressionTooDeep = errors.New("grammar: expression nesting exceeds maximum depth")

// CheckDepth walks the expressions of MATCH ... WHERE filters, UNWIND
// sources, CALL arguments, DELETE targets, and WITH/RETURN projection
// items, and fails if any of them nests deeper than max. Nesting is counted
// through parenthesised sub-expressions and function-call arguments only.
// Other expressions (SET values, WITH ... WHERE, ORDER BY/SKIP/LIMIT,
// pattern property maps) are not checked. A max of zero or less disables
// the check.
func CheckDepth(script *Script, max int) error {
	if max <= 0 || script == nil || script.Query == nil {
		return nil
	}
	q := script.Query
	if q.StandaloneCall != nil {
		if err := checkCallArgsDepth(q.StandaloneCall.Args, max); err != nil {
			return err
		}
	}
	for _, clauses := range q.RegularQuery.AllClauses() {
		for _, c := range clauses {
			if err := checkClauseDepth(c, max); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkClauseDepth(c *Clause, max int) error {
	switch {
	case c.Reading != nil && c.Reading.Match != nil:
		if err := checkExprDepth(whereExpr(c.Reading.Match.Where), max, 1); err != nil {
			return err
		}
	case c.Reading != nil && c.Reading.Unwind != nil:
		return checkExprDepth(c.Reading.Unwind.Expr, max, 1)
	case c.Reading != nil && c.Reading.Call != nil:
		return checkCallArgsDepth(c.Reading.Call.Args, max)
	case c.Updating != nil && c.Updating.Delete != nil:
		for _, e := range c.Updating.Delete.Exprs {
			if err := checkExprDepth(e, max, 1); err != nil {
				return err
			}
		}
	case c.With != nil:
		return checkProjectionDepth(c.With.Body, max)
	case c.Return != nil:
		return checkProjectionDepth(c.Return.Body, max)
	}
	return nil
}

func whereExpr(w *Where) *Expression {
	if w == nil {
		return nil
	}
	return w.Expr
}

func checkCallArgsDepth(args *ParenExprList, max int) error {
	if args == nil {
		return nil
	}
	for _, e := range args.Exprs {
		if err := checkExprDepth(e, max, 1); err != nil {
			return err
		}
	}
	return nil
}

func checkProjectionDepth(body *ProjectionBody, max int) error {
	if body == nil || body.Items == nil {
		return nil
	}
	for _, item := range body.Items.Items {
		if err := checkExprDepth(item.Expr, max, 1); err != nil {
			return err
		}
	}
	return nil
}

func checkExprDepth(e *Expression, max, depth int) error {
	if e == nil {
		return nil
	}
	if depth > max {
		return ErrExpressionTooDeep
	}
	atoms := collectAtoms(e)
	for _, a := range atoms {
		if a.Parenthesized != nil {
			if err := checkExprDepth(a.Parenthesized, max, depth+1); err != nil {
				return err
			}
		}
		if a.FunctionCall != nil {
			for _, arg := range a.FunctionCall.Args {
				if err := checkExprDepth(arg, max, depth+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// collectAtoms returns every Atom reachable one precedence level below e,
// i.e. the atoms of e's direct operands (not recursing into them) so the
// caller controls depth accounting.
func collectAtoms(e *Expression) []*Atom {
	var atoms []*Atom
	walk := func(p *PostfixExpr) {
		if p != nil && p.Atom != nil {
			atoms = append(atoms, p.Atom)
		}
	}
	walkUnary := func(u *UnaryExpr) {
		if u != nil {
			walk(u.Expr)
		}
	}
	walkPower := func(p *PowerExpr) {
		if p == nil {
			return
		}
		walkUnary(p.Left)
		for _, t := range p.Right {
			walkUnary(t.Expr)
		}
	}
	walkMultDiv := func(m *MultDivExpr) {
		if m == nil {
			return
		}
		walkPower(m.Left)
		for _, t := range m.Right {
			walkPower(t.Expr)
		}
	}
	walkAddSub := func(a *AddSubExpr) {
		if a == nil {
			return
		}
		walkMultDiv(a.Left)
		for _, t := range a.Right {
			walkMultDiv(t.Expr)
		}
	}
	walkComparison := func(c *ComparisonExpr) {
		if c == nil {
			return
		}
		walkAddSub(c.Left)
		for _, t := range c.Right {
			walkAddSub(t.Expr)
		}
	}
	walkNot := func(n *NotExpr) {
		if n != nil {
			walkComparison(n.Expr)
		}
	}
	walkAnd := func(a *AndExpr) {
		if a == nil {
			return
		}
		walkNot(a.Left)
		for _, t := range a.Right {
			walkNot(t.Expr)
		}
	}
	walkXor := func(x *XorExpr) {
		if x == nil {
			return
		}
		walkAnd(x.Left)
		for _, t := range x.Right {
			walkAnd(t.Expr)
		}
	}
	walkXor(e.Left)
	for _, t := range e.Right {
		walkXor(t.Expr)
	}
	return atoms
}
