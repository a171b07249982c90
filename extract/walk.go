package extract

import (
	"strings"

	"github.com/rlch/cypherguard/grammar"
	"github.com/rlch/cypherguard/schema"
)

// walkExpr descends through every precedence level looking for property
// accesses, property comparisons, path-function arguments, and nested
// patterns (pattern comprehensions, predicates, EXISTS subqueries).
func walkExpr(e *grammar.Expression, qe *QueryElements) {
	if e == nil {
		return
	}
	walkXor(e.Left, qe)
	for _, t := range e.Right {
		walkXor(t.Expr, qe)
	}
}

func walkXor(x *grammar.XorExpr, qe *QueryElements) {
	if x == nil {
		return
	}
	walkAnd(x.Left, qe)
	for _, t := range x.Right {
		walkAnd(t.Expr, qe)
	}
}

func walkAnd(a *grammar.AndExpr, qe *QueryElements) {
	if a == nil {
		return
	}
	walkNot(a.Left, qe)
	for _, t := range a.Right {
		walkNot(t.Expr, qe)
	}
}

func walkNot(n *grammar.NotExpr, qe *QueryElements) {
	if n == nil {
		return
	}
	walkComparison(n.Expr, qe)
}

func walkComparison(c *grammar.ComparisonExpr, qe *QueryElements) {
	if c == nil {
		return
	}
	walkAddSub(c.Left, qe)
	if len(c.Right) == 1 {
		if variable, prop, ok := asPropertyAccess(c.Left); ok {
			if kind, hint, fn, computed, ok := valueKindOf(c.Right[0].Expr); ok {
				qe.PropertyComparisons = append(qe.PropertyComparisons, PropertyComparison{
					Variable:      variable,
					Property:      prop,
					Operator:      c.Right[0].Op,
					ValueKind:     kind,
					ValueTypeHint: hint,
					FunctionName:  fn,
					Computed:      computed,
				})
			}
		}
	}
	for _, t := range c.Right {
		walkAddSub(t.Expr, qe)
	}
}

// asPropertyAccess reports whether add is exactly a bare `variable.property`
// access with no surrounding arithmetic.
func asPropertyAccess(add *grammar.AddSubExpr) (variable, property string, ok bool) {
	if add == nil || len(add.Right) != 0 {
		return "", "", false
	}
	mult := add.Left
	if mult == nil || len(mult.Right) != 0 {
		return "", "", false
	}
	pow := mult.Left
	if pow == nil || len(pow.Right) != 0 {
		return "", "", false
	}
	unary := pow.Left
	if unary == nil || unary.Op != "" {
		return "", "", false
	}
	postfix := unary.Expr
	if postfix == nil || postfix.Atom == nil || postfix.Atom.Variable == "" {
		return "", "", false
	}
	if len(postfix.Suffixes) != 1 || postfix.Suffixes[0].Property == "" {
		return "", "", false
	}
	return grammar.UnescapeIdent(postfix.Atom.Variable), grammar.UnescapeIdent(postfix.Suffixes[0].Property), true
}

// valueKindOf classifies a right-hand comparison operand: a bare literal,
// parameter, or call to a recognised typed function, or -- when add chains
// one or more +/-/|| terms onto its left operand -- a ValueComputed whose
// per-operand types are reported via computed for the type checker to fold
// through the +/|| ambiguity itself (extract has no business resolving
// that; it only recognises operands).
func valueKindOf(add *grammar.AddSubExpr) (kind ValueKind, hint schema.Type, fnName string, computed []ComputedOperand, ok bool) {
	if add == nil {
		return 0, "", "", nil, false
	}
	if len(add.Right) == 0 {
		return simpleValueKind(add.Left)
	}
	first, ok := simpleOperandType(add.Left)
	if !ok {
		return 0, "", "", nil, false
	}
	ops := make([]ComputedOperand, 0, len(add.Right)+1)
	ops = append(ops, ComputedOperand{Type: first})
	for _, term := range add.Right {
		t, ok := simpleOperandType(term.Expr)
		if !ok {
			return 0, "", "", nil, false
		}
		ops = append(ops, ComputedOperand{Type: t, Op: term.Op})
	}
	return ValueComputed, "", "", ops, true
}

// simpleValueKind classifies a single, non-compound MultDivExpr operand.
func simpleValueKind(mult *grammar.MultDivExpr) (kind ValueKind, hint schema.Type, fnName string, computed []ComputedOperand, ok bool) {
	atom, ok := leafAtom(mult)
	if !ok {
		return 0, "", "", nil, false
	}
	switch {
	case atom.Literal != nil:
		return ValueLiteral, literalTypeHint(atom.Literal), "", nil, true
	case atom.Parameter != nil:
		return ValueParameter, schema.TypeUnknown, "", nil, true
	case atom.FunctionCall != nil:
		name := strings.ToLower(atom.FunctionCall.Name.String())
		if t, known := typedFunctions[name]; known {
			return ValueTypedFunction, t, name, nil, true
		}
		return 0, "", "", nil, false
	default:
		return 0, "", "", nil, false
	}
}

// simpleOperandType resolves just the type of a single, non-compound
// MultDivExpr operand -- the same recognised shapes as simpleValueKind,
// without distinguishing which kind produced it.
func simpleOperandType(mult *grammar.MultDivExpr) (schema.Type, bool) {
	atom, ok := leafAtom(mult)
	if !ok {
		return "", false
	}
	switch {
	case atom.Literal != nil:
		return literalTypeHint(atom.Literal), true
	case atom.Parameter != nil:
		return schema.TypeUnknown, true
	case atom.FunctionCall != nil:
		name := strings.ToLower(atom.FunctionCall.Name.String())
		if t, known := typedFunctions[name]; known {
			return t, true
		}
		return "", false
	default:
		return "", false
	}
}

// leafAtom unwraps a MultDivExpr down to its Atom, requiring every
// intervening level (MultDiv, Power, postfix suffixes) to be bare -- the
// same "no surrounding arithmetic" shape asPropertyAccess requires on the
// left-hand side, applied to a right-hand operand.
func leafAtom(mult *grammar.MultDivExpr) (*grammar.Atom, bool) {
	if mult == nil || len(mult.Right) != 0 {
		return nil, false
	}
	pow := mult.Left
	if pow == nil || len(pow.Right) != 0 {
		return nil, false
	}
	unary := pow.Left
	if unary == nil {
		return nil, false
	}
	postfix := unary.Expr
	if postfix == nil || postfix.Atom == nil || len(postfix.Suffixes) != 0 {
		return nil, false
	}
	return postfix.Atom, true
}

// bareVariable reports whether e is nothing but a single variable
// reference, with no arithmetic or suffixes.
func bareVariable(e *grammar.Expression) (string, bool) {
	if e == nil || len(e.Right) != 0 {
		return "", false
	}
	x := e.Left
	if x == nil || len(x.Right) != 0 {
		return "", false
	}
	and := x.Left
	if and == nil || len(and.Right) != 0 {
		return "", false
	}
	not := and.Left
	if not == nil || not.Not {
		return "", false
	}
	cmp := not.Expr
	if cmp == nil || len(cmp.Right) != 0 {
		return "", false
	}
	add := cmp.Left
	if add == nil || len(add.Right) != 0 {
		return "", false
	}
	mult := add.Left
	if mult == nil || len(mult.Right) != 0 {
		return "", false
	}
	pow := mult.Left
	if pow == nil || len(pow.Right) != 0 {
		return "", false
	}
	unary := pow.Left
	if unary == nil || unary.Op != "" {
		return "", false
	}
	postfix := unary.Expr
	if postfix == nil || len(postfix.Suffixes) != 0 || postfix.Atom == nil || postfix.Atom.Variable == "" {
		return "", false
	}
	return grammar.UnescapeIdent(postfix.Atom.Variable), true
}

func literalTypeHint(l *grammar.Literal) schema.Type {
	switch {
	case l.IsString():
		return schema.TypeString
	case l.IsFloat():
		return schema.TypeFloat
	case l.IsInt():
		return schema.TypeInteger
	case l.IsBool():
		return schema.TypeBoolean
	default:
		return schema.TypeUnknown
	}
}

func walkAddSub(a *grammar.AddSubExpr, qe *QueryElements) {
	if a == nil {
		return
	}
	walkMultDiv(a.Left, qe)
	for _, t := range a.Right {
		walkMultDiv(t.Expr, qe)
	}
}

func walkMultDiv(m *grammar.MultDivExpr, qe *QueryElements) {
	if m == nil {
		return
	}
	walkPower(m.Left, qe)
	for _, t := range m.Right {
		walkPower(t.Expr, qe)
	}
}

func walkPower(p *grammar.PowerExpr, qe *QueryElements) {
	if p == nil {
		return
	}
	walkUnary(p.Left, qe)
	for _, t := range p.Right {
		walkUnary(t.Expr, qe)
	}
}

func walkUnary(u *grammar.UnaryExpr, qe *QueryElements) {
	if u == nil {
		return
	}
	walkPostfix(u.Expr, qe)
}

func walkPostfix(p *grammar.PostfixExpr, qe *QueryElements) {
	if p == nil {
		return
	}
	walkAtom(p.Atom, qe)
	base := ""
	if p.Atom != nil {
		base = grammar.UnescapeIdent(p.Atom.Variable)
	}
	for _, s := range p.Suffixes {
		switch {
		case s.Property != "":
			if base != "" {
				qe.PropertyAccesses = append(qe.PropertyAccesses, PropertyAccess{
					Variable: base,
					Property: grammar.UnescapeIdent(s.Property),
				})
			}
		case s.Index != nil:
			walkExpr(s.Index.Start, qe)
			walkExpr(s.Index.End, qe)
		case s.In != nil:
			walkAddSub(s.In.Expr, qe)
		case s.StringPred != nil:
			walkAddSub(s.StringPred.StartsWith, qe)
			walkAddSub(s.StringPred.EndsWith, qe)
			walkAddSub(s.StringPred.Contains, qe)
		}
	}
}

func walkAtom(a *grammar.Atom, qe *QueryElements) {
	if a == nil {
		return
	}
	switch {
	case a.ListComprehension != nil:
		lc := a.ListComprehension
		qe.DefinedNames[grammar.UnescapeIdent(lc.Variable)] = true
		walkExpr(lc.Source, qe)
		walkWhere(lc.Where, qe)
		walkExpr(lc.Mapping, qe)
	case a.PatternComprehension != nil:
		pc := a.PatternComprehension
		if pc.Var != "" {
			name := grammar.UnescapeIdent(pc.Var)
			qe.DefinedNames[name] = true
			qe.PathVariables[name] = true
		}
		bindRelationshipChain(pc.Pattern, qe)
		useRelationshipChain(pc.Pattern, qe)
		walkWhere(pc.Where, qe)
		walkExpr(pc.Mapping, qe)
	case a.CaseExpr != nil:
		ce := a.CaseExpr
		walkExpr(ce.Input, qe)
		for _, w := range ce.Whens {
			walkExpr(w.When, qe)
			walkExpr(w.Then, qe)
		}
		walkExpr(ce.Else, qe)
	case a.FilterPredicate != nil:
		fp := a.FilterPredicate
		qe.DefinedNames[grammar.UnescapeIdent(fp.Variable)] = true
		walkExpr(fp.Source, qe)
		walkWhere(fp.Where, qe)
	case a.ExistsSubquery != nil:
		es := a.ExistsSubquery
		if es.Query != nil {
			for _, clauses := range es.Query.AllClauses() {
				for _, c := range clauses {
					bindClause(c, qe)
				}
			}
			for _, clauses := range es.Query.AllClauses() {
				for _, c := range clauses {
					walkClause(c, qe)
				}
			}
		}
		if es.Pattern != nil {
			bindPattern(es.Pattern, qe)
			usePattern(es.Pattern, qe)
		}
	case a.PatternPredicate != nil:
		bindRelationshipChain(a.PatternPredicate, qe)
		useRelationshipChain(a.PatternPredicate, qe)
	case a.Parenthesized != nil:
		walkExpr(a.Parenthesized, qe)
	case a.MapProjection != nil:
		mp := a.MapProjection
		subject := grammar.UnescapeIdent(mp.Subject)
		for _, item := range mp.Items {
			switch {
			case item.DotName != "":
				qe.PropertyAccesses = append(qe.PropertyAccesses, PropertyAccess{
					Variable: subject,
					Property: grammar.UnescapeIdent(item.DotName),
				})
			case item.Value != nil:
				walkExpr(item.Value, qe)
			}
		}
	case a.FunctionCall != nil:
		name := strings.ToLower(a.FunctionCall.Name.String())
		if pathFunctions[name] && len(a.FunctionCall.Args) == 1 {
			if v, ok := bareVariable(a.FunctionCall.Args[0]); ok {
				qe.PathFunctionArgs = append(qe.PathFunctionArgs, PathFunctionArg{FunctionName: name, Variable: v})
			}
		}
		for _, arg := range a.FunctionCall.Args {
			walkExpr(arg, qe)
		}
	case a.Literal != nil:
		if a.Literal.List != nil {
			for _, item := range a.Literal.List.Items {
				walkExpr(item, qe)
			}
		}
		if a.Literal.Map != nil {
			for _, pair := range a.Literal.Map.Pairs {
				walkExpr(pair.Value, qe)
			}
		}
	}
}
