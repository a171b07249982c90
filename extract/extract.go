// Package extract performs the semantic extraction pass: two depth-first
// walks over a parsed query (bindings first, then everything else) that
// produce the QueryElements bundle the
// validator and type checker both consume. It never inspects a schema and
// never reports errors of its own — extraction always succeeds on an AST
// that parsed.
package extract

import (
	"github.com/rlch/cypherguard/grammar"
	"github.com/rlch/cypherguard/schema"
)

// ValueKind classifies the right-hand side of a property comparison.
type ValueKind int

// The recognised value kinds a comparison's right-hand side can take.
const (
	ValueUnknown ValueKind = iota
	ValueLiteral
	ValueParameter
	ValueTypedFunction
	// ValueComputed is a compound +/-/|| expression (e.g. `p.valid_from <=
	// x.a + x.b`) whose operands are each individually recognised but whose
	// combined type depends on resolving the +/|| ambiguity -- left to the
	// type checker, via Computed, rather than decided here.
	ValueComputed
)

// ComputedOperand is one term of a ValueComputed right-hand expression. Op
// is the operator joining it to the operand before it ("" for the first
// operand in the chain).
type ComputedOperand struct {
	Type schema.Type
	Op   string
}

// PropertyAccess is one `variable.property` read witnessed anywhere in the
// query.
type PropertyAccess struct {
	Variable string
	Property string
}

// PropertyComparison is a binary comparison whose left side is a property
// access and whose right side is a literal, parameter, a call to a
// recognised typed function, or a compound +/-/|| expression over such
// operands.
type PropertyComparison struct {
	Variable      string
	Property      string
	Operator      string
	ValueKind     ValueKind
	ValueTypeHint schema.Type
	// FunctionName is set when ValueKind is ValueTypedFunction.
	FunctionName string
	// Computed holds the left-to-right operand chain when ValueKind is
	// ValueComputed; empty otherwise.
	Computed []ComputedOperand
}

// RelationshipUse is one (start label, relationship type, end label) triple
// witnessed in a pattern, with "*" standing in for an unresolved label or
// type (an anonymous node, or a bound variable with no known label).
type RelationshipUse struct {
	StartLabel string
	Type       string
	EndLabel   string
}

// PathFunctionArg is a bare variable passed as the argument to one of the
// path functions length/nodes/relationships.
type PathFunctionArg struct {
	FunctionName string
	Variable     string
}

const wildcard = "*"

// pathFunctions is the closed set of functions whose sole argument must be
// a path variable.
var pathFunctions = map[string]bool{"length": true, "nodes": true, "relationships": true}

// QueryElements is the complete artefact of one extraction pass.
type QueryElements struct {
	VariableNodeBindings         map[string]string
	VariableRelationshipBindings map[string]string
	PropertyAccesses             []PropertyAccess
	PropertyComparisons          []PropertyComparison
	RelationshipUses             []RelationshipUse
	PathVariables                map[string]bool
	DefinedNames                 map[string]bool
	PathFunctionArgs             []PathFunctionArg
}

func newQueryElements() *QueryElements {
	return &QueryElements{
		VariableNodeBindings:         map[string]string{},
		VariableRelationshipBindings: map[string]string{},
		PathVariables:                map[string]bool{},
		DefinedNames:                 map[string]bool{},
	}
}

// typedFunctions is the closed set of function calls (keyed by lower-cased
// name) the extractor recognises as a typed value source for a property
// comparison. Function names themselves are never recorded as variables,
// so a call such as `count(u)` or `toUpper(u.name)` is never mistaken for
// an undefined variable.
var typedFunctions = map[string]schema.Type{
	"date":      schema.TypeDate,
	"datetime":  schema.TypeDateTime,
	"localtime": schema.TypeLocalTime,
	"time":      schema.TypeTime,
	"duration":  schema.TypeDuration,
	"tointeger": schema.TypeInteger,
	"tofloat":   schema.TypeFloat,
	"tostring":  schema.TypeString,
	"toboolean": schema.TypeBoolean,
}

// Extract walks every clause of script (including every UNION arm) and
// builds the combined QueryElements. Variable bindings follow
// first-binding-wins: the first node or relationship pattern that
// introduces a variable together with a label fixes that variable's label
// for the rest of the query, even if it is later rebound with no label or
// a different one.
func Extract(script *grammar.Script) *QueryElements {
	qe := newQueryElements()
	if script == nil || script.Query == nil {
		return qe
	}
	if script.Query.StandaloneCall != nil {
		walkStandaloneCall(script.Query.StandaloneCall, qe)
		return qe
	}
	if script.Query.RegularQuery == nil {
		return qe
	}

	clauseSets := script.Query.RegularQuery.AllClauses()

	// Pass 1: bind every variable to its first label/type so pass 2 can
	// resolve relationship endpoints correctly regardless of which
	// occurrence in the query introduced the label.
	for _, clauses := range clauseSets {
		for _, c := range clauses {
			bindClause(c, qe)
		}
	}
	// Pass 2: everything else (property access/comparisons, relationship
	// uses, path-function arguments, names defined by UNWIND/WITH/YIELD).
	for _, clauses := range clauseSets {
		for _, c := range clauses {
			walkClause(c, qe)
		}
	}
	return qe
}

func walkStandaloneCall(sc *grammar.StandaloneCall, qe *QueryElements) {
	if sc == nil {
		return
	}
	walkParenExprList(sc.Args, qe)
	if sc.Yield != nil && sc.Yield.Items != nil {
		walkYield(sc.Yield.Items, qe)
	}
}

// ----------------------------------------------------------------------------
// Pass 1: bindings
// ----------------------------------------------------------------------------

func bindClause(c *grammar.Clause, qe *QueryElements) {
	switch {
	case c.Reading != nil && c.Reading.Match != nil:
		bindPattern(c.Reading.Match.Pattern, qe)
	case c.Reading != nil && c.Reading.Call != nil && c.Reading.Call.Subquery != nil:
		for _, clauses := range c.Reading.Call.Subquery.AllClauses() {
			for _, inner := range clauses {
				bindClause(inner, qe)
			}
		}
	case c.Updating != nil && c.Updating.Create != nil:
		bindPattern(c.Updating.Create.Pattern, qe)
	case c.Updating != nil && c.Updating.Merge != nil:
		bindPatternPart(c.Updating.Merge.Pattern, qe)
	}
}

func bindPattern(p *grammar.Pattern, qe *QueryElements) {
	if p == nil {
		return
	}
	for _, part := range p.Parts {
		bindPatternPart(part, qe)
	}
}

func bindPatternPart(part *grammar.PatternPart, qe *QueryElements) {
	if part == nil {
		return
	}
	if part.Var != "" {
		name := grammar.UnescapeIdent(part.Var)
		qe.DefinedNames[name] = true
		qe.PathVariables[name] = true
	}
	if part.PathFn != nil {
		bindRelationshipChain(part.PathFn.Pattern, qe)
		return
	}
	bindPatternElement(part.Element, qe)
}

func bindPatternElement(elem *grammar.PatternElement, qe *QueryElements) {
	if elem == nil {
		return
	}
	if elem.Paren != nil {
		bindPatternElement(elem.Paren, qe)
		return
	}
	bindNode(elem.Node, qe)
	for _, link := range elem.Chain {
		if link.Quantified != nil {
			bindRelationshipDetail(link.Quantified.Rel, qe)
			bindNode(link.Quantified.Node, qe)
			continue
		}
		bindRelationshipDetail(link.Rel, qe)
		bindNode(link.Node, qe)
	}
}

func bindRelationshipChain(p *grammar.RelationshipChainPattern, qe *QueryElements) {
	if p == nil {
		return
	}
	bindNode(p.Node, qe)
	for _, link := range p.Chain {
		if link.Quantified != nil {
			bindRelationshipDetail(link.Quantified.Rel, qe)
			bindNode(link.Quantified.Node, qe)
			continue
		}
		bindRelationshipDetail(link.Rel, qe)
		bindNode(link.Node, qe)
	}
}

func bindNode(n *grammar.NodePattern, qe *QueryElements) {
	if n == nil || n.Variable == "" {
		return
	}
	name := grammar.UnescapeIdent(n.Variable)
	qe.DefinedNames[name] = true
	if n.Labels == nil || len(n.Labels.Labels) == 0 {
		return
	}
	if _, bound := qe.VariableNodeBindings[name]; bound {
		return
	}
	qe.VariableNodeBindings[name] = grammar.UnescapeIdent(n.Labels.Labels[0])
}

func bindRelationshipDetail(rel *grammar.RelationshipPattern, qe *QueryElements) {
	if rel == nil || rel.Detail == nil {
		return
	}
	d := rel.Detail
	if d.Variable == "" {
		return
	}
	name := grammar.UnescapeIdent(d.Variable)
	qe.DefinedNames[name] = true
	if d.Types == nil || len(d.Types.Types) == 0 {
		return
	}
	if _, bound := qe.VariableRelationshipBindings[name]; bound {
		return
	}
	qe.VariableRelationshipBindings[name] = grammar.UnescapeIdent(d.Types.Types[0])
}

// ----------------------------------------------------------------------------
// Pass 2: accesses, comparisons, relationship uses, path variables
// ----------------------------------------------------------------------------

func walkClause(c *grammar.Clause, qe *QueryElements) {
	switch {
	case c.Reading != nil && c.Reading.Match != nil:
		usePattern(c.Reading.Match.Pattern, qe)
		walkWhere(c.Reading.Match.Where, qe)
	case c.Reading != nil && c.Reading.Unwind != nil:
		walkExpr(c.Reading.Unwind.Expr, qe)
		if c.Reading.Unwind.Symbol != "" {
			qe.DefinedNames[grammar.UnescapeIdent(c.Reading.Unwind.Symbol)] = true
		}
	case c.Reading != nil && c.Reading.Call != nil:
		walkCall(c.Reading.Call, qe)
	case c.Updating != nil && c.Updating.Create != nil:
		usePattern(c.Updating.Create.Pattern, qe)
	case c.Updating != nil && c.Updating.Merge != nil:
		usePatternPart(c.Updating.Merge.Pattern, qe)
		for _, action := range c.Updating.Merge.Actions {
			walkSetClause(action.Set, qe)
		}
	case c.Updating != nil && c.Updating.Delete != nil:
		for _, e := range c.Updating.Delete.Exprs {
			walkExpr(e, qe)
		}
	case c.Updating != nil && c.Updating.Set != nil:
		walkSetClause(c.Updating.Set, qe)
	case c.Updating != nil && c.Updating.Remove != nil:
		walkRemoveClause(c.Updating.Remove, qe)
	case c.With != nil:
		walkProjectionBody(c.With.Body, qe)
		walkWhere(c.With.Where, qe)
	case c.Return != nil:
		walkProjectionBody(c.Return.Body, qe)
	}
}

func walkCall(call *grammar.CallClause, qe *QueryElements) {
	if call == nil {
		return
	}
	if call.Subquery != nil {
		for _, clauses := range call.Subquery.AllClauses() {
			for _, inner := range clauses {
				walkClause(inner, qe)
			}
		}
		return
	}
	walkParenExprList(call.Args, qe)
	if call.Yield != nil {
		walkYield(call.Yield, qe)
	}
}

func walkYield(y *grammar.YieldClause, qe *QueryElements) {
	if y == nil {
		return
	}
	for _, item := range y.Items {
		name := item.Target
		if item.Source != "" {
			name = item.Target
		}
		qe.DefinedNames[grammar.UnescapeIdent(name)] = true
	}
	walkWhere(y.Where, qe)
}

func walkSetClause(s *grammar.SetClause, qe *QueryElements) {
	if s == nil {
		return
	}
	for _, item := range s.Items {
		if item.Property != nil {
			qe.PropertyAccesses = append(qe.PropertyAccesses, PropertyAccess{
				Variable: grammar.UnescapeIdent(item.Property.Base),
				Property: lastProp(item.Property),
			})
			walkExpr(item.PropertyExpr, qe)
			continue
		}
		if item.Variable != "" {
			walkExpr(item.VarExpr, qe)
			continue
		}
	}
}

func walkRemoveClause(r *grammar.RemoveClause, qe *QueryElements) {
	if r == nil {
		return
	}
	for _, item := range r.Items {
		if item.Property != nil {
			qe.PropertyAccesses = append(qe.PropertyAccesses, PropertyAccess{
				Variable: grammar.UnescapeIdent(item.Property.Base),
				Property: lastProp(item.Property),
			})
		}
	}
}

func lastProp(p *grammar.PropertyExpr) string {
	if p == nil {
		return ""
	}
	if len(p.Props) == 0 {
		return ""
	}
	return grammar.UnescapeIdent(p.Props[len(p.Props)-1])
}

func walkWhere(w *grammar.Where, qe *QueryElements) {
	if w == nil {
		return
	}
	walkExpr(w.Expr, qe)
}

func walkProjectionBody(b *grammar.ProjectionBody, qe *QueryElements) {
	if b == nil || b.Items == nil {
		return
	}
	for _, item := range b.Items.Items {
		walkExpr(item.Expr, qe)
		if item.Alias != "" {
			qe.DefinedNames[grammar.UnescapeIdent(item.Alias)] = true
		}
	}
	if b.Order != nil {
		for _, oi := range b.Order.Items {
			walkExpr(oi.Expr, qe)
		}
	}
	if b.Skip != nil {
		walkExpr(b.Skip.Expr, qe)
	}
	if b.Limit != nil {
		walkExpr(b.Limit.Expr, qe)
	}
}

func walkParenExprList(l *grammar.ParenExprList, qe *QueryElements) {
	if l == nil {
		return
	}
	for _, e := range l.Exprs {
		walkExpr(e, qe)
	}
}

// usePattern emits relationship uses for every part of a MATCH/CREATE
// pattern. Path variables are recorded in pass 1 by bindPatternPart.
func usePattern(p *grammar.Pattern, qe *QueryElements) {
	if p == nil {
		return
	}
	for _, part := range p.Parts {
		usePatternPart(part, qe)
	}
}

func usePatternPart(part *grammar.PatternPart, qe *QueryElements) {
	if part == nil {
		return
	}
	if part.PathFn != nil {
		useRelationshipChain(part.PathFn.Pattern, qe)
		return
	}
	usePatternElement(part.Element, qe)
}

func usePatternElement(elem *grammar.PatternElement, qe *QueryElements) {
	if elem == nil {
		return
	}
	if elem.Paren != nil {
		usePatternElement(elem.Paren, qe)
		return
	}
	prev := nodeLabel(elem.Node, qe)
	for _, link := range elem.Chain {
		var rel *grammar.RelationshipPattern
		var node *grammar.NodePattern
		if link.Quantified != nil {
			rel, node = link.Quantified.Rel, link.Quantified.Node
		} else {
			rel, node = link.Rel, link.Node
		}
		end := nodeLabel(node, qe)
		qe.RelationshipUses = append(qe.RelationshipUses, RelationshipUse{
			StartLabel: prev,
			Type:       relType(rel, qe),
			EndLabel:   end,
		})
		prev = end
	}
	walkPropertiesExpr(elem.Node, qe)
}

func useRelationshipChain(p *grammar.RelationshipChainPattern, qe *QueryElements) {
	if p == nil {
		return
	}
	prev := nodeLabel(p.Node, qe)
	for _, link := range p.Chain {
		var rel *grammar.RelationshipPattern
		var node *grammar.NodePattern
		if link.Quantified != nil {
			rel, node = link.Quantified.Rel, link.Quantified.Node
		} else {
			rel, node = link.Rel, link.Node
		}
		end := nodeLabel(node, qe)
		qe.RelationshipUses = append(qe.RelationshipUses, RelationshipUse{
			StartLabel: prev,
			Type:       relType(rel, qe),
			EndLabel:   end,
		})
		prev = end
	}
}

// walkPropertiesExpr walks the inline property map of a node pattern, if
// any, for nested parameter/expression discovery (property maps only ever
// hold literals/parameters in practice, but MapLiteral values are full
// expressions per the grammar).
func walkPropertiesExpr(n *grammar.NodePattern, qe *QueryElements) {
	if n == nil || n.Properties == nil || n.Properties.Map == nil {
		return
	}
	for _, pair := range n.Properties.Map.Pairs {
		walkExpr(pair.Value, qe)
	}
}

func nodeLabel(n *grammar.NodePattern, qe *QueryElements) string {
	if n == nil {
		return wildcard
	}
	if n.Variable != "" {
		if label, ok := qe.VariableNodeBindings[grammar.UnescapeIdent(n.Variable)]; ok {
			return label
		}
	}
	if n.Labels != nil && len(n.Labels.Labels) > 0 {
		return grammar.UnescapeIdent(n.Labels.Labels[0])
	}
	return wildcard
}

func relType(rel *grammar.RelationshipPattern, qe *QueryElements) string {
	if rel == nil || rel.Detail == nil {
		return wildcard
	}
	d := rel.Detail
	if d.Variable != "" {
		if t, ok := qe.VariableRelationshipBindings[grammar.UnescapeIdent(d.Variable)]; ok {
			return t
		}
	}
	if d.Types != nil && len(d.Types.Types) > 0 {
		return grammar.UnescapeIdent(d.Types.Types[0])
	}
	return wildcard
}
