package cypherguard

import (
	"go.uber.org/zap"

	"github.com/rlch/cypherguard/clauseorder"
	"github.com/rlch/cypherguard/extract"
	"github.com/rlch/cypherguard/grammar"
	"github.com/rlch/cypherguard/schema"
	"github.com/rlch/cypherguard/typecheck"
	"github.com/rlch/cypherguard/validate"
)

// Result is the outcome of one Validate call.
type Result struct {
	// Valid is true iff Errors is empty and, in Strict mode, TypeErrors is
	// also empty.
	Valid bool

	// Errors holds every structural problem found: undefined labels,
	// relationship types, properties, variables, path variables, and
	// invalid relationship connections. Never short-circuited -- a single
	// call reports everything wrong with the query.
	Errors []*validate.Error

	// TypeWarnings and TypeErrors are populated only when Options.TypeChecking
	// is Warnings or Strict; both are always non-nil-but-possibly-empty
	// slices so the result shape never changes across modes.
	TypeWarnings []*typecheck.Issue
	TypeErrors   []*typecheck.Issue
}

// Validate parses query, checks its clause order, extracts its semantic
// elements, and validates them against sch. A ParseError is returned alone
// (no Result) when the query does not conform to the supported grammar,
// nests an expression deeper than Options.MaxExpressionDepth allows, or
// violates the clause-order state machine: parse errors always
// short-circuit, and no semantic analysis is attempted.
func Validate(query string, sch *schema.Schema, opts Options) (*Result, error) {
	log := opts.Logger

	script, err := grammar.Parse(query)
	if err != nil {
		log.Error("parse", err, zap.Int("query_len", len(query)))
		return nil, &ParseError{Err: err}
	}
	log.Trace("parsed", zap.Int("query_len", len(query)))

	if err := grammar.CheckDepth(script, opts.resolvedMaxDepth()); err != nil {
		log.Error("depth_check", err)
		return nil, &ParseError{Err: err}
	}

	if err := clauseorder.CheckQuery(script); err != nil {
		log.Error("clause_order", err)
		return nil, &ParseError{Err: err}
	}
	log.Trace("clause_order_ok")

	qe := extract.Extract(script)
	log.Trace("extracted",
		zap.Int("property_accesses", len(qe.PropertyAccesses)),
		zap.Int("relationship_uses", len(qe.RelationshipUses)),
	)

	structuralErrs := validate.Check(qe, sch)
	if structuralErrs == nil {
		structuralErrs = []*validate.Error{}
	}
	log.Trace("validated", zap.Int("errors", len(structuralErrs)))

	warnings, typeErrs := typecheck.Check(qe, sch, opts.TypeChecking)
	if warnings == nil {
		warnings = []*typecheck.Issue{}
	}
	if typeErrs == nil {
		typeErrs = []*typecheck.Issue{}
	}

	result := &Result{
		Errors:       structuralErrs,
		TypeWarnings: warnings,
		TypeErrors:   typeErrs,
	}
	result.Valid = len(result.Errors) == 0 && (opts.TypeChecking != typecheck.Strict || len(result.TypeErrors) == 0)
	return result, nil
}
