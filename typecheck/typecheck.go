// Package typecheck implements the opt-in, blocklist-based type-compatibility
// check over property comparisons. It never runs unless a caller asks for
// it: the structural validator in package validate is complete without it.
//
// The return-type resolution here mirrors a Cypher-function type-inference
// walk driven off the postfix-suffix chain, retargeted from a reflective
// Go type model onto the schema's flat declared-type enum, since a Cypher
// property's declared type is always one of the enumerated tags or
// Unknown -- never a recursive Go shape.
package typecheck

import (
	"fmt"
	"strings"

	"github.com/rlch/cypherguard/extract"
	"github.com/rlch/cypherguard/schema"
)

// Mode selects how the checker behaves.
type Mode string

// The three modes the core specifies.
const (
	Off      Mode = "off"
	Warnings Mode = "warnings"
	Strict   Mode = "strict"
)

// ParseMode parses a mode string case-insensitively, defaulting to Off for
// anything unrecognised -- matching the schema.ParseType convention of
// never failing on an unrecognised tag.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(s)); m {
	case Warnings, Strict:
		return m
	default:
		return Off
	}
}

// Severity classifies a TypeIssue.
type Severity string

// The two severities the blocklist can produce.
const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is one type-compatibility finding against a single property
// comparison.
type Issue struct {
	Severity   Severity
	Variable   string
	Property   string
	Declared   schema.Type
	ComparedTo schema.Type
	Message    string
	Suggestion string
}

// pair is an unordered pair of types, used as a blocklist key. Construction
// always sorts so (A, B) and (B, A) hash identically, which is what makes
// the relation symmetric by fiat rather than by having to enumerate both
// orderings in blocklist.
type pair struct{ a, b schema.Type }

func newPair(a, b schema.Type) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// blocklist is the closed set of disallowed pairings. Everything else --
// including every pairing involving schema.TypeUnknown -- is allowed. This
// is deliberately small: the point of a blocklist design is that silence
// means "compatible", so new types never need a blanket compatibility
// entry, only their specific disallowed pairings.
var blocklist = map[pair]Severity{
	newPair(schema.TypeString, schema.TypeDate):     SeverityError,
	newPair(schema.TypeString, schema.TypeDateTime): SeverityError,
	newPair(schema.TypeString, schema.TypeBoolean):  SeverityError,
	newPair(schema.TypeString, schema.TypeInteger):  SeverityWarning,
	newPair(schema.TypeString, schema.TypeFloat):    SeverityWarning,
}

// Check runs the blocklist type check over every PropertyComparison in qe,
// resolving each property's declared type via sch. It never mutates qe or
// sch. A mode-Off call (including the zero value) always returns nil, nil,
// so callers that never opt in see no behavior change.
//
// Mode governs not just whether checking runs but how findings are
// bucketed: in Warnings mode every finding -- regardless of its table
// severity -- is informational, so it is returned as a warning and the
// error slice is always empty (a String-vs-Date mismatch, which the
// blocklist tags Error, still comes back as a warning when the caller only
// asked for Warnings). Strict mode is the one place severity gates
// anything: an Error-severity finding becomes an error (and so can flip
// Valid to false); a Warning-severity finding is still informational.
func Check(qe *extract.QueryElements, sch *schema.Schema, mode Mode) (warnings, errors []*Issue) {
	if mode == Off || mode == "" {
		return nil, nil
	}
	for _, cmp := range qe.PropertyComparisons {
		declared, ok := declaredType(qe, sch, cmp.Variable, cmp.Property)
		if !ok {
			continue
		}
		issue := checkComparison(cmp, declared)
		if issue == nil {
			continue
		}
		if mode == Strict && issue.Severity == SeverityError {
			errors = append(errors, issue)
		} else {
			warnings = append(warnings, issue)
		}
	}
	return warnings, errors
}

func declaredType(qe *extract.QueryElements, sch *schema.Schema, variable, property string) (schema.Type, bool) {
	if label, ok := qe.VariableNodeBindings[variable]; ok {
		if p, found := sch.NodeProperty(label, property); found {
			return p.Type, true
		}
		return "", false
	}
	if relType, ok := qe.VariableRelationshipBindings[variable]; ok {
		if p, found := sch.RelProperty(relType, property); found {
			return p.Type, true
		}
		return "", false
	}
	return "", false
}

// checkComparison applies the absorption and blocklist rules to one
// comparison. An Unknown operand never produces an issue in any mode --
// this holds unconditionally because Unknown never appears as a blocklist
// key.
func checkComparison(cmp extract.PropertyComparison, declared schema.Type) *Issue {
	compared := cmp.ValueTypeHint
	if cmp.ValueKind == extract.ValueComputed {
		compared = foldComputed(cmp.Computed)
	}
	if declared == schema.TypeUnknown || compared == schema.TypeUnknown || compared == "" {
		return nil
	}
	sev, blocked := blocklist[newPair(declared, compared)]
	if !blocked {
		return nil
	}
	issue := &Issue{
		Severity:   sev,
		Variable:   cmp.Variable,
		Property:   cmp.Property,
		Declared:   declared,
		ComparedTo: compared,
		Message: fmt.Sprintf(
			"%s.%s is declared %s but compared to %s",
			cmp.Variable, cmp.Property, typeNames[declared], typeNames[compared],
		),
	}
	if isDateLike(declared) && compared == schema.TypeString || declared == schema.TypeString && isDateLike(compared) {
		issue.Suggestion = suggestDateWrap(cmp, declared)
	}
	return issue
}

// typeNames is the display name an issue message uses for each blockable
// declared-type tag.
var typeNames = map[schema.Type]string{
	schema.TypeString: "String", schema.TypeInteger: "Integer", schema.TypeFloat: "Float",
	schema.TypeBoolean: "Boolean", schema.TypeDate: "Date", schema.TypeDateTime: "DateTime",
}

func isDateLike(t schema.Type) bool {
	return t == schema.TypeDate || t == schema.TypeDateTime
}

// suggestDateWrap gives the canonical String-vs-Date fix: wrap the property
// side in date(...) if the declared type is the string, or suggest a
// date('YYYY-MM-DD') literal on the value side otherwise.
func suggestDateWrap(cmp extract.PropertyComparison, declared schema.Type) string {
	if declared == schema.TypeString {
		return fmt.Sprintf("wrap the property in date(...): date(%s.%s)", cmp.Variable, cmp.Property)
	}
	return fmt.Sprintf("compare against a parsed date literal, e.g. date('YYYY-MM-DD'), not a bare %s.%s string", cmp.Variable, cmp.Property)
}
