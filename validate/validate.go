package validate

import (
	"github.com/rlch/cypherguard/extract"
	"github.com/rlch/cypherguard/schema"
)

// Rule is one structural check, run over the full QueryElements/Schema pair
// and appending whatever it finds to the shared result slice. Modelled on
// a small, fixed analyzer-rule registry so that adding a check is adding
// one Rule, not threading a new condition through a monolithic function.
type Rule struct {
	Name string
	Doc  string
	Run  func(qe *extract.QueryElements, sch *schema.Schema, errs *[]*Error)
}

// DefaultRules returns the five structural rules the core specifies.
func DefaultRules() []*Rule {
	return []*Rule{
		undefinedLabelsRule,
		undefinedRelationshipTypesRule,
		invalidRelationshipConnectionsRule,
		undefinedPropertiesRule,
		undefinedPathVariablesRule,
	}
}

// Check runs every rule and returns the accumulated structural errors.
// Checks never short-circuit: a single call surfaces everything wrong with
// the query against the schema.
func Check(qe *extract.QueryElements, sch *schema.Schema) []*Error {
	var errs []*Error
	for _, r := range DefaultRules() {
		r.Run(qe, sch, &errs)
	}
	return errs
}

var undefinedLabelsRule = &Rule{
	Name: "undefined-label",
	Doc:  "Reports node labels bound in the query that the schema does not declare.",
	Run: func(qe *extract.QueryElements, sch *schema.Schema, errs *[]*Error) {
		for _, label := range qe.VariableNodeBindings {
			if !sch.HasLabel(label) {
				*errs = append(*errs, undefinedLabel(label))
			}
		}
	},
}

var undefinedRelationshipTypesRule = &Rule{
	Name: "undefined-relationship-type",
	Doc:  "Reports relationship types bound in the query that the schema does not declare.",
	Run: func(qe *extract.QueryElements, sch *schema.Schema, errs *[]*Error) {
		for _, relType := range qe.VariableRelationshipBindings {
			if !sch.HasRelationshipType(relType) {
				*errs = append(*errs, undefinedRelationshipType(relType))
			}
		}
	},
}

var invalidRelationshipConnectionsRule = &Rule{
	Name: "invalid-relationship-connection",
	Doc:  "Reports (start label, type, end label) triples not permitted by the schema, when both labels are known.",
	Run: func(qe *extract.QueryElements, sch *schema.Schema, errs *[]*Error) {
		for _, use := range qe.RelationshipUses {
			if use.StartLabel == "*" || use.EndLabel == "*" || use.Type == "*" {
				continue
			}
			if !sch.AllowsConnection(use.StartLabel, use.Type, use.EndLabel) {
				*errs = append(*errs, invalidRelationshipConnection(use.StartLabel, use.Type, use.EndLabel))
			}
		}
	},
}

var undefinedPropertiesRule = &Rule{
	Name: "undefined-property",
	Doc:  "Reports property accesses the schema does not declare for the resolved label or relationship type, and variable references that were never bound.",
	Run: func(qe *extract.QueryElements, sch *schema.Schema, errs *[]*Error) {
		for _, access := range qe.PropertyAccesses {
			if label, ok := qe.VariableNodeBindings[access.Variable]; ok {
				if _, found := sch.NodeProperty(label, access.Property); !found {
					*errs = append(*errs, undefinedProperty(label, access.Property))
				}
				continue
			}
			if relType, ok := qe.VariableRelationshipBindings[access.Variable]; ok {
				if _, found := sch.RelProperty(relType, access.Property); !found {
					*errs = append(*errs, undefinedProperty(relType, access.Property))
				}
				continue
			}
			if qe.DefinedNames[access.Variable] {
				// Bound to a pattern or projection with no resolvable
				// label/type: nothing to check against.
				continue
			}
			*errs = append(*errs, undefinedVariable(access.Variable))
		}
	},
}

var undefinedPathVariablesRule = &Rule{
	Name: "undefined-path-variable",
	Doc:  "Reports length/nodes/relationships calls whose argument is not a bound path variable.",
	Run: func(qe *extract.QueryElements, sch *schema.Schema, errs *[]*Error) {
		for _, arg := range qe.PathFunctionArgs {
			if !qe.PathVariables[arg.Variable] {
				*errs = append(*errs, undefinedPathVariable(arg.Variable))
			}
		}
	},
}
