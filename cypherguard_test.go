package cypherguard_test

import (
	"testing"

	"github.com/rlch/cypherguard"
	"github.com/rlch/cypherguard/schema"
	"github.com/rlch/cypherguard/typecheck"
	"github.com/rlch/cypherguard/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSchema(t *testing.T, doc string) *schema.Schema {
	t.Helper()
	sch, err := schema.FromJSON([]byte(doc))
	require.NoError(t, err)
	return sch
}

// S1 -- String-vs-Date silent failure, warnings mode.
func TestValidate_S1_StringVsDateWarnings(t *testing.T) {
	sch := mustSchema(t, `{"node_props": {"ProjectStaffing": [{"name": "valid_from", "neo4j_type": "STRING"}]}}`)
	res, err := cypherguard.Validate(
		"MATCH (ps:ProjectStaffing) WHERE ps.valid_from <= date('2025-04-08') RETURN ps",
		sch,
		cypherguard.Options{TypeChecking: typecheck.Warnings},
	)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	require.Len(t, res.TypeWarnings, 1)
	assert.Contains(t, res.TypeWarnings[0].Message, "String")
	assert.Contains(t, res.TypeWarnings[0].Message, "ps.valid_from")
	assert.Empty(t, res.TypeErrors)
}

// S2 -- same query, strict mode.
func TestValidate_S2_StringVsDateStrict(t *testing.T) {
	sch := mustSchema(t, `{"node_props": {"ProjectStaffing": [{"name": "valid_from", "neo4j_type": "STRING"}]}}`)
	res, err := cypherguard.Validate(
		"MATCH (ps:ProjectStaffing) WHERE ps.valid_from <= date('2025-04-08') RETURN ps",
		sch,
		cypherguard.Options{TypeChecking: typecheck.Strict},
	)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.TypeErrors)
}

// S3 -- Integer<->Float allowed.
func TestValidate_S3_IntegerFloatAllowed(t *testing.T) {
	sch := mustSchema(t, `{"node_props": {"Product": [{"name": "price", "neo4j_type": "INTEGER"}]}}`)
	res, err := cypherguard.Validate(
		"MATCH (p:Product) WHERE p.price > 25.5 RETURN p",
		sch,
		cypherguard.Options{TypeChecking: typecheck.Strict},
	)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.TypeWarnings)
	assert.Empty(t, res.TypeErrors)
}

// S4 -- undefined label.
func TestValidate_S4_UndefinedLabel(t *testing.T) {
	sch := mustSchema(t, `{"node_props": {"Person": [{"name": "name", "neo4j_type": "STRING"}]}}`)
	res, err := cypherguard.Validate("MATCH (x:Nonsense) RETURN x", sch, cypherguard.Options{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, validate.KindUndefinedLabel, res.Errors[0].Kind)
	assert.Equal(t, "Nonsense", res.Errors[0].Label)
}

// S5 -- invalid relationship connection.
func TestValidate_S5_InvalidRelationshipConnection(t *testing.T) {
	sch := mustSchema(t, `{
		"node_props": {"Person": [], "Company": []},
		"relationships": [{"start": "Person", "type": "KNOWS", "end": "Person"}]
	}`)
	res, err := cypherguard.Validate(
		"MATCH (a:Person)-[:KNOWS]->(b:Company) RETURN a, b",
		sch,
		cypherguard.Options{},
	)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, validate.KindInvalidRelationshipConnection, res.Errors[0].Kind)
	assert.Equal(t, "(Person, KNOWS, Company)", res.Errors[0].Detail)
}

// S6 -- pattern predicate + function in WHERE.
func TestValidate_S6_PatternPredicateAndFunction(t *testing.T) {
	sch := mustSchema(t, `{
		"node_props": {"Person": [{"name": "name", "neo4j_type": "STRING"}], "Item": []},
		"relationships": [{"start": "Person", "type": "LIKES", "end": "Item"}]
	}`)
	res, err := cypherguard.Validate(
		"MATCH (u:Person), (i:Item) WHERE NOT (u)-[:LIKES]->(i) AND length(u.name) > 3 RETURN u, i",
		sch,
		cypherguard.Options{},
	)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

// S7 -- quantified path + path function.
func TestValidate_S7_QuantifiedPathAndPathFunction(t *testing.T) {
	sch := mustSchema(t, `{
		"node_props": {"Person": []},
		"relationships": [{"start": "Person", "type": "KNOWS", "end": "Person"}]
	}`)
	res, err := cypherguard.Validate(
		"MATCH p = shortestPath((a:Person)-[:KNOWS*]-(b:Person)) WHERE length(p) <= 3 RETURN nodes(p), relationships(p)",
		sch,
		cypherguard.Options{},
	)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

// Type checking is opt-in: leaving it off must not change Valid or Errors.
func TestValidate_ModeOffBackwardCompatible(t *testing.T) {
	sch := mustSchema(t, `{"node_props": {"ProjectStaffing": [{"name": "valid_from", "neo4j_type": "STRING"}]}}`)
	query := "MATCH (ps:ProjectStaffing) WHERE ps.valid_from <= date('2025-04-08') RETURN ps"

	withOff, err := cypherguard.Validate(query, sch, cypherguard.Options{TypeChecking: typecheck.Off})
	require.NoError(t, err)
	withZero, err := cypherguard.Validate(query, sch, cypherguard.Options{})
	require.NoError(t, err)

	assert.Empty(t, withOff.TypeWarnings)
	assert.Empty(t, withOff.TypeErrors)
	assert.Equal(t, withZero.Valid, withOff.Valid)
	assert.Equal(t, len(withZero.Errors), len(withOff.Errors))
}

// A single call reports every structural problem at once, not just the
// first one found.
func TestValidate_MonotoneAccumulation(t *testing.T) {
	sch := mustSchema(t, `{"node_props": {"Person": []}}`)
	res, err := cypherguard.Validate(
		"MATCH (g:Ghost)-[:LIKES]->(h:Haunt) RETURN g.boo, length(g)",
		sch,
		cypherguard.Options{},
	)
	require.NoError(t, err)
	// Ghost, Haunt undefined labels (2) + Ghost-LIKES->Haunt invalid
	// connection (1) + g.boo undefined property (1) + g not a path
	// variable (1) = 5 independent structural errors.
	assert.Len(t, res.Errors, 5)
}

// A clause-order violation short-circuits before semantic analysis runs.
func TestValidate_ClauseOrderErrorShortCircuits(t *testing.T) {
	sch := mustSchema(t, `{"node_props": {"Person": []}}`)
	_, err := cypherguard.Validate("RETURN 1 MATCH (p:Person) RETURN p", sch, cypherguard.Options{})
	require.Error(t, err)
	var parseErr *cypherguard.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
