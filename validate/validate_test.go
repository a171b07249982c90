package validate_test

import (
	"testing"

	"github.com/rlch/cypherguard/extract"
	"github.com/rlch/cypherguard/grammar"
	"github.com/rlch/cypherguard/schema"
	"github.com/rlch/cypherguard/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, query string) *grammar.Script {
	t.Helper()
	s, err := grammar.Parse(query)
	require.NoError(t, err)
	return s
}

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.FromJSON([]byte(`{
		"node_props": {
			"Person": [{"name": "name", "neo4j_type": "STRING"}, {"name": "born", "neo4j_type": "INTEGER"}],
			"Company": [{"name": "name", "neo4j_type": "STRING"}]
		},
		"rel_props": {
			"WORKS_AT": [{"name": "since", "neo4j_type": "INTEGER"}]
		},
		"relationships": [
			{"start": "Person", "type": "WORKS_AT", "end": "Company"},
			{"start": "Person", "type": "KNOWS", "end": "Person"}
		]
	}`))
	require.NoError(t, err)
	return sch
}

func TestCheck_NoErrorsForValidQuery(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH (p:Person)-[:WORKS_AT]->(c:Company) RETURN p.name, c.name")
	errs := validate.Check(extract.Extract(script), sch)
	assert.Empty(t, errs)
}

func TestCheck_UndefinedLabel(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH (x:Ghost) RETURN x")
	errs := validate.Check(extract.Extract(script), sch)
	require.Len(t, errs, 1)
	assert.Equal(t, validate.KindUndefinedLabel, errs[0].Kind)
	assert.Equal(t, "Ghost", errs[0].Label)
}

func TestCheck_UndefinedRelationshipType(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH (p:Person)-[r:LIKES]->(c:Company) RETURN p")
	errs := validate.Check(extract.Extract(script), sch)
	found := false
	for _, e := range errs {
		if e.Kind == validate.KindUndefinedRelationshipType && e.Label == "LIKES" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCheck_InvalidRelationshipConnection(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH (c:Company)-[:WORKS_AT]->(p:Person) RETURN c")
	errs := validate.Check(extract.Extract(script), sch)
	require.Len(t, errs, 1)
	assert.Equal(t, validate.KindInvalidRelationshipConnection, errs[0].Kind)
	assert.Equal(t, "(Company, WORKS_AT, Person)", errs[0].Detail)
}

func TestCheck_InvalidRelationshipConnectionSkippedOnWildcard(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH (c)-[:WORKS_AT]->(p:Person) RETURN c")
	errs := validate.Check(extract.Extract(script), sch)
	assert.Empty(t, errs)
}

func TestCheck_UndefinedProperty(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH (p:Person) RETURN p.nickname")
	errs := validate.Check(extract.Extract(script), sch)
	require.Len(t, errs, 1)
	assert.Equal(t, validate.KindUndefinedProperty, errs[0].Kind)
	assert.Equal(t, "nickname", errs[0].Label)
	assert.Equal(t, "on Person", errs[0].Detail)
}

func TestCheck_UndefinedPropertyOnRelationship(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH (p:Person)-[r:WORKS_AT]->(c:Company) RETURN r.role")
	errs := validate.Check(extract.Extract(script), sch)
	require.Len(t, errs, 1)
	assert.Equal(t, validate.KindUndefinedProperty, errs[0].Kind)
	assert.Equal(t, "role", errs[0].Label)
	assert.Equal(t, "on WORKS_AT", errs[0].Detail)
}

func TestCheck_UndefinedVariable(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH (p:Person) RETURN q.name")
	errs := validate.Check(extract.Extract(script), sch)
	require.Len(t, errs, 1)
	assert.Equal(t, validate.KindUndefinedVariable, errs[0].Kind)
	assert.Equal(t, "q", errs[0].Label)
}

func TestCheck_PropertyAccessOnUnresolvedButBoundNameIsSilent(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH (p:Person) WITH p AS x RETURN x.anything")
	errs := validate.Check(extract.Extract(script), sch)
	assert.Empty(t, errs)
}

func TestCheck_UndefinedPathVariable(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH (p:Person) RETURN length(p)")
	errs := validate.Check(extract.Extract(script), sch)
	require.Len(t, errs, 1)
	assert.Equal(t, validate.KindUndefinedPathVariable, errs[0].Kind)
	assert.Equal(t, "p", errs[0].Label)
}

func TestCheck_PathVariableFromShortestPathIsAccepted(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH p = shortestPath((a:Person)-[:KNOWS*]-(b:Person)) RETURN length(p)")
	errs := validate.Check(extract.Extract(script), sch)
	assert.Empty(t, errs)
}

func TestCheck_ErrorsAccumulateAcrossRules(t *testing.T) {
	sch := testSchema(t)
	script := mustParse(t, "MATCH (g:Ghost)-[:LIKES]->(h:Haunt) RETURN g.boo, length(g)")
	errs := validate.Check(extract.Extract(script), sch)
	kinds := map[validate.Kind]int{}
	for _, e := range errs {
		kinds[e.Kind]++
	}
	assert.Equal(t, 2, kinds[validate.KindUndefinedLabel]) // Ghost, Haunt
	// LIKES has no bound variable, so it is only caught via the relationship
	// connection check (an anonymous type is never an UndefinedRelationshipType
	// by itself -- that check is scoped to named relationship variables).
	assert.Equal(t, 1, kinds[validate.KindInvalidRelationshipConnection])
	assert.Equal(t, 1, kinds[validate.KindUndefinedPathVariable])
	assert.Equal(t, 1, kinds[validate.KindUndefinedProperty]) // g.boo, Ghost is undeclared
}
