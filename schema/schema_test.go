package schema_test

import (
	"testing"

	"github.com/rlch/cypherguard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSON(t *testing.T) {
	doc := []byte(`{
		"node_props": {
			"Person": [{"name": "name", "neo4j_type": "string"}, {"name": "born", "neo4j_type": "DATE"}]
		},
		"rel_props": {
			"KNOWS": [{"name": "since", "neo4j_type": "integer"}]
		},
		"relationships": [{"start": "Person", "type": "KNOWS", "end": "Person"}],
		"metadata": {"source": "test"}
	}`)

	s, err := schema.FromJSON(doc)
	require.NoError(t, err)

	assert.True(t, s.HasLabel("Person"))
	assert.False(t, s.HasLabel("Company"))
	assert.True(t, s.HasRelationshipType("KNOWS"))

	prop, ok := s.NodeProperty("Person", "born")
	require.True(t, ok)
	assert.Equal(t, schema.TypeDate, prop.Type)

	assert.True(t, s.AllowsConnection("Person", "KNOWS", "Person"))
	assert.False(t, s.AllowsConnection("Person", "KNOWS", "Company"))
}

func TestFromYAML(t *testing.T) {
	doc := []byte(`
node_props:
  Person:
    - name: name
      neo4j_type: STRING
rel_props: {}
relationships: []
`)
	s, err := schema.FromYAML(doc)
	require.NoError(t, err)
	assert.True(t, s.HasLabel("Person"))
}

func TestParseType_UnknownFallsBack(t *testing.T) {
	assert.Equal(t, schema.TypeUnknown, schema.ParseType("weird"))
	assert.Equal(t, schema.TypeString, schema.ParseType("sTrIng"))
}

func TestSchema_ValidateRejectsDuplicateProperties(t *testing.T) {
	s := schema.New()
	s.NodeProps["Person"] = []schema.Property{
		{Name: "name", Type: schema.TypeString},
		{Name: "name", Type: schema.TypeInteger},
	}
	assert.Error(t, s.Validate())
}
