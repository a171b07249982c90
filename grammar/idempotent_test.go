package grammar_test

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rlch/cypherguard/grammar"
	"github.com/stretchr/testify/require"
)

// cmpIgnorePositions ignores lexer.Position fields scattered through every
// AST node, so two trees can be compared on structure alone regardless of
// where in the source text they were parsed from.
var cmpIgnorePositions = cmp.Options{
	cmpopts.IgnoreTypes(lexer.Position{}),
}

// Parsing is deterministic, so parsing the same query text twice yields
// structurally identical ASTs.
func TestParse_Idempotent(t *testing.T) {
	queries := []string{
		"MATCH (u:User)-[:FOLLOWS]->(f:User) WHERE u.age > 18 RETURN u.name, f.name ORDER BY u.name SKIP 1 LIMIT 10",
		"MATCH p = shortestPath((a:Person)-[:KNOWS*1..5]-(b:Person)) RETURN nodes(p)",
		"MERGE (u:User {id: $id}) ON CREATE SET u.createdAt = $now ON MATCH SET u.seenAt = $now RETURN u",
		"MATCH (u) WHERE NOT (u)-[:BLOCKED]->() WITH u { .name, .*, alias: u.email } AS profile RETURN profile",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			first, err := grammar.Parse(q)
			require.NoError(t, err)
			second, err := grammar.Parse(q)
			require.NoError(t, err)
			if diff := cmp.Diff(first, second, cmpIgnorePositions); diff != "" {
				t.Fatalf("repeated Parse(%q) produced different ASTs (-first +second):\n%s", q, diff)
			}
		})
	}
}
