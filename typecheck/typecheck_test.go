package typecheck_test

import (
	"testing"

	"github.com/rlch/cypherguard/extract"
	"github.com/rlch/cypherguard/grammar"
	"github.com/rlch/cypherguard/schema"
	"github.com/rlch/cypherguard/typecheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, query string) *grammar.Script {
	t.Helper()
	s, err := grammar.Parse(query)
	require.NoError(t, err)
	return s
}

func staffingSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.FromJSON([]byte(`{
		"node_props": {
			"ProjectStaffing": [{"name": "valid_from", "neo4j_type": "STRING"}]
		}
	}`))
	require.NoError(t, err)
	return sch
}

func TestCheck_ModeOff(t *testing.T) {
	sch := staffingSchema(t)
	script := mustParse(t, "MATCH (ps:ProjectStaffing) WHERE ps.valid_from <= date('2025-04-08') RETURN ps")
	warnings, errs := typecheck.Check(extract.Extract(script), sch, typecheck.Off)
	assert.Empty(t, warnings)
	assert.Empty(t, errs)
}

func TestCheck_StringVsDate_Warnings(t *testing.T) {
	sch := staffingSchema(t)
	script := mustParse(t, "MATCH (ps:ProjectStaffing) WHERE ps.valid_from <= date('2025-04-08') RETURN ps")
	warnings, errs := typecheck.Check(extract.Extract(script), sch, typecheck.Warnings)
	assert.Empty(t, errs)
	require.Len(t, warnings, 1)
	assert.Equal(t, typecheck.SeverityError, warnings[0].Severity) // classified by severity, not mode
}

func TestCheck_StringVsDate_Strict(t *testing.T) {
	sch := staffingSchema(t)
	script := mustParse(t, "MATCH (ps:ProjectStaffing) WHERE ps.valid_from <= date('2025-04-08') RETURN ps")
	warnings, errs := typecheck.Check(extract.Extract(script), sch, typecheck.Strict)
	assert.Empty(t, warnings)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "String")
	assert.Contains(t, errs[0].Message, "ps.valid_from")
	assert.NotEmpty(t, errs[0].Suggestion)
}

func TestCheck_IntegerFloatAllowed(t *testing.T) {
	sch, err := schema.FromJSON([]byte(`{"node_props": {"Product": [{"name": "price", "neo4j_type": "INTEGER"}]}}`))
	require.NoError(t, err)
	script := mustParse(t, "MATCH (p:Product) WHERE p.price > 25.5 RETURN p")
	warnings, errs := typecheck.Check(extract.Extract(script), sch, typecheck.Strict)
	assert.Empty(t, warnings)
	assert.Empty(t, errs)
}

func TestCheck_UnknownAbsorbs(t *testing.T) {
	sch, err := schema.FromJSON([]byte(`{"node_props": {"Widget": [{"name": "tag", "neo4j_type": "FROBNICATE"}]}}`))
	require.NoError(t, err)
	script := mustParse(t, `MATCH (w:Widget) WHERE w.tag = 'x' RETURN w`)
	warnings, errs := typecheck.Check(extract.Extract(script), sch, typecheck.Strict)
	assert.Empty(t, warnings)
	assert.Empty(t, errs)
}

func TestCheck_SymmetrySeverityMatches(t *testing.T) {
	stringFirst, err := schema.FromJSON([]byte(`{"node_props": {"A": [{"name": "p", "neo4j_type": "STRING"}]}}`))
	require.NoError(t, err)
	scriptA := mustParse(t, "MATCH (a:A) WHERE a.p > 5 RETURN a")
	warningsA, errsA := typecheck.Check(extract.Extract(scriptA), stringFirst, typecheck.Warnings)

	intFirst, err := schema.FromJSON([]byte(`{"node_props": {"B": [{"name": "p", "neo4j_type": "INTEGER"}]}}`))
	require.NoError(t, err)
	scriptB := mustParse(t, "MATCH (b:B) WHERE b.p > toString(5) RETURN b")
	warningsB, errsB := typecheck.Check(extract.Extract(scriptB), intFirst, typecheck.Warnings)

	issueA := append(warningsA, errsA...)
	issueB := append(warningsB, errsB...)
	require.Len(t, issueA, 1)
	require.Len(t, issueB, 1)
	assert.Equal(t, issueA[0].Severity, issueB[0].Severity)
}

// The `=~` regex-match operator is a comparison operator like any other:
// a property compared against a Date-typed function still trips the
// String-vs-Date block.
func TestCheck_RegexMatchStringVsDate(t *testing.T) {
	sch := staffingSchema(t)
	script := mustParse(t, "MATCH (ps:ProjectStaffing) WHERE ps.valid_from =~ date('2025-04-08') RETURN ps")
	warnings, errs := typecheck.Check(extract.Extract(script), sch, typecheck.Strict)
	assert.Empty(t, warnings)
	require.Len(t, errs, 1)
	assert.Equal(t, schema.TypeDate, errs[0].ComparedTo)
}

// A compound `+` right-hand expression folds its operand chain through
// ResolveOperatorType before the blocklist runs: toInteger(...) and the
// literal 2 both resolve to Integer, so the combined type is Integer, and
// a declared String property compared to it is flagged at Warning
// severity, same as comparing it to a bare Integer literal would be.
func TestCheck_ComputedAddStringVsIntegerWarning(t *testing.T) {
	sch := staffingSchema(t)
	script := mustParse(t, "MATCH (ps:ProjectStaffing) WHERE ps.valid_from = toInteger('5') + 2 RETURN ps")
	warnings, errs := typecheck.Check(extract.Extract(script), sch, typecheck.Warnings)
	assert.Empty(t, errs)
	require.Len(t, warnings, 1)
	assert.Equal(t, typecheck.SeverityWarning, warnings[0].Severity)
	assert.Equal(t, schema.TypeInteger, warnings[0].ComparedTo)
}

// A compound expression mixing an Integer literal with a Float literal
// (`1 + 2.5`) resolves to Float, which is allowed against a declared
// Integer property -- Integer<->Float stays unblocked even through a
// computed operand chain.
func TestCheck_ComputedAddIntegerFloatAllowed(t *testing.T) {
	sch, err := schema.FromJSON([]byte(`{"node_props": {"Product": [{"name": "price", "neo4j_type": "INTEGER"}]}}`))
	require.NoError(t, err)
	script := mustParse(t, "MATCH (p:Product) WHERE p.price > 1 + 2.5 RETURN p")
	warnings, errs := typecheck.Check(extract.Extract(script), sch, typecheck.Strict)
	assert.Empty(t, warnings)
	assert.Empty(t, errs)
}

func TestResolveOperatorType(t *testing.T) {
	assert.Equal(t, schema.TypeString, typecheck.ResolveOperatorType(schema.TypeString, schema.TypeString))
	assert.Equal(t, schema.TypeFloat, typecheck.ResolveOperatorType(schema.TypeInteger, schema.TypeFloat))
	assert.Equal(t, schema.TypeInteger, typecheck.ResolveOperatorType(schema.TypeInteger, schema.TypeInteger))
	assert.Equal(t, schema.TypeUnknown, typecheck.ResolveOperatorType(schema.TypeUnknown, schema.TypeInteger))
	assert.Equal(t, schema.TypeUnknown, typecheck.ResolveOperatorType(schema.TypeString, schema.TypeInteger))
}
