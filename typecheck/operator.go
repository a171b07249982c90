package typecheck

import (
	"github.com/rlch/cypherguard/extract"
	"github.com/rlch/cypherguard/schema"
)

// foldComputed resolves a ValueComputed comparison operand's combined type
// by folding its operand chain left-to-right through ResolveOperatorType --
// the extractor only recognises each term, it never decides what +/||
// means for the pair, so that decision happens here, right before the
// result feeds the blocklist check.
func foldComputed(ops []extract.ComputedOperand) schema.Type {
	if len(ops) == 0 {
		return schema.TypeUnknown
	}
	t := ops[0].Type
	for _, op := range ops[1:] {
		t = ResolveOperatorType(t, op.Type)
	}
	return t
}

// ResolveOperatorType resolves the `+` / `||` ambiguity between numeric
// addition and string/list concatenation. Parsing and structural validation
// never need to decide this -- only the type checker does, to know what a
// compound expression's type is when it in turn feeds a comparison.
func ResolveOperatorType(left, right schema.Type) schema.Type {
	switch {
	case left == schema.TypeUnknown || right == schema.TypeUnknown:
		return schema.TypeUnknown
	case left == schema.TypeString && right == schema.TypeString:
		return schema.TypeString
	case isNumeric(left) && isNumeric(right):
		if left == schema.TypeFloat || right == schema.TypeFloat {
			return schema.TypeFloat
		}
		return schema.TypeInteger
	default:
		return schema.TypeUnknown
	}
}

func isNumeric(t schema.Type) bool {
	return t == schema.TypeInteger || t == schema.TypeFloat
}
