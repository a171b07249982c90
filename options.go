package cypherguard

import (
	"github.com/rlch/cypherguard/grammar"
	"github.com/rlch/cypherguard/internal/diagnostics"
	"github.com/rlch/cypherguard/typecheck"
)

// Options controls the optional behaviour of Validate. The zero value
// applies the conservative default: type checking off, the standard
// expression-depth guard, and no trace logging.
type Options struct {
	// TypeChecking selects the opt-in type-compatibility check.
	// Defaults to Off.
	TypeChecking typecheck.Mode

	// MaxExpressionDepth bounds expression nesting, checked by
	// grammar.CheckDepth after parsing. Zero (the default) applies
	// grammar.DefaultMaxExpressionDepth; a negative number disables the
	// check.
	MaxExpressionDepth int

	// Logger is an optional structured trace sink (ambient, no effect on
	// results). Nil (the default) disables logging entirely.
	Logger *diagnostics.Logger
}

// resolvedMaxDepth returns the expression-depth bound to enforce, applying
// the package default when the caller left the field unset.
func (o Options) resolvedMaxDepth() int {
	if o.MaxExpressionDepth == 0 {
		return grammar.DefaultMaxExpressionDepth
	}
	return o.MaxExpressionDepth
}
