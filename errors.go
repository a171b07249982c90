package cypherguard

import "fmt"

// ParseError wraps a grammar parse failure, an expression nested past the
// depth limit, or a clause-order violation: the three ways a query can fail
// before any semantic analysis is attempted.
// It always short-circuits -- no later stage runs.
type ParseError struct {
	// Err is the underlying error from the participle parser, from
	// grammar.CheckDepth, or from clauseorder.Check.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cypherguard: parse error: %s", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
