// Package clauseorder checks that a parsed query's clauses appear in a
// legal sequence, independently of whether the clauses themselves parse.
// It runs as an explicit state machine rather than scattered ad-hoc checks
// so that adding a new clause kind to the grammar is one new transition,
// not a hunt through the validator for every place clause order might
// matter.
package clauseorder

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/rlch/cypherguard/grammar"
)

// Kind is the coarse category a clause belongs to for ordering purposes.
type Kind int

// The clause kinds the state machine distinguishes.
const (
	KindReading Kind = iota // MATCH, OPTIONAL MATCH, UNWIND, CALL
	KindUpdating            // CREATE, MERGE, DELETE, SET, REMOVE
	KindWith
	KindReturn
)

func (k Kind) String() string {
	switch k {
	case KindReading:
		return "reading clause"
	case KindUpdating:
		return "updating clause"
	case KindWith:
		return "WITH"
	case KindReturn:
		return "RETURN"
	default:
		return "clause"
	}
}

// Error reports an illegal clause sequence.
type Error struct {
	Pos     lexer.Position
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// state is where the state machine sits between clauses.
type state int

const (
	stateStart state = iota
	stateAfterReadUpdate
	stateAfterWith
	stateAfterReturn
)

// Check verifies that clauses appear in a legal sequence: a query (and
// likewise the query part that follows each WITH) must not open with
// DELETE, standalone SET, or REMOVE, which need something already bound by
// an earlier clause to operate on; any other clause, RETURN included, may
// open it. RETURN,
// if present, must be the final clause, and no clause may follow it. Once
// past the opening clause, reading, updating, and WITH clauses may repeat
// and interleave freely, including a WITH immediately followed by its own
// WHERE filter, since clause order only tracks clause kind, not the
// sub-clauses (such as WHERE) attached to it.
func Check(clauses []*grammar.Clause) error {
	st := stateStart
	for _, c := range clauses {
		kind, pos := classify(c)
		switch st {
		case stateAfterReturn:
			return &Error{Pos: pos, Kind: kind, Message: "RETURN must be the last clause in a query"}
		case stateStart, stateAfterWith:
			if kind == KindUpdating && !updatingStartAllowed(c.Updating) {
				return &Error{Pos: pos, Kind: kind, Message: "a query (or a WITH-separated query part) cannot open with DELETE, SET, or REMOVE"}
			}
		}
		st = advance(st, kind)
	}
	return nil
}

// updatingStartAllowed reports whether u is one of the updating-clause
// kinds legal to open a query (or a WITH-separated query part): CREATE and
// MERGE introduce new bindings, so either can stand alone; DELETE,
// standalone SET, and REMOVE all act on a variable a reading or CREATE/MERGE
// clause must have bound first.
func updatingStartAllowed(u *grammar.UpdatingClause) bool {
	return u != nil && (u.Create != nil || u.Merge != nil)
}

func advance(st state, kind Kind) state {
	switch kind {
	case KindReturn:
		return stateAfterReturn
	case KindWith:
		return stateAfterWith
	default:
		return stateAfterReadUpdate
	}
}

func classify(c *grammar.Clause) (Kind, lexer.Position) {
	switch {
	case c.Reading != nil:
		return KindReading, c.Reading.Pos
	case c.Updating != nil:
		return KindUpdating, c.Updating.Pos
	case c.With != nil:
		return KindWith, c.With.Pos
	case c.Return != nil:
		return KindReturn, c.Return.Pos
	default:
		return KindReading, c.Pos
	}
}

// CheckQuery runs Check against every query part (the main single query and
// every UNION arm) of a fully parsed script.
func CheckQuery(script *grammar.Script) error {
	if script == nil || script.Query == nil || script.Query.RegularQuery == nil {
		return nil
	}
	for _, clauses := range script.Query.RegularQuery.AllClauses() {
		if err := Check(clauses); err != nil {
			return err
		}
	}
	return nil
}
