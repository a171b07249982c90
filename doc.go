// Package cypherguard statically analyses Cypher query text against a
// user-supplied graph schema and reports structural errors,
// undefined-reference errors, and optional type-mismatch warnings before a
// query is ever sent to a database.
//
// The pipeline is a straight line: text is parsed by package grammar into
// an AST, package clauseorder checks the clause sequence, package extract
// walks the AST into a QueryElements bundle, and package validate (plus,
// when enabled, package typecheck) checks that bundle against a
// package schema Schema. Validate ties the four together behind one call.
package cypherguard
