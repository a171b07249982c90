// Package grammar defines the Abstract Syntax Tree, lexer, and parser for
// the subset of openCypher that cypherguard analyzes.
//
// The grammar follows the official Cypher specification:
// https://github.com/opencypher/openCypher
//
// Parsing never evaluates a query: Parse only builds a tree. Everything
// downstream (clauseorder, extract, validate, typecheck) walks that tree.
package grammar
