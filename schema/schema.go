// Package schema models the graph shape a Cypher query is validated
// against: which node labels carry which properties, which relationship
// types carry which properties, and which (start label, relationship
// type, end label) triples are permitted.
//
// A Schema is a plain value. Nothing in this package reaches out to a
// database; callers load one from JSON or YAML (or build one by hand) and
// pass it into validate.Check/typecheck.Check read-only.
package schema

import "fmt"

// Schema is the declarative shape of a graph, supplied by the caller.
type Schema struct {
	// NodeProps maps a node label to the properties declared on it.
	NodeProps map[string][]Property `json:"node_props" yaml:"node_props"`
	// RelProps maps a relationship type to the properties declared on it.
	RelProps map[string][]Property `json:"rel_props" yaml:"rel_props"`
	// Relationships lists every permitted (start, type, end) triple.
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
	// Metadata is an opaque key/value bag, ignored by the core.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Property is one declared property of a node label or relationship type.
type Property struct {
	Name string `json:"name" yaml:"name"`
	Type Type   `json:"neo4j_type" yaml:"neo4j_type"`
}

// Relationship is a permitted (start label, relationship type, end label)
// connection.
type Relationship struct {
	Start string `json:"start" yaml:"start"`
	Type  string `json:"type" yaml:"type"`
	End   string `json:"end" yaml:"end"`
}

// New returns an empty, ready-to-populate Schema.
func New() *Schema {
	return &Schema{
		NodeProps: map[string][]Property{},
		RelProps:  map[string][]Property{},
	}
}

// HasLabel reports whether label is declared in the schema.
func (s *Schema) HasLabel(label string) bool {
	if s == nil {
		return false
	}
	_, ok := s.NodeProps[label]
	return ok
}

// HasRelationshipType reports whether relType is declared in the schema.
func (s *Schema) HasRelationshipType(relType string) bool {
	if s == nil {
		return false
	}
	_, ok := s.RelProps[relType]
	return ok
}

// NodeProperty looks up a declared property of label by name.
func (s *Schema) NodeProperty(label, name string) (Property, bool) {
	if s == nil {
		return Property{}, false
	}
	for _, p := range s.NodeProps[label] {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// RelProperty looks up a declared property of relType by name.
func (s *Schema) RelProperty(relType, name string) (Property, bool) {
	if s == nil {
		return Property{}, false
	}
	for _, p := range s.RelProps[relType] {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// AllowsConnection reports whether (start, relType, end) is a permitted
// triple. It matches listed triples exactly; a wildcard or undeclared label
// is not treated as permitted here (the validator skips "*" endpoints
// before calling it).
func (s *Schema) AllowsConnection(start, relType, end string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Relationships {
		if r.Start == start && r.Type == relType && r.End == end {
			return true
		}
	}
	return false
}

// Validate reports structural problems with the schema document itself
// (duplicate property names, a relationship triple naming an undeclared
// label or type is NOT an error here — the schema is the source of truth,
// so only internal inconsistency of the document is checked).
func (s *Schema) Validate() error {
	for label, props := range s.NodeProps {
		if err := checkDuplicateProps(props); err != nil {
			return fmt.Errorf("schema: node label %q: %w", label, err)
		}
	}
	for relType, props := range s.RelProps {
		if err := checkDuplicateProps(props); err != nil {
			return fmt.Errorf("schema: relationship type %q: %w", relType, err)
		}
	}
	return nil
}

func checkDuplicateProps(props []Property) error {
	seen := make(map[string]bool, len(props))
	for _, p := range props {
		if seen[p.Name] {
			return fmt.Errorf("duplicate property %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
