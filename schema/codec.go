package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromJSON parses a schema document in the exact wire shape the core's
// external interface documents:
//
//	{
//	  "node_props":  { <label>: [ {"name": ..., "neo4j_type": ...}, ... ], ... },
//	  "rel_props":   { <type>:  [ {"name": ..., "neo4j_type": ...}, ... ], ... },
//	  "relationships": [ {"start": ..., "type": ..., "end": ...}, ... ],
//	  "metadata":    { ... }
//	}
func FromJSON(data []byte) (*Schema, error) {
	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("schema: parsing JSON: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromYAML parses the same document shape in YAML, for callers who keep
// schemas as checked-in config rather than passing a JSON value directly.
func FromYAML(data []byte) (*Schema, error) {
	s := New()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("schema: parsing YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ToJSON serialises the schema back to its canonical wire shape.
func ToJSON(s *Schema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
