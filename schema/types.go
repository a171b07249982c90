package schema

import "strings"

// Type is one of the closed set of declared property types a schema can
// name. Anything outside the enumerated set parses to Unknown rather than
// failing, since an evolving schema vocabulary should never make a schema
// document unparsable.
type Type string

// The enumerated declared-type tags.
const (
	TypeString   Type = "STRING"
	TypeInteger  Type = "INTEGER"
	TypeFloat    Type = "FLOAT"
	TypeBoolean  Type = "BOOLEAN"
	TypeDate     Type = "DATE"
	TypeDateTime Type = "DATETIME"
	TypeLocalTime Type = "LOCALTIME"
	TypeTime     Type = "TIME"
	TypeDuration Type = "DURATION"
	TypePoint    Type = "POINT"
	TypeUnknown  Type = "UNKNOWN"
)

var typeTags = map[string]Type{
	"string":    TypeString,
	"integer":   TypeInteger,
	"int":       TypeInteger,
	"float":     TypeFloat,
	"boolean":   TypeBoolean,
	"bool":      TypeBoolean,
	"date":      TypeDate,
	"datetime":  TypeDateTime,
	"localtime": TypeLocalTime,
	"time":      TypeTime,
	"duration":  TypeDuration,
	"point":     TypePoint,
	"unknown":   TypeUnknown,
}

// ParseType parses a declared-type string case-insensitively against the
// enumerated set. Anything unrecognised maps to Unknown.
func ParseType(s string) Type {
	if t, ok := typeTags[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t
	}
	return TypeUnknown
}

// UnmarshalJSON allows a Type to be read directly from a schema document
// string (e.g. "STRING") regardless of case.
func (t *Type) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*t = ParseType(s)
	return nil
}

// UnmarshalYAML allows a Type to be read directly from a YAML schema
// document scalar regardless of case.
func (t *Type) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*t = ParseType(s)
	return nil
}
