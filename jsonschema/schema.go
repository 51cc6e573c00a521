package jsonschema

import (
	gojson "github.com/goccy/go-json"
	yaml "gopkg.in/yaml.v3"
)

// Draft7URI is the $schema value for standalone documents.
const Draft7URI = "http://json-schema.org/draft-07/schema#"

// Schema is the JSON Schema (Draft-07 subset) representation the generator
// emits. A standalone document is the same struct with SchemaURI and
// Definitions populated.
type Schema struct {
	// Document wrapper
	SchemaURI   string             `json:"$schema,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty"`

	// Core
	Ref         string `json:"$ref,omitempty"`
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
	PatternProperties    map[string]*Schema `json:"patternProperties,omitempty"`

	// Array. Items is either *Schema (uniform) or []*Schema (positional
	// tuple form), per draft-07.
	Items    any  `json:"items,omitempty"`
	MinItems *int `json:"minItems,omitempty"`
	MaxItems *int `json:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
}

// Clone returns a shallow copy, useful when a cached fragment needs
// per-field metadata (default, description) layered on.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// EncodeJSON renders the schema as a JSON document.
func (s *Schema) EncodeJSON() ([]byte, error) {
	return gojson.Marshal(s)
}

// EncodeYAML renders the schema as YAML via a generic JSON round-trip, so
// key names follow the JSON tags.
func (s *Schema) EncodeYAML() ([]byte, error) {
	b, err := gojson.Marshal(s)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := gojson.Unmarshal(b, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}

// IntPtr is a convenience for MinItems/MaxItems literals.
func IntPtr(n int) *int { return &n }
