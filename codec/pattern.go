// Package codec provides ready-made scalar codecs beyond the built-in
// datetime and uuid ones, registered against a holotype.Registry.
package codec

import (
	"fmt"
	"regexp"

	holotype "github.com/reoring/holotype"
	js "github.com/reoring/holotype/jsonschema"
)

// NewPattern registers a string scalar constrained by a regular expression
// and returns the type expression referencing it. The pattern is anchored by
// the schema semantics of "pattern" (unanchored match), so callers wanting a
// full match should write ^...$ themselves.
func NewPattern(reg *holotype.Registry, name, pattern string) (*holotype.Type, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("codec: pattern for %s does not compile: %w", name, err)
	}
	reg.RegisterCodec(name, &patternCodec{pattern: pattern, re: re})
	return holotype.Scalar(name), nil
}

// MustPattern is NewPattern for package-level declarations; it panics when
// the pattern does not compile.
func MustPattern(reg *holotype.Registry, name, pattern string) *holotype.Type {
	t, err := NewPattern(reg, name, pattern)
	if err != nil {
		panic(err)
	}
	return t
}

type patternCodec struct {
	pattern string
	re      *regexp.Regexp
}

func (c *patternCodec) ToWire(v any) (any, error) {
	return c.check(v)
}

func (c *patternCodec) ToNative(v any) (any, error) {
	return c.check(v)
}

func (c *patternCodec) check(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, holotype.Issues{{
			Path:    "/",
			Code:    holotype.CodeInvalidType,
			Message: fmt.Sprintf("expected string, got %T", v),
		}}
	}
	if !c.re.MatchString(s) {
		return nil, holotype.Issues{{
			Path:    "/",
			Code:    holotype.CodeInvalidFormat,
			Message: fmt.Sprintf("%q does not match pattern %s", s, c.pattern),
			Params:  map[string]any{"pattern": c.pattern},
		}}
	}
	return s, nil
}

func (c *patternCodec) JSONSchema() *js.Schema {
	return &js.Schema{Type: "string", Pattern: c.pattern}
}
