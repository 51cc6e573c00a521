package holotype

import (
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	sj "github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate checks a wire object against the record's generated schema.
// Failures surface as Issues; the single reported issue is the most specific
// cause, with the schema keyword that rejected the value in Rule and the
// full validator error chain retained in Cause.
func (r *Registry) Validate(rt *RecordType, data map[string]any) error {
	compiled, err := r.compiledSchema(rt)
	if err != nil {
		return err
	}
	doc, err := normalizeWire(data)
	if err != nil {
		return err
	}
	if err := compiled.Validate(doc); err != nil {
		ve, ok := err.(*sj.ValidationError)
		if !ok {
			return Issues{{Path: "/", Code: CodeSchemaViolation, Message: err.Error(), Cause: err}}
		}
		best := bestCause(ve)
		return Issues{{
			Path:    instancePointer(best),
			Code:    CodeSchemaViolation,
			Message: best.Message,
			Rule:    keywordOf(best),
			Cause:   ve,
		}}
	}
	return nil
}

func (r *Registry) compiledSchema(rt *RecordType) (*sj.Schema, error) {
	r.schemaMu.Lock()
	defer r.schemaMu.Unlock()
	if c, ok := r.compiled[rt.Name]; ok {
		return c, nil
	}
	doc, err := r.schemaLocked(rt)
	if err != nil {
		return nil, err
	}
	raw, err := doc.EncodeJSON()
	if err != nil {
		return nil, err
	}
	compiler := sj.NewCompiler()
	compiler.Draft = sj.Draft7
	// The datetime codec accepts offset-less text (taken as UTC) on top of
	// RFC3339; the validator's stock date-time format would reject that form
	// before decode ran, so the codec's parse rules are the format here.
	compiler.Formats = map[string]func(any) bool{
		"date-time": lenientDateTime,
	}
	url := "holotype://" + rt.Name + ".json"
	if err := compiler.AddResource(url, strings.NewReader(string(raw))); err != nil {
		return nil, &DeclarationError{Type: rt.Name, Reason: "schema does not compile: " + err.Error()}
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, &DeclarationError{Type: rt.Name, Reason: "schema does not compile: " + err.Error()}
	}
	r.compiled[rt.Name] = compiled
	return compiled, nil
}

// lenientDateTime mirrors the datetime codec's parse rules. Non-string
// values pass: format only constrains strings.
func lenientDateTime(v any) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	_, err := parseDateTime(s)
	return err == nil
}

// normalizeWire round-trips the encoded tree through JSON so the validator
// only ever sees JSON-native values (float64 numbers, map[string]any
// objects), whatever Go types the encode pass produced.
func normalizeWire(data map[string]any) (any, error) {
	raw, err := gojson.Marshal(data)
	if err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: "value is not JSON-encodable", Cause: err}}
	}
	var doc any
	if err := gojson.Unmarshal(raw, &doc); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: "value is not JSON-encodable", Cause: err}}
	}
	return doc, nil
}

// bestCause picks the most informative node of the validator's error tree:
// descend through single-cause chains, but stop at a oneOf/anyOf node whose
// branches all failed, since no single branch explains the value better than
// "nothing matched".
func bestCause(ve *sj.ValidationError) *sj.ValidationError {
	for {
		if len(ve.Causes) == 0 {
			return ve
		}
		kw := keywordOf(ve)
		if (kw == "oneOf" || kw == "anyOf") && len(ve.Causes) > 1 {
			return ve
		}
		best := ve.Causes[0]
		for _, c := range ve.Causes[1:] {
			if causeDepth(c) > causeDepth(best) {
				best = c
			}
		}
		ve = best
	}
}

func causeDepth(ve *sj.ValidationError) int {
	d := 0
	for _, c := range ve.Causes {
		if n := causeDepth(c); n > d {
			d = n
		}
	}
	return d + 1
}

// keywordOf extracts the schema keyword from a keyword location, skipping
// trailing array indices ("/oneOf/1" names the oneOf keyword).
func keywordOf(ve *sj.ValidationError) string {
	segs := strings.Split(ve.KeywordLocation, "/")
	for i := len(segs) - 1; i >= 0; i-- {
		s := segs[i]
		if s == "" {
			continue
		}
		if _, err := strconv.Atoi(s); err == nil {
			continue
		}
		return s
	}
	return ""
}

// instancePointer normalizes the failing value's location to a JSON pointer
// rooted at "/".
func instancePointer(ve *sj.ValidationError) string {
	if ve.InstanceLocation == "" {
		return "/"
	}
	if !strings.HasPrefix(ve.InstanceLocation, "/") {
		return "/" + ve.InstanceLocation
	}
	return ve.InstanceLocation
}
