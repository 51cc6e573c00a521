package holotype

import (
	"fmt"
	"strconv"
)

// decodeFunc is a memoized per-type decode strategy. name is the declared
// field name carried for diagnostics only.
type decodeFunc func(r *Registry, name string, t *Type, v any, validate bool) (any, error)

// Decode validates the wire object against the record's schema (unless
// skipped) and materializes an instance. Missing fields take their declared
// default; a required field missing from an unvalidated object decodes to
// nil rather than failing, since skipping validation is an explicit request
// for best-effort construction. Unknown wire keys are discarded here; the
// schema check is what rejects them for non-extensible records.
func (r *Registry) Decode(rt *RecordType, data map[string]any, opt DecodeOpt) (*Instance, error) {
	if !opt.SkipValidation {
		if err := r.Validate(rt, data); err != nil {
			return nil, err
		}
	}
	inst := &Instance{Type: rt, Fields: make(map[string]any, len(rt.fields))}
	for _, f := range rt.wireFields() {
		wv, present := data[f.WireName()]
		if !present {
			if dv, ok := f.defaultValue(); ok {
				inst.Fields[f.Name] = dv
			} else {
				inst.Fields[f.Name] = nil
			}
			continue
		}
		// The subtree was covered by the top-level schema check (or the
		// caller opted out), so nested decodes do not re-validate.
		dec, err := r.decodeField(f.Name, f.Type, wv, false)
		if err != nil {
			return nil, rebaseIssues("/"+f.WireName(), err)
		}
		inst.Fields[f.Name] = dec
	}
	for _, f := range rt.fields {
		if !f.internal() {
			continue
		}
		if dv, ok := f.defaultValue(); ok {
			inst.Fields[f.Name] = dv
		}
	}
	return inst, nil
}

// decodeField transforms one wire value into its native form. nil propagates
// unchanged. As on the encode side, union strategies resolve inline because
// they depend on the runtime value.
func (r *Registry) decodeField(name string, t *Type, v any, validate bool) (any, error) {
	if v == nil {
		return nil, nil
	}
	resolved, kind, err := classify(t)
	if err != nil {
		return nil, err
	}
	if kind == KindUnion {
		return r.decodeUnion(name, resolved, v, validate)
	}
	// Fast path: the wire value already is the native representation.
	if isJSONPrimitive(kind, v) {
		return v, nil
	}
	if fn, ok := r.decStrategies.Load(resolved); ok {
		return fn.(decodeFunc)(r, name, resolved, v, validate)
	}
	fn, err := buildDecodeStrategy(kind)
	if err != nil {
		return nil, err
	}
	actual, _ := r.decStrategies.LoadOrStore(resolved, fn)
	return actual.(decodeFunc)(r, name, resolved, v, validate)
}

func buildDecodeStrategy(kind Kind) (decodeFunc, error) {
	switch kind {
	case KindString:
		return decodeExpect("string"), nil
	case KindBool:
		return decodeExpect("boolean"), nil
	case KindNull:
		return decodeExpect("null"), nil
	case KindInt:
		return decodeInt, nil
	case KindFloat:
		return decodeFloat, nil
	case KindAny:
		return func(_ *Registry, _ string, _ *Type, v any, _ bool) (any, error) {
			return v, nil
		}, nil
	case KindEnum:
		return decodeEnum, nil
	case KindList, KindSequence, KindTupleVariadic:
		return decodeElements, nil
	case KindTupleFixed:
		return decodeTuple, nil
	case KindMap:
		return decodeMap, nil
	case KindPatternMap:
		return decodePatternMap, nil
	case KindRecord:
		return decodeRecordRef, nil
	case KindScalar:
		return decodeScalar, nil
	}
	return nil, &DeclarationError{Type: kindNames[kind], Reason: "no decode strategy for shape"}
}

// decodeExpect covers the primitive kinds with no coercion: the fast path in
// decodeField already accepted matching values, so reaching the strategy
// means the wire type is wrong.
func decodeExpect(expected string) decodeFunc {
	return func(_ *Registry, _ string, _ *Type, v any, _ bool) (any, error) {
		return nil, typeMismatch(expected, v)
	}
}

// decodeInt accepts native ints plus the integral float64 values a generic
// JSON parse produces for whole numbers.
func decodeInt(_ *Registry, _ string, _ *Type, v any, _ bool) (any, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return n, nil
	case float64:
		if n == float64(int64(n)) {
			return int(n), nil
		}
	}
	return nil, typeMismatch("integer", v)
}

func decodeFloat(_ *Registry, _ string, _ *Type, v any, _ bool) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return nil, typeMismatch("number", v)
}

// decodeEnum returns the canonical member value on a match. A non-member is
// fatal here; only a union trial downgrades it to "try the next variant".
func decodeEnum(_ *Registry, _ string, t *Type, v any, _ bool) (any, error) {
	for _, m := range t.Members {
		if looseEqual(m, v) {
			return m, nil
		}
	}
	return nil, Issues{{
		Path:    "/",
		Code:    CodeInvalidEnum,
		Message: fmt.Sprintf("value %v is not a member of %s", v, t),
		Params:  map[string]any{"got": v},
	}}
}

func decodeElements(r *Registry, name string, t *Type, v any, validate bool) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, typeMismatch("array", v)
	}
	out := make([]any, len(items))
	for i, item := range items {
		dec, err := r.decodeField(name, t.Elem, item, validate)
		if err != nil {
			return nil, rebaseIssues("/"+strconv.Itoa(i), err)
		}
		out[i] = dec
	}
	return out, nil
}

// decodeTuple rejects over-long arrays outright; a short array decodes the
// slots it covers, leaving the schema's minItems to complain when validation
// is on.
func decodeTuple(r *Registry, name string, t *Type, v any, validate bool) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, typeMismatch("array", v)
	}
	if len(items) > len(t.Slots) {
		return nil, Issues{{
			Path:    "/",
			Code:    CodeTupleArity,
			Message: fmt.Sprintf("tuple expects at most %d elements, got %d", len(t.Slots), len(items)),
		}}
	}
	out := make([]any, len(items))
	for i, item := range items {
		dec, err := r.decodeField(name, t.Slots[i], item, validate)
		if err != nil {
			return nil, rebaseIssues("/"+strconv.Itoa(i), err)
		}
		out[i] = dec
	}
	return out, nil
}

func decodeMap(r *Registry, name string, t *Type, v any, validate bool) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeMismatch("object", v)
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		dk, err := r.decodeField(name, t.Key, k, validate)
		if err != nil {
			return nil, rebaseIssues("/"+k, err)
		}
		ks, ok := dk.(string)
		if !ok {
			return nil, Issues{{Path: "/" + k, Code: CodeInvalidType, Message: "map key must decode to a string"}}
		}
		dv, err := r.decodeField(name, t.Elem, val, validate)
		if err != nil {
			return nil, rebaseIssues("/"+k, err)
		}
		out[ks] = dv
	}
	return out, nil
}

func decodePatternMap(r *Registry, name string, t *Type, v any, validate bool) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeMismatch("object", v)
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		dv, err := r.decodeField(name, t.Elem, val, validate)
		if err != nil {
			return nil, rebaseIssues("/"+k, err)
		}
		out[k] = dv
	}
	return out, nil
}

func decodeRecordRef(r *Registry, _ string, t *Type, v any, validate bool) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeMismatch("object", v)
	}
	return r.Decode(t.Rec, m, DecodeOpt{SkipValidation: !validate})
}

// decodeScalar resolves the codec at use time; a scalar name with no codec is
// a validation-shaped failure naming the field, since the wire value cannot
// be interpreted either way.
func decodeScalar(r *Registry, name string, t *Type, v any, _ bool) (any, error) {
	c, ok := r.codecFor(t.Name)
	if !ok {
		return nil, Issues{{
			Path:    "/",
			Code:    CodeUnresolvableType,
			Message: fmt.Sprintf("no codec for '%s: %s'", name, t.Name),
		}}
	}
	return c.ToNative(v)
}
