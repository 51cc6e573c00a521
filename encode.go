package holotype

import (
	"fmt"
	"strconv"
)

// encodeFunc is a memoized per-type encode strategy.
type encodeFunc func(r *Registry, t *Type, v any, keepAbsent bool) (any, error)

// Encode walks the instance's declared fields and produces a JSON-encodable
// object. Internal (leading-underscore) fields never appear on the wire.
// nil-valued fields are dropped unless KeepAbsent is set. Validation is a
// top-level opt-in concern: nested record encodes never re-validate.
func (r *Registry) Encode(in *Instance, opt EncodeOpt) (map[string]any, error) {
	data, err := r.encodeRecord(in, opt.KeepAbsent)
	if err != nil {
		return nil, err
	}
	if opt.Validate {
		if err := r.Validate(in.Type, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (r *Registry) encodeRecord(in *Instance, keepAbsent bool) (map[string]any, error) {
	data := map[string]any{}
	for _, f := range in.Type.wireFields() {
		enc, err := r.encodeValue(f.Type, in.Fields[f.Name], keepAbsent)
		if err != nil {
			return nil, rebaseIssues("/"+f.WireName(), err)
		}
		if !keepAbsent && enc == nil {
			continue
		}
		data[f.WireName()] = enc
	}
	return data, nil
}

// encodeValue transforms one typed value into its wire form. nil propagates
// unchanged regardless of shape. Union strategies are resolved inline rather
// than cached: a union's behavior depends on the runtime value, so there is
// no value-independent strategy to memoize.
func (r *Registry) encodeValue(t *Type, v any, keepAbsent bool) (any, error) {
	if v == nil {
		return nil, nil
	}
	resolved, kind, err := classify(t)
	if err != nil {
		return nil, err
	}
	if kind == KindUnion {
		return r.encodeUnion(resolved, v, keepAbsent)
	}
	if fn, ok := r.encStrategies.Load(resolved); ok {
		return fn.(encodeFunc)(r, resolved, v, keepAbsent)
	}
	fn, err := buildEncodeStrategy(kind)
	if err != nil {
		return nil, err
	}
	// LoadOrStore keeps a concurrent duplicate derivation harmless: the
	// strategy is deterministic per type.
	actual, _ := r.encStrategies.LoadOrStore(resolved, fn)
	return actual.(encodeFunc)(r, resolved, v, keepAbsent)
}

func buildEncodeStrategy(kind Kind) (encodeFunc, error) {
	switch kind {
	case KindString:
		return encodePrimitive(kind, "string"), nil
	case KindInt:
		return encodePrimitive(kind, "integer"), nil
	case KindFloat:
		return encodePrimitive(kind, "number"), nil
	case KindBool:
		return encodePrimitive(kind, "boolean"), nil
	case KindNull:
		// Non-nil value against the null type is a mismatch; nil was
		// already passed through.
		return func(_ *Registry, _ *Type, v any, _ bool) (any, error) {
			return nil, typeMismatch("null", v)
		}, nil
	case KindAny:
		return func(_ *Registry, _ *Type, v any, _ bool) (any, error) {
			return v, nil
		}, nil
	case KindEnum:
		return encodeEnum, nil
	case KindList, KindSequence, KindTupleVariadic:
		return encodeElements, nil
	case KindTupleFixed:
		return encodeTuple, nil
	case KindMap:
		return encodeMap, nil
	case KindPatternMap:
		return encodePatternMap, nil
	case KindRecord:
		return encodeNestedRecord, nil
	case KindScalar:
		return encodeScalar, nil
	}
	return nil, &DeclarationError{Type: kindNames[kind], Reason: "no encode strategy for shape"}
}

func typeMismatch(expected string, v any) Issues {
	return Issues{{
		Path:    "/",
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("invalid type, expected %s but got %T", expected, v),
		Params:  map[string]any{"expected": expected},
	}}
}

func encodePrimitive(kind Kind, name string) encodeFunc {
	return func(_ *Registry, _ *Type, v any, _ bool) (any, error) {
		switch kind {
		case KindString:
			if _, ok := v.(string); ok {
				return v, nil
			}
		case KindBool:
			if _, ok := v.(bool); ok {
				return v, nil
			}
		case KindInt:
			switch n := v.(type) {
			case int:
				return n, nil
			case int64:
				return n, nil
			case float64:
				if n == float64(int64(n)) {
					return int64(n), nil
				}
			}
		case KindFloat:
			switch n := v.(type) {
			case float64:
				return n, nil
			case int:
				return n, nil
			}
		}
		return nil, typeMismatch(name, v)
	}
}

// encodeEnum emits the member value. A non-member is reported as a type
// mismatch so that a union trial moves on to the next variant.
func encodeEnum(_ *Registry, t *Type, v any, _ bool) (any, error) {
	for _, m := range t.Members {
		if looseEqual(m, v) {
			return m, nil
		}
	}
	return nil, typeMismatch(t.String(), v)
}

func encodeElements(r *Registry, t *Type, v any, keepAbsent bool) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, typeMismatch("array", v)
	}
	out := make([]any, len(items))
	for i, item := range items {
		enc, err := r.encodeValue(t.Elem, item, keepAbsent)
		if err != nil {
			return nil, rebaseIssues("/"+strconv.Itoa(i), err)
		}
		out[i] = enc
	}
	return out, nil
}

// encodeTuple encodes positionally. An arity mismatch is a genuine failure,
// not a type mismatch: union trials do not swallow it.
func encodeTuple(r *Registry, t *Type, v any, keepAbsent bool) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, typeMismatch("array", v)
	}
	if len(items) != len(t.Slots) {
		return nil, Issues{{
			Path:    "/",
			Code:    CodeTupleArity,
			Message: fmt.Sprintf("tuple expects %d elements, got %d", len(t.Slots), len(items)),
		}}
	}
	out := make([]any, len(items))
	for i, item := range items {
		enc, err := r.encodeValue(t.Slots[i], item, keepAbsent)
		if err != nil {
			return nil, rebaseIssues("/"+strconv.Itoa(i), err)
		}
		out[i] = enc
	}
	return out, nil
}

func encodeMap(r *Registry, t *Type, v any, keepAbsent bool) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeMismatch("object", v)
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		ek, err := r.encodeValue(t.Key, k, keepAbsent)
		if err != nil {
			return nil, rebaseIssues("/"+k, err)
		}
		ks, ok := ek.(string)
		if !ok {
			return nil, Issues{{Path: "/" + k, Code: CodeInvalidType, Message: "map key must encode to a string"}}
		}
		ev, err := r.encodeValue(t.Elem, val, keepAbsent)
		if err != nil {
			return nil, rebaseIssues("/"+k, err)
		}
		out[ks] = ev
	}
	return out, nil
}

// encodePatternMap is encodeMap with keys forced through the string path.
func encodePatternMap(r *Registry, t *Type, v any, keepAbsent bool) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, typeMismatch("object", v)
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		ev, err := r.encodeValue(t.Elem, val, keepAbsent)
		if err != nil {
			return nil, rebaseIssues("/"+k, err)
		}
		out[k] = ev
	}
	return out, nil
}

// encodeNestedRecord delegates to the value's own record walk. The value's
// runtime type drives the encoding, not the declared reference, which is
// what lets union trials encode any instance through the first record
// variant that accepts it.
func encodeNestedRecord(r *Registry, _ *Type, v any, keepAbsent bool) (any, error) {
	inst, ok := v.(*Instance)
	if !ok {
		return nil, typeMismatch("record", v)
	}
	return r.encodeRecord(inst, keepAbsent)
}

func encodeScalar(r *Registry, t *Type, v any, _ bool) (any, error) {
	c, ok := r.codecFor(t.Name)
	if !ok {
		return nil, &DeclarationError{Type: t.Name, Reason: "no codec registered for scalar"}
	}
	return c.ToWire(v)
}

// rebaseIssues re-roots child issue paths under base, wrapping non-Issues
// errors so declaration errors keep their identity.
func rebaseIssues(base string, err error) error {
	iss, ok := AsIssues(err)
	if !ok {
		return err
	}
	out := make(Issues, 0, len(iss))
	for _, it := range iss {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}
