package holotype

import "fmt"

// restrictedVariant pairs a record variant with the restriction-carrying
// fields that discriminate it.
type restrictedVariant struct {
	variant  *Type
	restrict []*Field
}

// partitionVariants splits a union's variants into restricted record
// variants and everything else, preserving declared order within each group.
// A variant is restricted when it is a record with at least one field
// carrying a Restrict set; primitives and plain records are unrestricted.
func partitionVariants(variants []*Type) ([]restrictedVariant, []*Type) {
	var restricted []restrictedVariant
	var unrestricted []*Type
	for _, v := range variants {
		resolved, kind, err := classify(v)
		if err != nil || kind != KindRecord || resolved.Rec == nil {
			unrestricted = append(unrestricted, v)
			continue
		}
		var rs []*Field
		for _, f := range resolved.Rec.wireFields() {
			if len(f.Restrict) > 0 {
				rs = append(rs, f)
			}
		}
		if len(rs) > 0 {
			restricted = append(restricted, restrictedVariant{variant: v, restrict: rs})
		} else {
			unrestricted = append(unrestricted, v)
		}
	}
	return restricted, unrestricted
}

// restrictionAllows reports membership of v in the allowed literal set.
// Integral float64/int values compare equal so wire numbers match declared
// integer restrictions.
func restrictionAllows(allowed []any, v any) bool {
	for _, a := range allowed {
		if looseEqual(a, v) {
			return true
		}
	}
	return false
}

func looseEqual(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return aok && bok && af == bf
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// encodeUnion tries restricted variants first: a variant matches when the
// instance exposes every restricted field with a current value inside the
// allowed set. Unrestricted variants are then tried in declared order,
// moving past type-mismatch failures only. Exhaustion surfaces as a
// type-mismatch itself so an enclosing union trial can catch it; at the top
// level it is a genuine failure naming the union and the runtime type.
func (r *Registry) encodeUnion(t *Type, v any, keepAbsent bool) (any, error) {
	restricted, unrestricted := partitionVariants(t.Variants)

	if inst, ok := v.(*Instance); ok {
		for _, rv := range restricted {
			if encodeRestrictionsMet(inst, rv.restrict) {
				return r.encodeValue(rv.variant, v, keepAbsent)
			}
		}
	}
	for _, variant := range unrestricted {
		enc, err := r.encodeValue(variant, v, keepAbsent)
		if err == nil {
			return enc, nil
		}
		if isTypeMismatch(err) {
			continue
		}
		return nil, err
	}
	return nil, Issues{{
		Path:    "/",
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("no variant of %s matched the runtime type %T", t, v),
	}}
}

func encodeRestrictionsMet(inst *Instance, restrict []*Field) bool {
	for _, f := range restrict {
		cur, ok := inst.Fields[f.Name]
		if !ok || !restrictionAllows(f.Restrict, cur) {
			return false
		}
	}
	return true
}

// decodeUnion mirrors encodeUnion in the wire direction. Restricted variants
// match when the wire object carries every discriminator key with an allowed
// value; the matching variant then decodes with the caller's validate flag
// and its errors propagate (a discriminator match is authoritative). The
// flag passes through deliberately: a caller that skipped validation keeps
// it skipped inside a discriminator-selected variant, only the unrestricted
// trials below force it on.
// Unrestricted variants are trial-decoded with validation forced on, since
// ruling a variant in or out is itself a validation question; any Issues
// failure moves to the next variant. First match in declaration order wins;
// ambiguity is resolved by declaration order, not specificity.
func (r *Registry) decodeUnion(name string, t *Type, v any, validate bool) (any, error) {
	restricted, unrestricted := partitionVariants(t.Variants)

	if m, ok := v.(map[string]any); ok {
		for _, rv := range restricted {
			if decodeRestrictionsMet(m, rv.restrict) {
				return r.decodeField(name, rv.variant, v, validate)
			}
		}
	}
	for _, variant := range unrestricted {
		if variant.Kind == KindNull {
			continue
		}
		out, err := r.decodeField(name, variant, v, true)
		if err == nil {
			return out, nil
		}
		if _, ok := AsIssues(err); ok {
			continue
		}
		return nil, err
	}
	return nil, Issues{{
		Path:    "/",
		Code:    CodeUnionNoMatch,
		Message: fmt.Sprintf("unable to decode value for '%s: %s'", name, t),
	}}
}

func decodeRestrictionsMet(m map[string]any, restrict []*Field) bool {
	for _, f := range restrict {
		wv, ok := m[f.WireName()]
		if !ok || !restrictionAllows(f.Restrict, wv) {
			return false
		}
	}
	return true
}
