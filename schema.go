package holotype

import (
	js "github.com/reoring/holotype/jsonschema"
)

// Schema returns the standalone Draft-07 document for a record: the record's
// object schema inlined at the root, with every transitively referenced
// record collected under definitions and pointed at via $ref. Results are
// cached per record name until the record is re-registered.
func (r *Registry) Schema(rt *RecordType) (*js.Schema, error) {
	r.schemaMu.Lock()
	defer r.schemaMu.Unlock()
	return r.schemaLocked(rt)
}

func (r *Registry) schemaLocked(rt *RecordType) (*js.Schema, error) {
	body, err := r.recordSchemaLocked(rt)
	if err != nil {
		return nil, err
	}
	defs, err := r.definitionsLocked(rt)
	if err != nil {
		return nil, err
	}
	doc := body.Clone()
	doc.SchemaURI = js.Draft7URI
	if len(defs) > 0 {
		doc.Definitions = defs
	}
	return doc, nil
}

// EmbeddableSchema returns the record's schema in embeddable form: every
// definition the record transitively references, plus the record's own object
// schema keyed by its name. The whole map can be merged into another
// document's definitions table with no dangling $ref.
func (r *Registry) EmbeddableSchema(rt *RecordType) (map[string]*js.Schema, error) {
	r.schemaMu.Lock()
	defer r.schemaMu.Unlock()
	body, err := r.recordSchemaLocked(rt)
	if err != nil {
		return nil, err
	}
	defs, err := r.definitionsLocked(rt)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*js.Schema, len(defs)+1)
	for k, v := range defs {
		out[k] = v
	}
	out[rt.Name] = body
	return out, nil
}

// AllSchemas generates the standalone schema document for every record
// registered with reg, keyed by record name.
func AllSchemas(reg *Registry) (map[string]*js.Schema, error) {
	out := map[string]*js.Schema{}
	reg.schemaMu.Lock()
	defer reg.schemaMu.Unlock()
	for _, rt := range reg.recordList() {
		s, err := reg.schemaLocked(rt)
		if err != nil {
			return nil, err
		}
		out[rt.Name] = s
	}
	return out, nil
}

// recordSchemaLocked derives (and caches) the object schema for one record.
func (r *Registry) recordSchemaLocked(rt *RecordType) (*js.Schema, error) {
	if s, ok := r.schemas[rt.Name]; ok {
		return s, nil
	}
	s := &js.Schema{
		Type:       "object",
		Properties: map[string]*js.Schema{},
	}
	if rt.Doc != "" {
		s.Description = rt.Doc
	}
	if rt.extensible {
		s.AdditionalProperties = true
	} else {
		s.AdditionalProperties = false
	}
	for _, f := range rt.wireFields() {
		fs, err := r.fieldSchema(f)
		if err != nil {
			return nil, err
		}
		s.Properties[f.WireName()] = fs
		if fieldRequired(f) {
			s.Required = append(s.Required, f.WireName())
		}
	}
	r.schemas[rt.Name] = s
	return s, nil
}

// fieldRequired reports whether the field lands in the schema's required
// list. A field starts required; only a materialized non-nil default
// (literal or factory-produced) or a nullable (union-with-null) type relaxes
// it. A default of nil declares nothing and leaves the field required, even
// when it comes out of a factory.
func fieldRequired(f *Field) bool {
	if dv, ok := f.defaultValue(); ok && dv != nil {
		return false
	}
	t := f.Type
	for t != nil && t.Kind == KindAlias {
		t = t.Elem
	}
	if t != nil && t.Kind == KindUnion {
		for _, v := range t.Variants {
			if v.Kind == KindNull {
				return false
			}
		}
	}
	return true
}

// fieldSchema builds the property fragment: a restriction set collapses the
// field to a bare enum of the allowed literals, otherwise the type's schema
// applies. Description and default metadata are layered onto a clone so the
// shared per-type fragment stays pristine.
func (r *Registry) fieldSchema(f *Field) (*js.Schema, error) {
	var base *js.Schema
	if len(f.Restrict) > 0 {
		base = &js.Schema{
			Type: restrictionScalarType(f.Restrict),
			Enum: append([]any(nil), f.Restrict...),
		}
	} else {
		ts, err := r.typeSchema(f.Type)
		if err != nil {
			return nil, err
		}
		base = ts
	}
	dv, _ := f.defaultValue()
	if f.Description == "" && dv == nil {
		return base, nil
	}
	out := base.Clone()
	if f.Description != "" {
		out.Description = f.Description
	}
	if dv != nil {
		// Defaults appear in the schema in wire form so the document stays
		// self-describing for non-holotype consumers. Factory defaults are
		// materialized here like everywhere else.
		if enc, err := r.encodeValue(f.Type, dv, false); err == nil {
			out.Default = enc
		} else {
			out.Default = dv
		}
	}
	return out, nil
}

// isAnyElem reports whether an element type carries no constraint at all, in
// which case the container schema leaves the element schema off entirely.
func isAnyElem(t *Type) bool {
	resolved, kind, err := classify(t)
	return err == nil && resolved != nil && kind == KindAny
}

// restrictionScalarType names the JSON type shared by a restriction set.
// Build already rejected mixed or non-scalar sets, so the first member is
// representative.
func restrictionScalarType(values []any) string {
	if len(values) == 0 {
		return ""
	}
	switch values[0].(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int:
		return "integer"
	case float64:
		return "number"
	}
	return ""
}

// typeSchema maps a type expression to its Draft-07 fragment.
func (r *Registry) typeSchema(t *Type) (*js.Schema, error) {
	resolved, kind, err := classify(t)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindString:
		return &js.Schema{Type: "string"}, nil
	case KindInt:
		return &js.Schema{Type: "integer"}, nil
	case KindFloat:
		return &js.Schema{Type: "number"}, nil
	case KindBool:
		return &js.Schema{Type: "boolean"}, nil
	case KindNull:
		return &js.Schema{Type: "null"}, nil
	case KindAny:
		return &js.Schema{}, nil
	case KindEnum:
		return &js.Schema{
			Type: restrictionScalarType(resolved.Members),
			Enum: append([]any(nil), resolved.Members...),
		}, nil
	case KindUnion:
		variants := make([]*js.Schema, 0, len(resolved.Variants))
		for _, v := range resolved.Variants {
			vs, err := r.typeSchema(v)
			if err != nil {
				return nil, err
			}
			variants = append(variants, vs)
		}
		return &js.Schema{OneOf: variants}, nil
	case KindList, KindSequence, KindTupleVariadic:
		if isAnyElem(resolved.Elem) {
			return &js.Schema{Type: "array"}, nil
		}
		elem, err := r.typeSchema(resolved.Elem)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: elem}, nil
	case KindTupleFixed:
		slots := make([]*js.Schema, 0, len(resolved.Slots))
		for _, s := range resolved.Slots {
			ss, err := r.typeSchema(s)
			if err != nil {
				return nil, err
			}
			slots = append(slots, ss)
		}
		n := len(slots)
		return &js.Schema{
			Type:     "array",
			Items:    slots,
			MinItems: js.IntPtr(n),
			MaxItems: js.IntPtr(n),
		}, nil
	case KindMap:
		if isAnyElem(resolved.Elem) {
			return &js.Schema{Type: "object"}, nil
		}
		val, err := r.typeSchema(resolved.Elem)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "object", AdditionalProperties: val}, nil
	case KindPatternMap:
		val, err := r.typeSchema(resolved.Elem)
		if err != nil {
			return nil, err
		}
		return &js.Schema{
			Type:              "object",
			PatternProperties: map[string]*js.Schema{".*": val},
		}, nil
	case KindRecord:
		return &js.Schema{Ref: "#/definitions/" + resolved.Rec.Name}, nil
	case KindScalar:
		c, ok := r.codecFor(resolved.Name)
		if !ok {
			return nil, &DeclarationError{Type: resolved.Name, Reason: "no codec registered for scalar"}
		}
		return c.JSONSchema().Clone(), nil
	}
	return nil, &DeclarationError{Type: resolved.String(), Reason: "no schema for shape"}
}

// definitionsLocked collects the object schemas of every record reachable
// from root. root itself is inlined at the document top and only enters
// definitions when one of its own fields refers back to it. The walk
// descends into every union variant and tuple slot; an already-expanded
// record is skipped, which is what lets reference cycles terminate.
func (r *Registry) definitionsLocked(root *RecordType) (map[string]*js.Schema, error) {
	if d, ok := r.definitions[root.Name]; ok {
		return d, nil
	}
	defs := map[string]*js.Schema{}
	seen := map[string]bool{}

	var walkType func(t *Type) error
	var walkRecord func(rt *RecordType) error

	walkType = func(t *Type) error {
		if t == nil {
			return nil
		}
		resolved, kind, err := classify(t)
		if err != nil {
			return err
		}
		switch kind {
		case KindRecord:
			return walkRecord(resolved.Rec)
		case KindUnion:
			for _, v := range resolved.Variants {
				if err := walkType(v); err != nil {
					return err
				}
			}
		case KindTupleFixed:
			for _, s := range resolved.Slots {
				if err := walkType(s); err != nil {
					return err
				}
			}
		case KindList, KindSequence, KindTupleVariadic, KindPatternMap:
			return walkType(resolved.Elem)
		case KindMap:
			if err := walkType(resolved.Key); err != nil {
				return err
			}
			return walkType(resolved.Elem)
		}
		return nil
	}
	walkRecord = func(rt *RecordType) error {
		if seen[rt.Name] {
			return nil
		}
		seen[rt.Name] = true
		s, err := r.recordSchemaLocked(rt)
		if err != nil {
			return err
		}
		defs[rt.Name] = s
		for _, f := range rt.wireFields() {
			if len(f.Restrict) > 0 {
				continue
			}
			if err := walkType(f.Type); err != nil {
				return err
			}
		}
		return nil
	}

	for _, f := range root.wireFields() {
		if len(f.Restrict) > 0 {
			continue
		}
		if err := walkType(f.Type); err != nil {
			return nil, err
		}
	}
	r.definitions[root.Name] = defs
	return defs, nil
}
