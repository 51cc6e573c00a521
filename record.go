package holotype

import (
	"fmt"
	"strings"
)

// Field describes one declared record field. Immutable after the record type
// is built.
type Field struct {
	Name        string // declaration-side name
	Type        *Type
	Description string
	// Default and DefaultFn supply the field default; a field with neither
	// is required. DefaultFn is called per instantiation so mutable
	// defaults (slices, maps) are not shared.
	Default   any
	DefaultFn func() any
	// Restrict is the union-discriminator constraint: when non-empty the
	// field participates in restricted variant matching, and its schema
	// fragment becomes {type, enum}.
	Restrict []any
	// WireOverride forces the JSON name regardless of hyphenation.
	WireOverride string
	// PreserveUnderscore suppresses hyphenation for this one field.
	PreserveUnderscore bool

	wireName string // resolved at build time
}

// WireName returns the resolved JSON-side name of the field.
func (f *Field) WireName() string { return f.wireName }

// defaultValue materializes the declared default, calling the factory when
// present. Returns (nil, false) when the field has no default.
func (f *Field) defaultValue() (any, bool) {
	if f.Default != nil {
		return f.Default, true
	}
	if f.DefaultFn != nil {
		return f.DefaultFn(), true
	}
	return nil, false
}

// internal reports whether the field is skipped by every wire operation.
// Leading-underscore fields never round-trip through JSON.
func (f *Field) internal() bool { return strings.HasPrefix(f.Name, "_") }

// RecordType is an ordered field list plus wire policy. Declaration order is
// preserved for stable output; it is not a correctness invariant.
type RecordType struct {
	Name string
	Doc  string

	fields     []*Field
	byName     map[string]*Field
	extensible bool
	hyphenate  bool

	ref *Type     // the RecordRef type expression, one per record
	reg *Registry // the registry the type was built against
}

// Ref returns the type expression referencing this record, for use in other
// field declarations. The pointer is stable so strategy caches key on it.
func (rt *RecordType) Ref() *Type { return rt.ref }

// Extensible reports whether unknown wire keys are tolerated.
func (rt *RecordType) Extensible() bool { return rt.extensible }

// Fields returns the declared fields in order, internal fields included.
func (rt *RecordType) Fields() []*Field { return rt.fields }

// FieldByName returns the declared field with the given name, or nil.
func (rt *RecordType) FieldByName(name string) *Field { return rt.byName[name] }

// wireFields returns the non-internal fields in declaration order.
func (rt *RecordType) wireFields() []*Field {
	out := make([]*Field, 0, len(rt.fields))
	for _, f := range rt.fields {
		if f.internal() {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Instance is a value of a record type: field values keyed by declared name.
// Nested record values are themselves *Instance, so union encode can inspect
// the runtime type without reflection.
type Instance struct {
	Type   *RecordType
	Fields map[string]any
}

// New builds an instance with defaults applied, then overlays the given
// field values. Unknown names are a programming error and panic, matching
// what a typed constructor would reject at compile time.
func (rt *RecordType) New(values map[string]any) *Instance {
	inst := &Instance{Type: rt, Fields: make(map[string]any, len(rt.fields))}
	for _, f := range rt.fields {
		if dv, ok := f.defaultValue(); ok {
			inst.Fields[f.Name] = dv
		}
	}
	for k, v := range values {
		if rt.byName[k] == nil {
			panic(fmt.Sprintf("holotype: record %s has no field %q", rt.Name, k))
		}
		inst.Fields[k] = v
	}
	return inst
}

// Get returns the current value of a field (nil when absent).
func (in *Instance) Get(name string) any { return in.Fields[name] }

// Set assigns a field value in place and returns the instance for chaining.
func (in *Instance) Set(name string, v any) *Instance {
	if in.Type.byName[name] == nil {
		panic(fmt.Sprintf("holotype: record %s has no field %q", in.Type.Name, name))
	}
	in.Fields[name] = v
	return in
}

// ToWire encodes the instance through the registry it was declared against.
func (in *Instance) ToWire(opt EncodeOpt) (map[string]any, error) {
	return in.Type.reg.Encode(in, opt)
}

// FromWire decodes a wire object into an instance of this record type.
func (rt *RecordType) FromWire(data map[string]any, opt DecodeOpt) (*Instance, error) {
	return rt.reg.Decode(rt, data, opt)
}

// ---- builder ----

// FieldOption mutates a field at declaration time.
type FieldOption func(*Field)

// Default sets a literal default value, removing the field from the schema's
// required list when non-nil.
func Default(v any) FieldOption { return func(f *Field) { f.Default = v } }

// DefaultFn sets a default factory, called once per instantiation.
func DefaultFn(fn func() any) FieldOption { return func(f *Field) { f.DefaultFn = fn } }

// Description attaches schema description metadata.
func Description(s string) FieldOption { return func(f *Field) { f.Description = s } }

// Restrict attaches the union-discriminator constraint.
func Restrict(values ...any) FieldOption { return func(f *Field) { f.Restrict = values } }

// WireName overrides the JSON-side field name. The main use-case is JSON
// names which are keywords on the declaration side.
func WireName(name string) FieldOption { return func(f *Field) { f.WireOverride = name } }

// PreserveUnderscore keeps the declared name on the wire for this field even
// when the record hyphenates.
func PreserveUnderscore() FieldOption { return func(f *Field) { f.PreserveUnderscore = true } }

// RecordBuilder accumulates a record declaration.
type RecordBuilder struct {
	rt   *RecordType
	errs []error
}

// NewRecord starts a record declaration with strict unknown-key policy.
func NewRecord(name string) *RecordBuilder {
	rt := &RecordType{Name: name, byName: map[string]*Field{}}
	rt.ref = &Type{Kind: KindRecord, Name: name, Rec: rt}
	return &RecordBuilder{rt: rt}
}

// Ref returns the record's reference type before Build, so self-referential
// field declarations can close the loop.
func (b *RecordBuilder) Ref() *Type { return b.rt.ref }

// Doc sets the record doc text, copied into the schema description.
func (b *RecordBuilder) Doc(s string) *RecordBuilder {
	b.rt.Doc = s
	return b
}

// Field appends a field. Re-declaring a name overrides the earlier field in
// place, preserving its position; this is what Extend relies on.
func (b *RecordBuilder) Field(name string, t *Type, opts ...FieldOption) *RecordBuilder {
	f := &Field{Name: name, Type: t}
	for _, o := range opts {
		o(f)
	}
	if prev := b.rt.byName[name]; prev != nil {
		*prev = *f
		b.rt.byName[name] = prev
		return b
	}
	b.rt.fields = append(b.rt.fields, f)
	b.rt.byName[name] = f
	return b
}

// Extend copies the parent's fields in declared order as the starting field
// list. Fields the builder re-declares afterwards override by name; new
// fields append. This restates open record inheritance as explicit field-list
// composition.
func (b *RecordBuilder) Extend(parent *RecordType) *RecordBuilder {
	for _, pf := range parent.fields {
		cp := *pf
		b.rt.fields = append(b.rt.fields, &cp)
		b.rt.byName[cp.Name] = &cp
	}
	b.rt.extensible = parent.extensible
	b.rt.hyphenate = parent.hyphenate
	return b
}

// Extensible marks the record as accepting (and discarding) unknown wire
// keys; the schema emits additionalProperties true.
func (b *RecordBuilder) Extensible() *RecordBuilder {
	b.rt.extensible = true
	return b
}

// Hyphenate maps underscores in field names to hyphens on the wire, except
// for fields marked PreserveUnderscore or carrying a WireName override.
func (b *RecordBuilder) Hyphenate() *RecordBuilder {
	b.rt.hyphenate = true
	return b
}

// Build resolves wire names, validates restriction sets, and registers the
// record with reg.
func (b *RecordBuilder) Build(reg *Registry) (*RecordType, error) {
	rt := b.rt
	for _, f := range rt.fields {
		switch {
		case f.WireOverride != "":
			f.wireName = f.WireOverride
		case rt.hyphenate && !f.PreserveUnderscore:
			f.wireName = strings.ReplaceAll(f.Name, "_", "-")
		default:
			f.wireName = f.Name
		}
		if len(f.Restrict) > 0 {
			if err := checkRestrictionScalars(rt.Name+"."+f.Name, f.Restrict); err != nil {
				return nil, err
			}
		}
	}
	rt.reg = reg
	reg.RegisterRecord(rt)
	return rt, nil
}

// MustBuild is like Build but panics on error. Declaration errors are
// programming errors, so package-level record variables use this form.
func (b *RecordBuilder) MustBuild(reg *Registry) *RecordType {
	rt, err := b.Build(reg)
	if err != nil {
		panic(err)
	}
	return rt
}

// checkRestrictionScalars enforces the single-underlying-scalar invariant on
// a restriction set at declaration time rather than at use time.
func checkRestrictionScalars(name string, values []any) error {
	kind := ""
	for _, v := range values {
		var k string
		switch v.(type) {
		case string:
			k = "string"
		case bool:
			k = "boolean"
		case int:
			k = "integer"
		case float64:
			k = "number"
		default:
			return &DeclarationError{Type: name, Reason: fmt.Sprintf("restriction member %v is not a JSON scalar", v)}
		}
		if kind == "" {
			kind = k
		} else if kind != k {
			return &DeclarationError{Type: name, Reason: "restriction set mixes scalar types: " + kind + " and " + k}
		}
	}
	return nil
}
