package holotype

import "fmt"

// Kind identifies the structural shape of a type expression.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindNull
	KindAny
	KindUnion
	KindList
	KindSequence
	KindTupleFixed
	KindTupleVariadic
	KindMap
	KindPatternMap
	KindEnum
	KindRecord
	KindScalar
	KindAlias
)

var kindNames = map[Kind]string{
	KindString:        "string",
	KindInt:           "integer",
	KindFloat:         "number",
	KindBool:          "boolean",
	KindNull:          "null",
	KindAny:           "any",
	KindUnion:         "Union",
	KindList:          "List",
	KindSequence:      "Sequence",
	KindTupleFixed:    "Tuple",
	KindTupleVariadic: "Tuple[...]",
	KindMap:           "Map",
	KindPatternMap:    "PatternProperty",
	KindEnum:          "Enum",
	KindRecord:        "Record",
	KindScalar:        "Scalar",
	KindAlias:         "Alias",
}

// Type is a node of the statically constructed type-expression tree. Record
// declarations build these once via the constructors below; the engines
// interpret them and key strategy caches on pointer identity, so primitives
// are package-level singletons.
type Type struct {
	Kind Kind
	Name string // scalar/alias/enum name; record name mirror for diagnostics

	// Elem is the element type of List/Sequence/TupleVariadic, the value
	// type of Map/PatternMap, and the wrapped type of Alias.
	Elem *Type
	// Key is the key type of Map (keys must encode to strings).
	Key *Type
	// Variants are the ordered alternatives of a Union.
	Variants []*Type
	// Slots are the positional element types of a fixed-arity tuple.
	Slots []*Type
	// Members are the literal values of an Enum.
	Members []any
	// Rec points at the referenced record type; RecordRef cycles are
	// permitted at the graph level.
	Rec *RecordType
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindRecord:
		if t.Rec != nil {
			return t.Rec.Name
		}
		return "Record"
	case KindScalar, KindAlias, KindEnum:
		if t.Name != "" {
			return t.Name
		}
	}
	if n, ok := kindNames[t.Kind]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(t.Kind))
}

// Primitive singletons. Returning the same pointer from every call keeps the
// per-type strategy caches from fragmenting.
var (
	stringType = &Type{Kind: KindString}
	intType    = &Type{Kind: KindInt}
	floatType  = &Type{Kind: KindFloat}
	boolType   = &Type{Kind: KindBool}
	nullType   = &Type{Kind: KindNull}
	anyType    = &Type{Kind: KindAny}
)

// String returns the string primitive type.
func String() *Type { return stringType }

// Int returns the integer primitive type.
func Int() *Type { return intType }

// Float returns the number primitive type.
func Float() *Type { return floatType }

// Bool returns the boolean primitive type.
func Bool() *Type { return boolType }

// Null returns the null type. Mostly useful inside unions.
func Null() *Type { return nullType }

// Any returns the unconstrained type: values pass through both engines
// untouched and the schema fragment is empty.
func Any() *Type { return anyType }

// Optional wraps t in a union with null. Absence of a value decodes to nil
// without variant trial, and the schema generator excludes the field from
// "required" when it carries no default.
func Optional(t *Type) *Type {
	return Union(t, nullType)
}

// Union declares an ordered set of variants. Nested unions flatten, mirroring
// how typing collapses Optional[Union[...]] chains, so restriction
// partitioning sees every leaf variant. Duplicate variants collapse to the
// first occurrence.
func Union(variants ...*Type) *Type {
	flat := make([]*Type, 0, len(variants))
	seen := map[*Type]bool{}
	var add func(ts []*Type)
	add = func(ts []*Type) {
		for _, v := range ts {
			if v.Kind == KindUnion {
				add(v.Variants)
				continue
			}
			if seen[v] {
				continue
			}
			seen[v] = true
			flat = append(flat, v)
		}
	}
	add(variants)
	if len(flat) == 1 {
		return flat[0]
	}
	return &Type{Kind: KindUnion, Variants: flat}
}

// List declares a homogeneous array type.
func List(elem *Type) *Type { return &Type{Kind: KindList, Elem: elem} }

// Sequence declares a homogeneous array type with relaxed decode semantics
// (mirrors List for wire purposes; kept as a distinct shape).
func Sequence(elem *Type) *Type { return &Type{Kind: KindSequence, Elem: elem} }

// Tuple declares a fixed-arity positional array type.
func Tuple(slots ...*Type) *Type { return &Type{Kind: KindTupleFixed, Slots: slots} }

// TupleOf declares a variadic tuple: any length, uniform element type.
func TupleOf(elem *Type) *Type { return &Type{Kind: KindTupleVariadic, Elem: elem} }

// Map declares an object type with uniform key and value types. Keys must
// encode to strings.
func Map(key, value *Type) *Type { return &Type{Kind: KindMap, Key: key, Elem: value} }

// PatternMap declares an object type whose keys are free-form strings and
// whose values share one type; the schema uses patternProperties.
func PatternMap(value *Type) *Type { return &Type{Kind: KindPatternMap, Elem: value} }

// EnumOf declares an enum over the given literal members. All members must
// share one underlying scalar type; the schema generator rejects mixed sets.
func EnumOf(members ...any) *Type { return &Type{Kind: KindEnum, Members: members} }

// Literal declares a single-member enum.
func Literal(v any) *Type { return &Type{Kind: KindEnum, Members: []any{v}} }

// Scalar references a codec registered under name (built-ins: "datetime",
// "uuid"). Lookup happens at encode/decode/schema time against the Registry.
func Scalar(name string) *Type { return &Type{Kind: KindScalar, Name: name} }

// DateTime returns the built-in RFC3339 date-time scalar type.
func DateTime() *Type { return Scalar("datetime") }

// UUID returns the built-in UUID scalar type.
func UUID() *Type { return Scalar("uuid") }

// Alias declares a transparent named wrapper over another type: the engines
// unwrap one level and re-classify (NewType semantics without a codec).
func Alias(name string, inner *Type) *Type {
	return &Type{Kind: KindAlias, Name: name, Elem: inner}
}

// classify resolves a type expression to the shape the engines dispatch on,
// unwrapping transparent aliases. Unknown shapes fail fast with a
// DeclarationError naming the type; they are never treated as opaque.
func classify(t *Type) (*Type, Kind, error) {
	if t == nil {
		return nil, KindInvalid, &DeclarationError{Type: "<nil>", Reason: "nil type expression"}
	}
	for t.Kind == KindAlias {
		if t.Elem == nil {
			return nil, KindInvalid, &DeclarationError{Type: t.Name, Reason: "alias wraps no type"}
		}
		t = t.Elem
	}
	switch t.Kind {
	case KindString, KindInt, KindFloat, KindBool, KindNull, KindAny,
		KindUnion, KindList, KindSequence, KindTupleFixed, KindTupleVariadic,
		KindMap, KindPatternMap, KindEnum, KindRecord, KindScalar:
		return t, t.Kind, nil
	}
	return nil, KindInvalid, &DeclarationError{Type: t.String(), Reason: "unrecognized type shape"}
}

// isJSONPrimitive reports whether v is already a JSON-native value matching
// the primitive kind, enabling the decode fast path.
func isJSONPrimitive(k Kind, v any) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindInt:
		_, ok := v.(int)
		return ok
	case KindFloat:
		_, ok := v.(float64)
		return ok
	case KindNull:
		return v == nil
	}
	return false
}
