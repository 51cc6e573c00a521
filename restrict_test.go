package holotype_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	holotype "github.com/reoring/holotype"
)

var selector = holotype.EnumOf("a", "b", "c")

func buildRestricted(t *testing.T, reg *holotype.Registry) (ab, c, has *holotype.RecordType) {
	t.Helper()
	ab = holotype.NewRecord("RestrictAB").
		Field("foo", selector, holotype.Restrict("a", "b")).
		Field("bar", holotype.Int()).
		MustBuild(reg)
	c = holotype.NewRecord("RestrictC").
		Field("foo", selector, holotype.Restrict("c")).
		Field("baz", holotype.String()).
		MustBuild(reg)
	has = holotype.NewRecord("HasRestricted").
		Field("thing", holotype.Union(ab.Ref(), holotype.Int(), c.Ref())).
		MustBuild(reg)
	return ab, c, has
}

func TestRestrictedEncode(t *testing.T) {
	reg := holotype.NewRegistry()
	ab, c, has := buildRestricted(t, reg)

	x := has.New(map[string]any{"thing": ab.New(map[string]any{"foo": "a", "bar": 20})})
	out, err := x.ToWire(holotype.EncodeOpt{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"thing": map[string]any{"foo": "a", "bar": 20}}, out); diff != "" {
		t.Fatalf("wire mismatch:\n%s", diff)
	}

	y := has.New(map[string]any{"thing": 1000})
	out, err = y.ToWire(holotype.EncodeOpt{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out["thing"] != 1000 {
		t.Fatalf("thing = %v", out["thing"])
	}

	z := has.New(map[string]any{"thing": c.New(map[string]any{"foo": "c", "baz": "hi"})})
	out, err = z.ToWire(holotype.EncodeOpt{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"thing": map[string]any{"foo": "c", "baz": "hi"}}, out); diff != "" {
		t.Fatalf("wire mismatch:\n%s", diff)
	}

	// a value violating its own restriction encodes raw but fails the
	// post-encode schema check
	w := has.New(map[string]any{"thing": ab.New(map[string]any{"foo": "c", "bar": 20})})
	if _, err := w.ToWire(holotype.EncodeOpt{Validate: true}); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestRestrictedDecode(t *testing.T) {
	reg := holotype.NewRegistry()
	_, _, has := buildRestricted(t, reg)

	decoded, err := has.FromWire(map[string]any{"thing": map[string]any{"foo": "a", "bar": 20}}, holotype.DecodeOpt{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	inst := decoded.Get("thing").(*holotype.Instance)
	if inst.Type.Name != "RestrictAB" {
		t.Fatalf("thing decoded as %s", inst.Type.Name)
	}

	// discriminator says RestrictC, but baz has the wrong type: the
	// restricted match is authoritative, so this fails instead of falling
	// through to another variant
	_, err = has.FromWire(map[string]any{"thing": map[string]any{"foo": "c", "baz": 20}}, holotype.DecodeOpt{})
	if err == nil {
		t.Fatal("expected validation failure")
	}
}

func buildFancy(t *testing.T, reg *holotype.Registry) (aTrue, aFalse, bc, has *holotype.RecordType) {
	t.Helper()
	aTrue = holotype.NewRecord("FancyRestrictATrue").
		Field("foo", selector, holotype.Restrict("a")).
		Field("is_something", holotype.Bool(), holotype.Restrict(true)).
		Field("bar", holotype.String()).
		MustBuild(reg)
	aFalse = holotype.NewRecord("FancyRestrictAFalse").
		Field("foo", selector, holotype.Restrict("a")).
		Field("is_something", holotype.Bool(), holotype.Restrict(false)).
		Field("bar", holotype.String()).
		MustBuild(reg)
	bc = holotype.NewRecord("FancyRestrictBC").
		Field("foo", selector, holotype.Restrict("b", "c")).
		Field("bar", holotype.String()).
		MustBuild(reg)
	has = holotype.NewRecord("HasFancyRestricted").
		Field("thing", holotype.Union(aTrue.Ref(), aFalse.Ref(), bc.Ref())).
		MustBuild(reg)
	return aTrue, aFalse, bc, has
}

func TestMultiFieldRestrictions(t *testing.T) {
	reg := holotype.NewRegistry()
	aTrue, aFalse, bc, has := buildFancy(t, reg)

	cases := []struct {
		rt   *holotype.RecordType
		vals map[string]any
		wire map[string]any
	}{
		{aTrue, map[string]any{"foo": "a", "is_something": true, "bar": "a and true"},
			map[string]any{"foo": "a", "is_something": true, "bar": "a and true"}},
		{aFalse, map[string]any{"foo": "a", "is_something": false, "bar": "a and false"},
			map[string]any{"foo": "a", "is_something": false, "bar": "a and false"}},
		{bc, map[string]any{"foo": "c", "bar": "c and nothing"},
			map[string]any{"foo": "c", "bar": "c and nothing"}},
	}
	for _, tc := range cases {
		x := has.New(map[string]any{"thing": tc.rt.New(tc.vals)})
		out, err := x.ToWire(holotype.EncodeOpt{Validate: true})
		if err != nil {
			t.Fatalf("encode %s: %v", tc.rt.Name, err)
		}
		if diff := cmp.Diff(map[string]any{"thing": tc.wire}, out); diff != "" {
			t.Fatalf("wire mismatch for %s:\n%s", tc.rt.Name, diff)
		}

		decoded, err := has.FromWire(out, holotype.DecodeOpt{})
		if err != nil {
			t.Fatalf("decode %s: %v", tc.rt.Name, err)
		}
		inst := decoded.Get("thing").(*holotype.Instance)
		if inst.Type.Name != tc.rt.Name {
			t.Fatalf("decoded as %s, want %s", inst.Type.Name, tc.rt.Name)
		}

		// the non-unioned forms round-trip too
		solo, err := tc.rt.FromWire(tc.wire, holotype.DecodeOpt{})
		if err != nil {
			t.Fatalf("solo decode %s: %v", tc.rt.Name, err)
		}
		back, err := solo.ToWire(holotype.EncodeOpt{})
		if err != nil {
			t.Fatalf("solo encode %s: %v", tc.rt.Name, err)
		}
		if diff := cmp.Diff(tc.wire, back); diff != "" {
			t.Fatalf("solo round trip mismatch for %s:\n%s", tc.rt.Name, diff)
		}
	}
}

func TestRestrictedSchema(t *testing.T) {
	reg := holotype.NewRegistry()
	_, _, _, has := buildFancy(t, reg)

	schema, err := reg.Schema(has)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if schema.AdditionalProperties != false {
		t.Fatalf("additionalProperties = %v", schema.AdditionalProperties)
	}
	thing := schema.Properties["thing"]
	if len(thing.OneOf) != 3 {
		t.Fatalf("oneOf length = %d", len(thing.OneOf))
	}
	if thing.OneOf[0].Ref != "#/definitions/FancyRestrictATrue" {
		t.Fatalf("first variant ref = %q", thing.OneOf[0].Ref)
	}
	if diff := cmp.Diff([]string{"thing"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch:\n%s", diff)
	}

	def := schema.Definitions["FancyRestrictATrue"]
	if def == nil {
		t.Fatal("FancyRestrictATrue missing from definitions")
	}
	foo := def.Properties["foo"]
	if foo.Type != "string" || len(foo.Enum) != 1 || foo.Enum[0] != "a" {
		t.Fatalf("foo fragment = %+v", foo)
	}
	isSomething := def.Properties["is_something"]
	if isSomething.Type != "boolean" || len(isSomething.Enum) != 1 || isSomething.Enum[0] != true {
		t.Fatalf("is_something fragment = %+v", isSomething)
	}
	if diff := cmp.Diff([]string{"foo", "is_something", "bar"}, def.Required); diff != "" {
		t.Fatalf("definition required mismatch:\n%s", diff)
	}
}

func TestRestrictedDecodeSkipValidation(t *testing.T) {
	reg := holotype.NewRegistry()
	_, _, has := buildRestricted(t, reg)

	// the unknown key fails the schema check, so the validated path rejects
	wire := map[string]any{"thing": map[string]any{"foo": "a", "bar": 1, "junk": true}}
	if _, err := has.FromWire(wire, holotype.DecodeOpt{}); err == nil {
		t.Fatal("expected validated decode to reject the unknown key")
	}

	// a discriminator match keeps the caller's validation choice: skipping
	// validation skips it inside the selected variant too
	inst, err := has.FromWire(wire, holotype.DecodeOpt{SkipValidation: true})
	if err != nil {
		t.Fatalf("skip-validation decode: %v", err)
	}
	nested := inst.Get("thing").(*holotype.Instance)
	if nested.Type.Name != "RestrictAB" {
		t.Fatalf("dispatched to %s", nested.Type.Name)
	}
	if nested.Get("bar") != 1 {
		t.Fatalf("bar = %v", nested.Get("bar"))
	}
}

func TestMixedRestrictionRejected(t *testing.T) {
	reg := holotype.NewRegistry()
	_, err := holotype.NewRecord("InvalidRestrictedType").
		Field("foo", selector, holotype.Restrict("a", 1)).
		Build(reg)
	if err == nil {
		t.Fatal("expected declaration error for mixed restriction set")
	}
}
