package holotype_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	holotype "github.com/reoring/holotype"
	js "github.com/reoring/holotype/jsonschema"
)

func TestVariadicTuples(t *testing.T) {
	reg := holotype.NewRegistry()
	member := holotype.NewRecord("TupleMember").
		Field("a", holotype.Int()).
		MustBuild(reg)
	holder := holotype.NewRecord("TupleEllipsisHolder").
		Field("members", holotype.TupleOf(member.Ref())).
		MustBuild(reg)

	doc := map[string]any{"members": []any{
		map[string]any{"a": 1},
		map[string]any{"a": 2},
		map[string]any{"a": 3},
	}}
	decoded, err := holder.FromWire(doc, holotype.DecodeOpt{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	items := decoded.Get("members").([]any)
	if len(items) != 3 {
		t.Fatalf("len = %d", len(items))
	}
	if items[1].(*holotype.Instance).Get("a") != 2 {
		t.Fatalf("members[1].a = %v", items[1].(*holotype.Instance).Get("a"))
	}

	back, err := decoded.ToWire(holotype.EncodeOpt{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if diff := cmp.Diff(doc, back); diff != "" {
		t.Fatalf("round trip mismatch:\n%s", diff)
	}
}

func TestFixedTuples(t *testing.T) {
	reg := holotype.NewRegistry()
	member := holotype.NewRecord("TupleMember").
		Field("a", holotype.Int()).
		MustBuild(reg)

	first := holotype.NewRecord("TupleMemberFirstHolder").
		Field("member", holotype.Tuple(member.Ref(), holotype.String())).
		MustBuild(reg)
	second := holotype.NewRecord("TupleMemberSecondHolder").
		Field("member", holotype.Tuple(holotype.String(), member.Ref())).
		MustBuild(reg)

	firstDoc := map[string]any{"member": []any{map[string]any{"a": 1}, "a"}}
	decoded, err := first.FromWire(firstDoc, holotype.DecodeOpt{})
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	back, err := decoded.ToWire(holotype.EncodeOpt{})
	if err != nil {
		t.Fatalf("encode first: %v", err)
	}
	if diff := cmp.Diff(firstDoc, back); diff != "" {
		t.Fatalf("first round trip mismatch:\n%s", diff)
	}

	secondDoc := map[string]any{"member": []any{"a", map[string]any{"a": 1}}}
	decoded, err = second.FromWire(secondDoc, holotype.DecodeOpt{})
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	back, err = decoded.ToWire(holotype.EncodeOpt{})
	if err != nil {
		t.Fatalf("encode second: %v", err)
	}
	if diff := cmp.Diff(secondDoc, back); diff != "" {
		t.Fatalf("second round trip mismatch:\n%s", diff)
	}
}

func TestTupleArity(t *testing.T) {
	reg := holotype.NewRegistry()
	rt := holotype.NewRecord("Pair").
		Field("pair", holotype.Tuple(holotype.String(), holotype.Int())).
		MustBuild(reg)

	inst := rt.New(map[string]any{"pair": []any{"only one"}})
	_, err := inst.ToWire(holotype.EncodeOpt{})
	if err == nil {
		t.Fatal("expected arity error")
	}
	iss, ok := holotype.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %T", err)
	}
	if iss[0].Code != holotype.CodeTupleArity {
		t.Fatalf("code = %q", iss[0].Code)
	}

	// over-long arrays are rejected on decode even without validation
	_, err = rt.FromWire(map[string]any{"pair": []any{"a", 1, "extra"}}, holotype.DecodeOpt{SkipValidation: true})
	if err == nil {
		t.Fatal("expected arity error")
	}

	// the schema pins both bounds
	schema, err := reg.Schema(rt)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	pair := schema.Properties["pair"]
	if pair.MinItems == nil || *pair.MinItems != 2 || pair.MaxItems == nil || *pair.MaxItems != 2 {
		t.Fatalf("tuple bounds = %v/%v", pair.MinItems, pair.MaxItems)
	}
	slots, ok := pair.Items.([]*js.Schema)
	if !ok || len(slots) != 2 {
		t.Fatalf("items = %T", pair.Items)
	}
	if slots[0].Type != "string" || slots[1].Type != "integer" {
		t.Fatalf("slot types = %q/%q", slots[0].Type, slots[1].Type)
	}
}
