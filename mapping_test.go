package holotype_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	holotype "github.com/reoring/holotype"
)

func TestPatternMapOfRecords(t *testing.T) {
	reg := holotype.NewRegistry()
	foo := holotype.NewRecord("Foo").
		Field("a", holotype.String()).
		Field("b", holotype.Int()).
		MustBuild(reg)
	container := holotype.NewRecord("Container").
		Field("bar", holotype.PatternMap(foo.Ref())).
		MustBuild(reg)

	doc := map[string]any{"bar": map[string]any{
		"first":  map[string]any{"a": "one", "b": 1},
		"second": map[string]any{"a": "two", "b": 2},
	}}
	decoded, err := container.FromWire(doc, holotype.DecodeOpt{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	bar := decoded.Get("bar").(map[string]any)
	if bar["first"].(*holotype.Instance).Get("a") != "one" {
		t.Fatalf("bar.first.a = %v", bar["first"].(*holotype.Instance).Get("a"))
	}

	back, err := decoded.ToWire(holotype.EncodeOpt{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if diff := cmp.Diff(doc, back); diff != "" {
		t.Fatalf("round trip mismatch:\n%s", diff)
	}

	bad := map[string]any{"bar": map[string]any{
		"first":  map[string]any{"a": "one", "b": 1},
		"second": map[string]any{"a": "two", "b": "2"},
	}}
	if _, err := container.FromWire(bad, holotype.DecodeOpt{}); err == nil {
		t.Fatal("expected validation failure for wrong interior type")
	}
}

func TestPatternMapOfUnions(t *testing.T) {
	reg := holotype.NewRegistry()
	foo := holotype.NewRecord("Foo").
		Field("a", holotype.String()).
		Field("b", holotype.Int()).
		MustBuild(reg)
	container := holotype.NewRecord("ComplexContainer").
		Field("baz", holotype.PatternMap(holotype.Union(foo.Ref(), holotype.List(foo.Ref()), holotype.String()))).
		MustBuild(reg)

	doc := map[string]any{"baz": map[string]any{
		"first":  map[string]any{"a": "one", "b": 1},
		"second": []any{map[string]any{"a": "two", "b": 2}},
		"third":  "three",
	}}
	decoded, err := container.FromWire(doc, holotype.DecodeOpt{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	baz := decoded.Get("baz").(map[string]any)
	if _, ok := baz["first"].(*holotype.Instance); !ok {
		t.Fatalf("first should be an instance, got %T", baz["first"])
	}
	if _, ok := baz["second"].([]any); !ok {
		t.Fatalf("second should be a list, got %T", baz["second"])
	}
	if baz["third"] != "three" {
		t.Fatalf("third = %v", baz["third"])
	}

	back, err := decoded.ToWire(holotype.EncodeOpt{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if diff := cmp.Diff(doc, back); diff != "" {
		t.Fatalf("round trip mismatch:\n%s", diff)
	}
}

func TestPatternMapSchema(t *testing.T) {
	reg := holotype.NewRegistry()
	foo := holotype.NewRecord("Foo").
		Field("a", holotype.String()).
		Field("b", holotype.Int()).
		MustBuild(reg)
	container := holotype.NewRecord("Container").
		Field("bar", holotype.PatternMap(foo.Ref())).
		MustBuild(reg)

	schema, err := reg.Schema(container)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	bar := schema.Properties["bar"]
	if bar.Type != "object" {
		t.Fatalf("bar type = %q", bar.Type)
	}
	val := bar.PatternProperties[".*"]
	if val == nil || val.Ref != "#/definitions/Foo" {
		t.Fatalf("pattern property = %+v", val)
	}
	if schema.Definitions["Foo"] == nil {
		t.Fatal("Foo missing from definitions")
	}
}

func TestPlainMapKeysAndValues(t *testing.T) {
	reg := holotype.NewRegistry()
	rt := holotype.NewRecord("Counts").
		Field("counts", holotype.Map(holotype.String(), holotype.Int())).
		MustBuild(reg)

	doc := map[string]any{"counts": map[string]any{"a": 1, "b": 2}}
	decoded, err := rt.FromWire(doc, holotype.DecodeOpt{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	counts := decoded.Get("counts").(map[string]any)
	if counts["b"] != 2 {
		t.Fatalf("counts.b = %v", counts["b"])
	}

	if _, err := rt.FromWire(map[string]any{"counts": map[string]any{"a": "x"}}, holotype.DecodeOpt{}); err == nil {
		t.Fatal("expected validation failure for non-integer value")
	}
}
