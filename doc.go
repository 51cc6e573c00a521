package holotype

// Package holotype maps record types declared as explicit type-expression
// trees to and from JSON-encodable values, with a JSON Schema (Draft-07)
// document derived from the same declaration:
//
// - Bidirectional encode/decode driven by a per-shape strategy engine
// - Union resolution via field-level restrictions plus ordered trial decode
// - Schema generation with a shared definitions map, cycle-safe for
//   recursive record graphs
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; codecs live under codec/,
//   the schema document model under jsonschema/, and the CLI under
//   cmd/holotype.
// - All mutable state (scalar codecs, record registration, strategy and
//   schema caches) hangs off a Registry; the package-level DefaultRegistry
//   serves the common case.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	var Foo = holotype.NewRecord("Foo").
//		Field("x", holotype.Int(), holotype.Default(100)).
//		MustBuild(holotype.DefaultRegistry)
//
//	wire, err := inst.ToWire(holotype.EncodeOpt{})
//	inst, err := Foo.FromWire(data, holotype.DecodeOpt{})
//	doc, err := holotype.DefaultRegistry.Schema(Foo)
