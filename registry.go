package holotype

import (
	"sync"

	js "github.com/reoring/holotype/jsonschema"
	sj "github.com/santhosh-tekuri/jsonschema/v5"
)

// Codec converts one scalar type between its native and wire representations
// and contributes the schema fragment describing the wire form. This is the
// sole supported extension point for new primitive wire representations.
type Codec interface {
	// ToWire converts a native value to a JSON-encodable one.
	ToWire(v any) (any, error)
	// ToNative converts a wire value back to the native representation.
	ToNative(v any) (any, error)
	// JSONSchema returns the schema fragment for the wire form.
	JSONSchema() *js.Schema
}

// EncodeOpt configures an encode pass. The zero value omits absent (nil)
// fields and skips schema validation, matching the common case.
type EncodeOpt struct {
	// KeepAbsent emits nil-valued fields as explicit JSON nulls instead of
	// dropping them.
	KeepAbsent bool
	// Validate runs the generated schema over the encoded output before
	// returning it.
	Validate bool
}

// DecodeOpt configures a decode pass. The zero value validates against the
// generated schema first.
type DecodeOpt struct {
	// SkipValidation bypasses the top-level schema check. Union variant
	// trials re-enable validation internally regardless.
	SkipValidation bool
}

// Registry is the process-wide engine context: scalar codecs, known record
// types, and the lazily populated strategy, schema, and validator caches.
// All mutation goes through explicit registration calls; caches only ever
// memoize deterministic derivations, so a duplicated populate race is
// harmless.
type Registry struct {
	mu      sync.RWMutex
	codecs  map[string]Codec
	records []*RecordType
	byName  map[string]*RecordType

	// encode/decode strategies keyed by *Type; sync.Map because population
	// is read-mostly after warmup.
	encStrategies sync.Map
	decStrategies sync.Map

	schemaMu    sync.Mutex
	schemas     map[string]*js.Schema            // record name -> object schema
	definitions map[string]map[string]*js.Schema // record name -> shared definitions
	compiled    map[string]*sj.Schema            // record name -> compiled validator
}

// NewRegistry returns a registry with the built-in scalar codecs
// ("datetime", "uuid") installed.
func NewRegistry() *Registry {
	r := &Registry{
		codecs:      map[string]Codec{},
		byName:      map[string]*RecordType{},
		schemas:     map[string]*js.Schema{},
		definitions: map[string]map[string]*js.Schema{},
		compiled:    map[string]*sj.Schema{},
	}
	r.RegisterCodec("datetime", dateTimeCodec{})
	r.RegisterCodec("uuid", uuidCodec{})
	return r
}

// DefaultRegistry is the package-level registry used by records built with
// MustBuild(holotype.DefaultRegistry).
var DefaultRegistry = NewRegistry()

// RegisterCodec installs a scalar codec under name. Later registrations for
// the same name override earlier ones; there is no removal.
func (r *Registry) RegisterCodec(name string, c Codec) {
	r.mu.Lock()
	r.codecs[name] = c
	r.mu.Unlock()
}

// codecFor looks up a registered scalar codec.
func (r *Registry) codecFor(name string) (Codec, bool) {
	r.mu.RLock()
	c, ok := r.codecs[name]
	r.mu.RUnlock()
	return c, ok
}

// RegisterRecord adds a record type to the dispatch set. Build calls this;
// direct use is only needed when constructing RecordTypes by hand.
// Re-registering a name replaces the earlier entry and drops its cached
// schema, since the shape may have changed.
func (r *Registry) RegisterRecord(rt *RecordType) {
	r.mu.Lock()
	if prev, ok := r.byName[rt.Name]; ok {
		for i, existing := range r.records {
			if existing == prev {
				r.records[i] = rt
				break
			}
		}
	} else {
		r.records = append(r.records, rt)
	}
	r.byName[rt.Name] = rt
	r.mu.Unlock()

	r.schemaMu.Lock()
	delete(r.schemas, rt.Name)
	delete(r.definitions, rt.Name)
	delete(r.compiled, rt.Name)
	r.schemaMu.Unlock()
}

// Record returns the registered record type with the given name, or nil.
func (r *Registry) Record(name string) *RecordType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// recordList snapshots the registration-ordered record set for dispatch.
func (r *Registry) recordList() []*RecordType {
	r.mu.RLock()
	out := make([]*RecordType, len(r.records))
	copy(out, r.records)
	r.mu.RUnlock()
	return out
}

// DecodeAny decodes a wire object into whichever registered record type
// accepts it: each candidate is tried in registration order with full
// validation, and the first success wins. Exhaustion is a validation error,
// not a crash.
func (r *Registry) DecodeAny(data map[string]any) (*Instance, error) {
	for _, rt := range r.recordList() {
		inst, err := r.Decode(rt, data, DecodeOpt{})
		if err == nil {
			return inst, nil
		}
		if _, ok := AsIssues(err); ok {
			continue
		}
		return nil, err
	}
	return nil, Issues{{
		Path:    "/",
		Code:    CodeNoMatchingRecord,
		Message: "no matching type for data",
	}}
}
