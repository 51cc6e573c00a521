package holotype

import (
	gojson "github.com/goccy/go-json"
	yaml "gopkg.in/yaml.v3"
)

// DecodeJSON parses a JSON document and decodes it into an instance of this
// record type. Malformed input is a parse issue, not a validation one.
func (rt *RecordType) DecodeJSON(b []byte, opt DecodeOpt) (*Instance, error) {
	var data map[string]any
	if err := gojson.Unmarshal(b, &data); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: "invalid JSON document", Cause: err}}
	}
	return rt.FromWire(data, opt)
}

// DecodeYAML parses a YAML document and decodes it into an instance of this
// record type. YAML integer literals arrive as int and flow through the
// integer decode path unchanged.
func (rt *RecordType) DecodeYAML(b []byte, opt DecodeOpt) (*Instance, error) {
	var data map[string]any
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: "invalid YAML document", Cause: err}}
	}
	return rt.FromWire(data, opt)
}

// EncodeJSON encodes the instance and renders the result as a JSON document.
func (in *Instance) EncodeJSON(opt EncodeOpt) ([]byte, error) {
	data, err := in.ToWire(opt)
	if err != nil {
		return nil, err
	}
	return gojson.Marshal(data)
}

// EncodeYAML encodes the instance and renders the result as YAML.
func (in *Instance) EncodeYAML(opt EncodeOpt) ([]byte, error) {
	data, err := in.ToWire(opt)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}
