package holotype

import (
	"time"

	"github.com/google/uuid"

	js "github.com/reoring/holotype/jsonschema"
)

// uuidPattern matches the canonical hyphenated form. There is no standalone
// schema keyword for UUIDs in draft-07, so the fragment uses a pattern.
const uuidPattern = "[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}"

// dateTimeCodec encodes time.Time as RFC3339 text. A value with no explicit
// offset is assumed UTC and gains a trailing "Z"; a value that already
// carries an offset is formatted with that offset untouched.
type dateTimeCodec struct{}

func (dateTimeCodec) ToWire(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, Issues{{Path: "/", Code: CodeInvalidType, Message: "expected time.Time"}}
	}
	return t.Format(time.RFC3339Nano), nil
}

func (dateTimeCodec) ToNative(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		// Already typed; pass through unchanged.
		return t, nil
	case string:
		return parseDateTime(t)
	default:
		return nil, Issues{{Path: "/", Code: CodeInvalidType, Message: "expected RFC3339 string"}}
	}
}

func (dateTimeCodec) JSONSchema() *js.Schema {
	return &js.Schema{Type: "string", Format: "date-time"}
}

// parseDateTime accepts RFC3339 with or without fractional seconds, plus the
// offset-less ISO-8601 form, which is taken as UTC.
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, Issues{{Path: "/", Code: CodeInvalidFormat, Message: "invalid RFC3339 time", Cause: err}}
	}
	return t.UTC(), nil
}

// uuidCodec encodes uuid.UUID as the canonical hyphenated lowercase string.
type uuidCodec struct{}

func (uuidCodec) ToWire(v any) (any, error) {
	u, ok := v.(uuid.UUID)
	if !ok {
		return nil, Issues{{Path: "/", Code: CodeInvalidType, Message: "expected uuid.UUID"}}
	}
	return u.String(), nil
}

func (uuidCodec) ToNative(v any) (any, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		u, err := uuid.Parse(t)
		if err != nil {
			return nil, Issues{{Path: "/", Code: CodeInvalidFormat, Message: "invalid UUID", Cause: err}}
		}
		return u, nil
	default:
		return nil, Issues{{Path: "/", Code: CodeInvalidType, Message: "expected UUID string"}}
	}
}

func (uuidCodec) JSONSchema() *js.Schema {
	return &js.Schema{Type: "string", Pattern: uuidPattern}
}
