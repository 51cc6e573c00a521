package holotype

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/holotype/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType      = "invalid_type"
	CodeRequired         = "required"
	CodeUnknownKey       = "unknown_key"
	CodeInvalidEnum      = "invalid_enum"
	CodeInvalidFormat    = "invalid_format"
	CodeTupleArity       = "tuple_arity"
	CodeUnionNoMatch     = "union_no_match"
	CodeNoMatchingRecord = "no_matching_record"
	CodeUnresolvableType = "unresolvable_type"
	CodeSchemaViolation  = "schema_violation"
	CodeParseError       = "parse_error"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	Cause   error  // Optional: underlying error.
	// Rule records the schema validator keyword that produced this issue
	// (for example "oneOf" or "required") when it came through the
	// validation gateway.
	Rule string
	// Params carries structured parameters (e.g., {"expected":"string"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path: message
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// LocalizedMessage renders the issue through the i18n translator, falling
// back to the embedded Message when no translation exists for the code.
func (it Issue) LocalizedMessage() string {
	data := make(map[string]string, len(it.Params))
	for k, v := range it.Params {
		data[k] = fmt.Sprint(v)
	}
	if msg := i18n.T(it.Code, data); msg != it.Code {
		return msg
	}
	return it.Message
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// DeclarationError reports a record or type declaration the engine cannot
// work with: an unclassifiable shape, or a restriction set mixing scalar
// types. It indicates a programming error in the type definitions and is
// never produced by runtime data.
type DeclarationError struct {
	Type   string // name or rendering of the offending type expression
	Reason string
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("holotype: invalid declaration for %s: %s", e.Type, e.Reason)
}

// isTypeMismatch reports whether err is an Issues value consisting solely of
// type-mismatch entries. The union encode strategy treats such errors as
// "this variant does not apply" and moves on; anything else propagates.
func isTypeMismatch(err error) bool {
	iss, ok := AsIssues(err)
	if !ok || len(iss) == 0 {
		return false
	}
	for _, it := range iss {
		if it.Code != CodeInvalidType {
			return false
		}
	}
	return true
}
