// Package middleware provides net/http glue for decoding request bodies
// into record instances at the HTTP boundary.
package middleware

import (
	"context"
	"io"
	"net/http"

	gojson "github.com/goccy/go-json"

	holotype "github.com/reoring/holotype"
)

// ctxKeyInstance is the context key for the decoded request body.
type ctxKeyInstance struct{}

// ContextWithInstance attaches a decoded instance to the context.
func ContextWithInstance(ctx context.Context, in *holotype.Instance) context.Context {
	return context.WithValue(ctx, ctxKeyInstance{}, in)
}

// InstanceFromContext retrieves the decoded instance stored by ValidateJSON.
func InstanceFromContext(ctx context.Context) (*holotype.Instance, bool) {
	in, ok := ctx.Value(ctxKeyInstance{}).(*holotype.Instance)
	return in, ok
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues holotype.Issues) map[string]any {
	return map[string]any{"issues": issues}
}

// ValidateJSON decodes the request body as rt, stores the instance in the
// request context on success, or answers 400 with the issue list.
func ValidateJSON(rt *holotype.RecordType, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		inst, err := rt.DecodeJSON(body, holotype.DecodeOpt{})
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			if iss, ok := holotype.AsIssues(err); ok {
				_ = gojson.NewEncoder(w).Encode(ErrorPayload(iss))
			} else {
				_ = gojson.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithInstance(r.Context(), inst)))
	})
}
