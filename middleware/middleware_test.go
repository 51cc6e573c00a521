package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	holotype "github.com/reoring/holotype"
	"github.com/reoring/holotype/middleware"
)

func TestValidateJSON(t *testing.T) {
	reg := holotype.NewRegistry()
	user := holotype.NewRecord("User").
		Field("name", holotype.String()).
		Field("age", holotype.Int(), holotype.Default(0)).
		MustBuild(reg)

	handler := middleware.ValidateJSON(user, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inst, ok := middleware.InstanceFromContext(r.Context())
		if !ok {
			t.Fatal("instance missing from context")
		}
		w.Write([]byte(inst.Get("name").(string)))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name": "ann"}`)))
	if rec.Code != http.StatusOK || rec.Body.String() != "ann" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"age": 3}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "issues") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
