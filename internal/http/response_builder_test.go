package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("HX-Trigger should be empty without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerCategoriesChanged("expense").
		TriggerSuccessNotification("Transaction created").
		Write(w)

	var got map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &got); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	if got["categories:changed"]["transactionType"] != "expense" {
		t.Errorf("categories:changed = %v", got["categories:changed"])
	}
	n := got["show-notification"]
	if n["type"] != "success" || n["message"] != "Transaction created" || n["duration"] != float64(3000) {
		t.Errorf("show-notification = %v", n)
	}
}

func TestHTMXResponseBuilder_Redirect(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Redirect("/dashboard/transactions?month=6&year=2025").
		Write(w)

	if got := w.Header().Get("HX-Redirect"); got != "/dashboard/transactions?month=6&year=2025" {
		t.Errorf("HX-Redirect = %q", got)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		build  func(string) *HTMXResponseBuilder
		status int
	}{
		{"bad request", BadRequestError, http.StatusBadRequest},
		{"unauthorized", UnauthorizedError, http.StatusUnauthorized},
		{"unprocessable", UnprocessableEntityError, http.StatusUnprocessableEntity},
		{"not found", NotFoundError, http.StatusNotFound},
		{"rate limited", TooManyRequestsError, http.StatusTooManyRequests},
		{"internal", InternalServerError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.build("<b>boom</b>").Write(w)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if !strings.Contains(w.Body.String(), "&lt;b&gt;boom&lt;/b&gt;") {
				t.Errorf("message not escaped: %s", w.Body.String())
			}
			if !strings.Contains(w.Header().Get("HX-Trigger"), `"type":"error"`) {
				t.Errorf("missing error notification: %s", w.Header().Get("HX-Trigger"))
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}
