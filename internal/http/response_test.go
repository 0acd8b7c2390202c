package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		JSON(map[string]string{"serialNo": "EX-002"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if strings.TrimSpace(w.Body.String()) != `{"serialNo":"EX-002"}` {
		t.Errorf("Body = %q", w.Body.String())
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger should not be set without triggers")
	}
}

func TestResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		TriggerChanged("finance", "EX-002").
		TriggerSuccessNotification("Transaction saved").
		Write(w)

	var triggers map[string]map[string]any
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	if triggers["finance:changed"]["key"] != "EX-002" {
		t.Errorf("finance:changed = %v", triggers["finance:changed"])
	}
	n := triggers["show-notification"]
	if n["type"] != "success" || n["message"] != "Transaction saved" || n["duration"] != float64(3000) {
		t.Errorf("show-notification = %v", n)
	}
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Errorf("unexpected status %d body %q", w.Code, w.Body.String())
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(http.StatusConflict, "Another save is still in progress").
		Header("Retry-After", "1").
		Write(w)

	if w.Code != http.StatusConflict {
		t.Errorf("Status code = %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Error("custom header missing")
	}
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Another save is still in progress" {
		t.Errorf("error = %q", body.Error)
	}
	if !strings.Contains(w.Header().Get("HX-Trigger"), `"type":"error"`) {
		t.Errorf("HX-Trigger = %s", w.Header().Get("HX-Trigger"))
	}
}
