package sbi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) Problem {
	t.Helper()

	if ct := rec.Header().Get("Content-Type"); ct != ContentTypeProblemJSON {
		t.Errorf("Expected Content-Type %q, got %q", ContentTypeProblemJSON, ct)
	}

	var p Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("Failed to decode problem body: %v", err)
	}
	return p
}

func TestWriteProblem(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteProblem(rec, http.StatusBadRequest, "Bad Request", "missing field supi")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	p := decodeProblem(t, rec)
	if p.Type != "about:blank" {
		t.Errorf("Expected type 'about:blank', got %q", p.Type)
	}
	if p.Title != "Bad Request" {
		t.Errorf("Expected title 'Bad Request', got %q", p.Title)
	}
	if p.Status != http.StatusBadRequest {
		t.Errorf("Expected status field 400, got %d", p.Status)
	}
	if p.Detail != "missing field supi" {
		t.Errorf("Expected detail 'missing field supi', got %q", p.Detail)
	}
}

func TestWriteProblemCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteProblemCause(rec, http.StatusNotFound, "Not Found", "no such session", CauseContextNotFound)

	p := decodeProblem(t, rec)
	if p.Cause != CauseContextNotFound {
		t.Errorf("Expected cause %q, got %q", CauseContextNotFound, p.Cause)
	}
	if p.Status != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", p.Status)
	}
}

func TestProblemHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantCause  string
	}{
		{"BadRequest", func(w http.ResponseWriter) { BadRequest(w, "d") }, http.StatusBadRequest, ""},
		{"Unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "d") }, http.StatusUnauthorized, ""},
		{"Forbidden", func(w http.ResponseWriter) { Forbidden(w, "d") }, http.StatusForbidden, ""},
		{"NotFound", func(w http.ResponseWriter) { NotFound(w, "d") }, http.StatusNotFound, ""},
		{"Conflict", func(w http.ResponseWriter) { Conflict(w, "d") }, http.StatusConflict, ""},
		{"BadGateway", func(w http.ResponseWriter) { BadGateway(w, "d") }, http.StatusBadGateway, CausePeerNotResponding},
		{"ServiceUnavailable", func(w http.ResponseWriter) { ServiceUnavailable(w, "d", CauseInsufficientRes) }, http.StatusServiceUnavailable, CauseInsufficientRes},
		{"InternalServerError", func(w http.ResponseWriter) { InternalServerError(w, "d") }, http.StatusInternalServerError, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)

			if rec.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rec.Code)
			}

			p := decodeProblem(t, rec)
			if p.Cause != tc.wantCause {
				t.Errorf("Expected cause %q, got %q", tc.wantCause, p.Cause)
			}
		})
	}
}

func TestWriteProblemDetails_InvalidParams(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteProblemDetails(rec, &Problem{
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
		Cause:  CauseMandatoryIEMissing,
		InvalidParams: []InvalidParam{
			{Param: "pduSessionId", Reason: "required"},
		},
	})

	p := decodeProblem(t, rec)
	if p.Type != "about:blank" {
		t.Errorf("Expected default type, got %q", p.Type)
	}
	if len(p.InvalidParams) != 1 || p.InvalidParams[0].Param != "pduSessionId" {
		t.Errorf("Expected invalidParams for pduSessionId, got %+v", p.InvalidParams)
	}
}

func TestWriteJSONHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONCreated(rec, map[string]string{"id": "abc"})

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"id":"abc"`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	WriteNoContent(rec)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Supi string `json:"supi"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"supi":"imsi-001010000000001"}`))
	rec := httptest.NewRecorder()

	var p payload
	if !DecodeJSON(rec, req, &p) {
		t.Fatal("Expected DecodeJSON to succeed")
	}
	if p.Supi != "imsi-001010000000001" {
		t.Errorf("Unexpected decoded value: %q", p.Supi)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	rec = httptest.NewRecorder()

	if DecodeJSON(rec, req, &p) {
		t.Fatal("Expected DecodeJSON to fail")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	prob := decodeProblem(t, rec)
	if prob.Cause != CauseInvalidParameter {
		t.Errorf("Expected cause %q, got %q", CauseInvalidParameter, prob.Cause)
	}
}
