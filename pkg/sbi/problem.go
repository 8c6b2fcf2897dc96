// Package sbi provides the shared service-based interface chassis used by
// every network function: the HTTP server and router, the RFC 7807 problem
// response surface, the JSON client, and bearer-token middleware.
package sbi

import (
	"encoding/json"
	"net/http"
)

// Problem represents an RFC 7807 "problem details" response, extended with
// the protocol cause and invalid-parameter fields used on SBI interfaces.
// https://tools.ietf.org/html/rfc7807
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	// If not set, defaults to "about:blank".
	Type string `json:"type,omitempty"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// Cause is a machine-readable application error cause, for example
	// "MANDATORY_IE_MISSING" or "CONTEXT_NOT_FOUND".
	Cause string `json:"cause,omitempty"`

	// InvalidParams names the request attributes that failed validation.
	InvalidParams []InvalidParam `json:"invalidParams,omitempty"`
}

// InvalidParam identifies one invalid request attribute and why it was
// rejected.
type InvalidParam struct {
	Param  string `json:"param"`
	Reason string `json:"reason,omitempty"`
}

// ContentTypeProblemJSON is the Content-Type for RFC 7807 problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// Common cause values shared across network functions.
const (
	CauseMandatoryIEMissing = "MANDATORY_IE_MISSING"
	CauseInvalidParameter   = "INVALID_PARAMETER"
	CauseContextNotFound    = "CONTEXT_NOT_FOUND"
	CauseSubscriptionDenied = "SUBSCRIPTION_DENIED"
	CauseInsufficientRes    = "INSUFFICIENT_RESOURCES"
	CausePeerNotResponding  = "PEER_NOT_RESPONDING"
	CauseSystemFailure      = "SYSTEM_FAILURE"
)

// WriteProblem writes an RFC 7807 problem response.
func WriteProblem(w http.ResponseWriter, status int, title, detail string) {
	problem := &Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	}

	writeProblemJSON(w, problem)
}

// WriteProblemCause writes an RFC 7807 problem response carrying an
// application cause value.
func WriteProblemCause(w http.ResponseWriter, status int, title, detail, cause string) {
	problem := &Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
		Cause:  cause,
	}

	writeProblemJSON(w, problem)
}

// WriteProblemDetails writes a fully populated problem response. Callers use
// this when they need invalidParams or a custom type URI.
func WriteProblemDetails(w http.ResponseWriter, problem *Problem) {
	if problem.Type == "" {
		problem.Type = "about:blank"
	}

	writeProblemJSON(w, problem)
}

func writeProblemJSON(w http.ResponseWriter, problem *Problem) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

// Common problem helper functions for standard HTTP errors.

// BadRequest writes a 400 Bad Request problem response.
func BadRequest(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusBadRequest, "Bad Request", detail)
}

// BadRequestCause writes a 400 Bad Request problem response with a cause.
func BadRequestCause(w http.ResponseWriter, detail, cause string) {
	WriteProblemCause(w, http.StatusBadRequest, "Bad Request", detail, cause)
}

// Unauthorized writes a 401 Unauthorized problem response.
func Unauthorized(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusUnauthorized, "Unauthorized", detail)
}

// Forbidden writes a 403 Forbidden problem response.
func Forbidden(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusForbidden, "Forbidden", detail)
}

// NotFound writes a 404 Not Found problem response.
func NotFound(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusNotFound, "Not Found", detail)
}

// NotFoundCause writes a 404 Not Found problem response with a cause.
func NotFoundCause(w http.ResponseWriter, detail, cause string) {
	WriteProblemCause(w, http.StatusNotFound, "Not Found", detail, cause)
}

// Conflict writes a 409 Conflict problem response.
func Conflict(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusConflict, "Conflict", detail)
}

// BadGateway writes a 502 Bad Gateway problem response. Used when an
// upstream network function returned an unusable answer.
func BadGateway(w http.ResponseWriter, detail string) {
	WriteProblemCause(w, http.StatusBadGateway, "Bad Gateway", detail, CausePeerNotResponding)
}

// ServiceUnavailable writes a 503 Service Unavailable problem response.
// Used when a required peer cannot be reached or a resource pool is
// exhausted.
func ServiceUnavailable(w http.ResponseWriter, detail, cause string) {
	WriteProblemCause(w, http.StatusServiceUnavailable, "Service Unavailable", detail, cause)
}

// InternalServerError writes a 500 Internal Server Error problem response.
func InternalServerError(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", detail)
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteJSONOK writes a 200 OK JSON response.
func WriteJSONOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteJSONCreated writes a 201 Created JSON response.
func WriteJSONCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON decodes a JSON request body into dst. It returns false after
// writing a 400 problem response when the body cannot be parsed.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequestCause(w, "invalid JSON body: "+err.Error(), CauseInvalidParameter)
		return false
	}
	return true
}
