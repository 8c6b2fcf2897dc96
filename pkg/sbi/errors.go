package sbi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents an error response from a peer network function. The
// fields mirror the problem details the SBI servers produce.
type APIError struct {
	StatusCode int    `json:"status"`
	Title      string `json:"title,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Cause      string `json:"cause,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Cause != "" {
		return fmt.Sprintf("%d %s (cause %s)", e.StatusCode, msg, e.Cause)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, msg)
}

// IsAuthError returns true for 401 and 403 responses.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound returns true for 404 responses.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsConflict returns true for 409 responses.
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsUnavailable returns true when the peer reported overload or a dead
// backend of its own.
func (e *APIError) IsUnavailable() bool {
	return e.StatusCode == http.StatusBadGateway || e.StatusCode == http.StatusServiceUnavailable
}

// AsAPIError unwraps err to an *APIError when the failure was an HTTP
// error response rather than a transport failure.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// decodeAPIError builds an APIError from an error response body. Problem
// details bodies are decoded; anything else is carried verbatim.
func decodeAPIError(statusCode int, body []byte) *APIError {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && (apiErr.Title != "" || apiErr.Detail != "" || apiErr.Cause != "") {
		apiErr.StatusCode = statusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: statusCode,
		Detail:     strings.TrimSpace(string(body)),
	}
}
