// Package common provides shared HTTP helpers for API handlers.
package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stacklok/formsync-server/internal/allocator"
	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/service"
	"github.com/stacklok/formsync-server/internal/settings"
)

// Content types
const (
	ContentTypeJSON    = "application/json"
	ContentTypeJSONAPI = "application/vnd.api+json"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSONResponse writes data as application/json
func WriteJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	writeJSON(w, ContentTypeJSON, data, statusCode)
}

// WriteDocument writes a catalog document as application/vnd.api+json
func WriteDocument(w http.ResponseWriter, doc any, statusCode int) {
	writeJSON(w, ContentTypeJSONAPI, doc, statusCode)
}

func writeJSON(w http.ResponseWriter, contentType string, data any, statusCode int) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// WriteErrorResponse writes a standardized error response
func WriteErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	WriteJSONResponse(w, ErrorResponse{Error: message}, statusCode)
}

// WriteError maps err to a status code and writes it. The message carries the
// full error chain so callers see the underlying cause.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	WriteErrorResponse(w, err.Error(), status)
}

// StatusFor returns the HTTP status code for err
func StatusFor(err error) int {
	switch {
	case errors.Is(err, importer.ErrFetch), errors.Is(err, catalog.ErrParse):
		return http.StatusBadGateway
	case errors.Is(err, allocator.ErrIDAllocationExhausted):
		return http.StatusConflict
	case errors.Is(err, forms.ErrInvalidField),
		errors.Is(err, settings.ErrInvalidConfiguration),
		errors.Is(err, service.ErrInvalidFilter):
		return http.StatusBadRequest
	case service.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotPublished):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
