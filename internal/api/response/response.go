// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/arealens/arealens/internal/api/middleware"
	"github.com/arealens/arealens/internal/api/models"
)

// ContentTypeGeoJSON is the media type of GeoJSON documents (RFC 7946).
const ContentTypeGeoJSON = "application/geo+json"

// JSON writes a JSON response with the given status code.
// Includes X-Request-Id header for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, "application/json", data)
}

// GeoJSON writes a GeoJSON document with status 200.
func GeoJSON(w http.ResponseWriter, r *http.Request, data any) {
	write(w, r, http.StatusOK, ContentTypeGeoJSON, data)
}

func write(w http.ResponseWriter, r *http.Request, status int, contentType string, data any) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes a Problem+JSON error response.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	Error(w, r, models.NewBadRequest(middleware.GetRequestID(r.Context()), detail, errors))
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewNotFound(middleware.GetRequestID(r.Context()), detail))
}

// MethodNotAllowed writes a 405 Method Not Allowed error response.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewMethodNotAllowed(middleware.GetRequestID(r.Context()), detail))
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewInternalError(middleware.GetRequestID(r.Context()), detail))
}

// ServiceUnavailable writes a 503 Service Unavailable error response.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewServiceUnavailable(middleware.GetRequestID(r.Context()), detail))
}
