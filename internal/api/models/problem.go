package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Field error codes.
const (
	CodeRequired   = "REQUIRED"
	CodeOutOfRange = "OUT_OF_RANGE"
	CodeInvalid    = "INVALID"
	CodeConflict   = "CONFLICT"
)

const problemBase = "https://arealens.dev/problems/"

// Problem types.
const (
	ProblemTypeValidation           = problemBase + "validation-error"
	ProblemTypeNotFound             = problemBase + "not-found"
	ProblemTypeMethodNotAllowed     = problemBase + "method-not-allowed"
	ProblemTypeUnsupportedMediaType = problemBase + "unsupported-media-type"
	ProblemTypeTooManyRequests      = problemBase + "too-many-requests"
	ProblemTypeTLSRequired          = problemBase + "tls-required"
	ProblemTypeInternal             = problemBase + "internal-error"
	ProblemTypeUnavailable          = problemBase + "service-unavailable"
)

// NewProblem creates a Problem without detail.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// WithDetail sets the occurrence-specific explanation.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance sets the request path the problem occurred on.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors sets the field errors.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write sends the problem with its status code.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 validation problem.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	return NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID).
		WithDetail(detail).
		WithErrors(errors)
}

// NewNotFound creates a 404 problem.
func NewNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID).WithDetail(detail)
}

// NewMethodNotAllowed creates a 405 problem.
func NewMethodNotAllowed(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed, traceID).WithDetail(detail)
}

// NewUnsupportedMediaType creates a 415 problem.
func NewUnsupportedMediaType(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnsupportedMediaType, "Unsupported media type", http.StatusUnsupportedMediaType, traceID).WithDetail(detail)
}

// NewTooManyRequests creates a 429 problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID).WithDetail(detail)
}

// NewInternalError creates a 500 problem.
func NewInternalError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID).WithDetail(detail)
}

// NewServiceUnavailable creates a 503 problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID).WithDetail(detail)
}
