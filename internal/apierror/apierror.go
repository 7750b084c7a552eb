// Package apierror provides the error envelopes returned by the HTTP API.
// Handlers never serialize raw persistence errors; they go through this package.
package apierror

// APIError is the canonical error envelope for 4xx/5xx responses.
type APIError struct {
	Detail string `json:"detail"`
	// Redirect is set by the route gate to tell browsers where to go next.
	Redirect string `json:"redirect,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewRedirect is used by the gate when a request must be sent elsewhere.
func NewRedirect(msg, location string) *APIError {
	return &APIError{Detail: msg, Redirect: location}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
