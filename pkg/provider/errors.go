package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the base of the error taxonomy. It is returned directly for
// unclassified failures (5xx, malformed response shapes) and wrapped by the
// status-specific subtypes, so errors.As with **APIError matches all of them.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}

	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// AuthenticationError is returned for 401 and 403 responses.
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Unwrap() error {
	return &e.APIError
}

// RateLimitError is returned for 429 responses.
type RateLimitError struct {
	APIError
}

func (e *RateLimitError) Unwrap() error {
	return &e.APIError
}

// NotFoundError is returned for 404 responses.
type NotFoundError struct {
	APIError
}

func (e *NotFoundError) Unwrap() error {
	return &e.APIError
}

// InvalidRequestError is returned for the remaining 4xx responses.
type InvalidRequestError struct {
	APIError
}

func (e *InvalidRequestError) Unwrap() error {
	return &e.APIError
}

// NewAPIError maps a non-2xx response to the error taxonomy. No retries
// happen at this layer; the error propagates to the caller as-is.
func NewAPIError(statusCode int, body []byte) error {
	base := APIError{
		StatusCode: statusCode,
		Message:    errorMessage(statusCode, body),
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthenticationError{base}

	case statusCode == http.StatusNotFound:
		return &NotFoundError{base}

	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{base}

	case statusCode >= 400 && statusCode < 500:
		return &InvalidRequestError{base}
	}

	return &base
}

func errorMessage(statusCode int, body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	return http.StatusText(statusCode)
}
