package rest

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the uniform error surfaced for any non-2xx response. Message
// carries the server-provided text when the payload had one, so stores can
// show it verbatim.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// IsAuthError reports whether err is a 401/403 response. Read paths treat
// these as absence (guest has no cart), not as failures to surface.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// ServerMessage extracts the user-facing message from an error, or returns
// fallback when the failure carried none (network errors, empty payloads).
func ServerMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
