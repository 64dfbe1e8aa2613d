package backend

import (
	"errors"
	"fmt"
)

// ErrNetwork wraps transport-level failures (connection refused, DNS,
// timeouts). Callers treat these the same as any other fetch failure: no
// automatic retry, a transient notification at the screen boundary.
var ErrNetwork = errors.New("backend unreachable")

// APIError is a non-2xx response from the backend, carrying the message the
// backend chose to surface.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

func apiErrorWithStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsAuthentication reports bad credentials or a rejected bearer token.
func IsAuthentication(err error) bool {
	return apiErrorWithStatus(err, 401)
}

// IsAuthorization reports a role mismatch rejected server-side.
func IsAuthorization(err error) bool {
	return apiErrorWithStatus(err, 403)
}

// IsNotFound reports a missing resource.
func IsNotFound(err error) bool {
	return apiErrorWithStatus(err, 404)
}

// IsValidation reports a rejected mutation (invalid fields, conflicts such
// as deleting a referenced category or registering a duplicate email).
func IsValidation(err error) bool {
	return apiErrorWithStatus(err, 400) || apiErrorWithStatus(err, 409)
}

// IsNetwork reports a transport failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// UserMessage extracts a message fit for a flash notification. Network and
// unexpected errors fall back to the provided generic text.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
