// Package apperr defines the error taxonomy shared by every component:
// APIError for remote-call failures, ValidationError for local precondition
// failures that never reach the network, and helpers to classify them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated is returned when a component is asked to issue a
// request while the session is not authenticated.
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is any failure of a remote call. Status is the HTTP status code,
// or 0 when no response was received at all (network failure).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}

	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// NewNetworkError wraps a transport-level failure where no response arrived.
func NewNetworkError() *APIError {
	return &APIError{Status: 0, Message: "network failure"}
}

// ValidationError is a local precondition failure (blank URL, non-positive
// target price). It is raised before any request is made and is
// distinguishable from remote failures via errors.As.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsAuth reports whether err is a 401 remote failure, which forces a
// session reset regardless of which component detected it.
func IsAuth(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 remote failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsNetwork reports whether err is a transport failure with no response.
func IsNetwork(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 0
}

// IsValidation reports whether err is a local precondition failure.
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
