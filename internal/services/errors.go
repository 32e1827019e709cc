package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/undertone/internal/shared"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("undertone API error (status %d) %s %s: %s", e.Status, e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("undertone API error: %s %s: status %d", e.Method, e.Path, e.Status)
}

// Is lets [errors.Is] match status classes against the shared sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrNotAuthenticated:
		return e.Status == http.StatusUnauthorized
	case shared.ErrServiceUnavailable:
		return e.Status == http.StatusBadGateway ||
			e.Status == http.StatusServiceUnavailable ||
			e.Status == http.StatusGatewayTimeout
	case shared.ErrSongNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// AsAPIError unwraps err into an [APIError].
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// BackendMessage returns the backend-supplied message carried by err, if any.
func BackendMessage(err error) string {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Message
	}
	return ""
}
