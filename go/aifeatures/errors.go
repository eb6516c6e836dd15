package aifeatures

import (
	"errors"
	"fmt"
)

// ErrorBody is the JSON error payload returned by the API.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	Status  int
	Message string
	// Details is nil when the response body was not JSON.
	Details *ErrorBody
}

func (e *APIError) Error() string {
	return fmt.Sprintf("aifeatures: %s (status %d)", e.Message, e.Status)
}

// ConfigError is returned when the client is configured with an unusable credential.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("aifeatures: %s", e.Msg)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
