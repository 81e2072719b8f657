package services

import "fmt"

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

// UpstreamStatusError is returned when the chat service answers with a
// non-2xx status. Body holds the start of the response for logging.
type UpstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string { return fmt.Sprintf("API error: %d", e.StatusCode) }
