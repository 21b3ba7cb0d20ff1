package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// User facing messages for authorization failures.
const (
	MsgAccessDenied = "Access denied: you do not have permission to view this page or resource."
	MsgLoginAgain   = "Authentication required. Please log in again."
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error is the raw response body, or "<code>: <status>" when it was empty.
func (e *APIError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Status)
}

// Message is the "message" field of a JSON error body, else Error().
func (e *APIError) Message() string {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if json.Unmarshal([]byte(e.Body), &body) == nil && len(body.Message) > 0 {
		var one string
		if json.Unmarshal(body.Message, &one) == nil && one != "" {
			return one
		}
		var many []string
		if json.Unmarshal(body.Message, &many) == nil && len(many) > 0 {
			return strings.Join(many, "; ")
		}
	}
	return e.Error()
}

// StatusCode extracts the HTTP status of err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports a 401 answer.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == 401
}

// FriendlyMessage turns err into text for the user. Authorization failures are
// recognised from the error text; everything else yields fallback, or the
// backend's message when fallback is empty.
func FriendlyMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "403") || strings.Contains(lower, "forbidden"):
		return MsgAccessDenied
	case strings.Contains(msg, "401") || strings.Contains(lower, "unauthorized"):
		return MsgLoginAgain
	}
	if fallback != "" {
		return fallback
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return msg
}
