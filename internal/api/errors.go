package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/viewengine/viewctl/internal/models"
)

// TransportErrorKind classifies failures below the HTTP status line.
type TransportErrorKind string

const (
	TransportConnectFailed     TransportErrorKind = "connect_failed"
	TransportTimeout           TransportErrorKind = "timeout"
	TransportMalformedResponse TransportErrorKind = "malformed_response"
)

// TransportError reports a network-level failure, independent of any
// HTTP status code.
type TransportError struct {
	Kind TransportErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceErrorKind classifies failures reported by the service or by
// the lifecycle driving it.
type ServiceErrorKind string

const (
	ServiceUnauthorized       ServiceErrorKind = "unauthorized"
	ServiceRateLimited        ServiceErrorKind = "rate_limited"
	ServiceUnexpected         ServiceErrorKind = "unexpected"
	ServicePollFailed         ServiceErrorKind = "poll_failed"
	ServiceTimeout            ServiceErrorKind = "timeout"
	ServiceContentUnavailable ServiceErrorKind = "content_unavailable"
)

// ServiceError is the uniform error shape every component reports.
// LastSnapshot is set only for ServiceTimeout, carrying the last known
// non-terminal snapshot for diagnostics.
type ServiceError struct {
	Kind         ServiceErrorKind
	StatusCode   int
	Message      string
	LastSnapshot *models.JobStatusSnapshot
	Err          error
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("service %s (status %d): %s", e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("service %s: %s", e.Kind, msg)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ClassifyStatus maps a non-2xx response to a typed ServiceError. It is
// a pure mapping and performs no I/O.
func ClassifyStatus(statusCode int, body []byte) *ServiceError {
	kind := ServiceUnexpected
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ServiceUnauthorized
	case http.StatusTooManyRequests:
		kind = ServiceRateLimited
	}
	return &ServiceError{
		Kind:       kind,
		StatusCode: statusCode,
		Message:    serviceMessage(body),
	}
}

// serviceMessage extracts a human-readable message from a service error
// payload, falling back to the raw body.
func serviceMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
