// Package googleapi holds the structured error shape shared by the Gmail
// and Sheets REST clients.
package googleapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error is a non-2xx response from a Google REST API, carrying the
// structured detail payload when the service returned one.
type Error struct {
	Service    string
	StatusCode int
	Status     string
	Message    string
	Body       string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d (%s): %s", e.Service, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, e.Body)
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// FromResponse builds an Error from a failed call, decoding the standard
// {"error": {...}} envelope when present.
func FromResponse(service string, statusCode int, body []byte) *Error {
	e := &Error{
		Service:    service,
		StatusCode: statusCode,
		Body:       truncated(body),
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		e.Message = env.Error.Message
		e.Status = env.Error.Status
	}
	return e
}

// As extracts a *Error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func truncated(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "…"
	}
	return string(body)
}
