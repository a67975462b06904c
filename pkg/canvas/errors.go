package canvas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the fault classes the Canvas API documents.
var (
	ErrNotFound     = errors.New("canvas: resource not found")
	ErrUnauthorized = errors.New("canvas: unauthorized")
	ErrForbidden    = errors.New("canvas: forbidden")
	ErrNetwork      = errors.New("canvas: upstream unavailable")
)

// APIError is a non-2xx response from the Canvas API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("canvas: %s returned %d: %s", e.Endpoint, e.StatusCode, e.Detail)
}

// Unwrap maps the response status onto the documented sentinel classes.
// Statuses outside those classes unwrap to nil and are treated as
// non-recoverable by callers.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case e.StatusCode >= http.StatusInternalServerError:
		return ErrNetwork
	}
	return nil
}

// IsRecoverable reports whether err belongs to one of the fault classes a
// degraded analysis may absorb: missing resources, auth rejections and
// transport failures. Anything else signals a programming or contract
// error and must propagate.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) || errors.Is(err, ErrNetwork) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
