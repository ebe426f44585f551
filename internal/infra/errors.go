package infra

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// TransportError wraps a network-level failure reaching an upstream API.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError is a non-success status from an upstream API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// StaleDataError marks a sensor observation too old to act on.
type StaleDataError struct {
	ObservedAt time.Time
	MaxAge     time.Duration
}

func (e *StaleDataError) Error() string {
	return fmt.Sprintf("stale data: observed at %s, older than %s", e.ObservedAt.Format(time.RFC3339), e.MaxAge)
}

// ParseError wraps a malformed upstream response.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsAuthExpired reports whether err is the 401-equivalent signal that the
// access credential needs refreshing.
func IsAuthExpired(err error) bool {
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	return ue.Status == http.StatusUnauthorized || ue.Status == http.StatusForbidden
}
