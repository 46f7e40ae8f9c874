package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Target errors
	ErrEmptyTarget   = errors.New("target cannot be empty")
	ErrInvalidTarget = errors.New("invalid target URL")

	// Scan errors
	ErrRedirectCapExceeded = errors.New("redirect cap exceeded")
	ErrNoCertificate       = errors.New("server presented no certificate")
	ErrUnknownTier         = errors.New("unknown tier")

	// Usage errors
	ErrUsageLimitExceeded = errors.New("daily scan limit exceeded for free tier")
)

// NetworkKind classifies low-level connection failures seen by the preflight.
type NetworkKind string

const (
	NetworkKindDNS     NetworkKind = "dns"
	NetworkKindRefused NetworkKind = "refused"
	NetworkKindReset   NetworkKind = "reset"
	NetworkKindTimeout NetworkKind = "timeout"
)

// NetworkError is a scan-fatal connectivity failure. It is raised only by the
// connectivity preflight; probe-local network failures are converted into
// findings instead.
type NetworkError struct {
	Kind NetworkKind
	Host string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error (%s) for %s: %v", e.Kind, e.Host, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
