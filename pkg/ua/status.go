package ua

import (
	"errors"
	"fmt"
)

// StatusCode is a 32-bit service or operation result. The two most
// significant bits encode severity: 00 good, 01 uncertain, 10 bad.
// Named codes are listed in status_codes.go.
type StatusCode uint32

const (
	severityMask      = 0xC0000000
	severityUncertain = 0x40000000
	severityBad       = 0x80000000
)

// IsGood returns true if the severity is good.
func (s StatusCode) IsGood() bool {
	return s&severityMask == 0
}

// IsUncertain returns true if the severity is uncertain.
func (s StatusCode) IsUncertain() bool {
	return s&severityMask == severityUncertain
}

// IsBad returns true if the severity is bad.
func (s StatusCode) IsBad() bool {
	return s&severityMask == severityBad
}

// String returns the symbolic name of the code, or its hex value if the
// code is not in the generated table.
func (s StatusCode) String() string {
	if name, ok := statusCodeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(s))
}

// Description returns the human-readable description of the code, or an
// empty string for unknown codes.
func (s StatusCode) Description() string {
	return statusCodeDescriptions[s]
}

// StatusError is the error returned when a peer rejects a service call or
// reports a non-good result for an individual operation.
type StatusError struct {
	// Service is the service or operation that failed, e.g. "CreateMonitoredItems".
	Service string

	// Code is the reported status code.
	Code StatusCode
}

// NewStatusError creates a StatusError for the given service and code.
func NewStatusError(service string, code StatusCode) *StatusError {
	return &StatusError{Service: service, Code: code}
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Service == "" {
		return e.Code.String()
	}
	return e.Service + ": " + e.Code.String()
}

// Is matches StatusErrors by code. A target with an empty Service matches
// regardless of where the failure occurred, so
// errors.Is(err, ua.NewStatusError("", ua.BadTimeout)) tests the code alone.
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	if !ok {
		return false
	}
	if t.Service != "" && t.Service != e.Service {
		return false
	}
	return t.Code == e.Code
}

// ErrorCode extracts the StatusCode from err if it is (or wraps) a
// StatusError. The second return value reports whether a code was found.
func ErrorCode(err error) (StatusCode, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
