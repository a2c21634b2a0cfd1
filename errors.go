package drive

import (
	"errors"
	"fmt"
)

const (
	// CodeMethodNotSupported is the machine-readable code carried by
	// MethodNotSupportedError.
	CodeMethodNotSupported = "E_METHOD_NOT_SUPPORTED"

	// StatusMethodNotSupported is the HTTP-style status carried by
	// MethodNotSupportedError.
	StatusMethodNotSupported = 500
)

// ErrMethodNotSupported matches any *MethodNotSupportedError with errors.Is.
var ErrMethodNotSupported = errors.New("method not supported")

// MethodNotSupportedError is returned by drivers for methods the backend
// can't perform.
type MethodNotSupportedError struct {
	Method string // driver method, e.g. "GetURL"
	Driver string // driver name, e.g. "local"
}

// NotSupported returns a *MethodNotSupportedError for method and driver.
func NotSupported(method, driver string) error {
	return &MethodNotSupportedError{Method: method, Driver: driver}
}

func (e *MethodNotSupportedError) Error() string {
	return fmt.Sprintf("method %q is not supported by the %q driver", e.Method, e.Driver)
}

// Code returns CodeMethodNotSupported.
func (e *MethodNotSupportedError) Code() string { return CodeMethodNotSupported }

// Status returns StatusMethodNotSupported.
func (e *MethodNotSupportedError) Status() int { return StatusMethodNotSupported }

func (e *MethodNotSupportedError) Is(target error) bool {
	return target == ErrMethodNotSupported
}
