package endpoint

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below unwrap to them, so callers can test
// with errors.Is without caring about the details.
var (
	ErrResourceNotFound         = errors.New("resource not found")
	ErrInvalidConfiguration     = errors.New("invalid configuration")
	ErrConflictingConfiguration = errors.New("conflicting configuration")
	ErrUnknownOperation         = errors.New("unknown operation")
	ErrAlreadyBound             = errors.New("endpoint already bound")
)

// ResourceResolutionError reports an explicitly configured descriptor that no
// resolution strategy could find.
type ResourceResolutionError struct {
	Location string
}

func (e *ResourceResolutionError) Error() string {
	return fmt.Sprintf("cannot load descriptor %q: not found in web context, loader or as an absolute locator", e.Location)
}

func (e *ResourceResolutionError) Unwrap() error {
	return ErrResourceNotFound
}

// InvalidConfigurationError reports a configuration value of the wrong shape
// or one that cannot be used.
type InvalidConfigurationError struct {
	Field  string
	Reason string
	Value  any
	Err    error
}

func (e *InvalidConfigurationError) Error() string {
	msg := e.Field + ": " + e.Reason
	if e.Value != nil {
		msg += fmt.Sprintf(" (%T %v)", e.Value, e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidConfiguration, e.Err}
	}
	return []error{ErrInvalidConfiguration}
}

// ConflictingConfigurationError reports two mutually exclusive configuration
// styles that were both supplied. It is also an invalid configuration.
type ConflictingConfigurationError struct {
	First  string
	Second string
}

func (e *ConflictingConfigurationError) Error() string {
	return fmt.Sprintf("both %s and %s are configured", e.First, e.Second)
}

func (e *ConflictingConfigurationError) Unwrap() []error {
	return []error{ErrConflictingConfiguration, ErrInvalidConfiguration}
}

// Fault is an error an operation or handler returns to have a specific SOAP
// fault sent back to the caller.
type Fault struct {
	Code    string
	Message string
	Detail  string
}

// Fault codes in SOAP 1.1 form. The dispatch layer maps them for SOAP 1.2.
const (
	FaultClient = "soap:Client"
	FaultServer = "soap:Server"
)

func (f *Fault) Error() string {
	if f.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", f.Code, f.Message, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}
