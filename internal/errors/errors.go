// Package errors provides error handling utilities.
package errors

import (
	"errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeData indicates a data-quality or input validation error
	TypeData Type = "DATA_ERROR"

	// TypeStratum indicates a failure computing one stratum's pipeline
	TypeStratum Type = "STRATUM_ERROR"

	// TypeQuery indicates an invalid survival or revenue query
	TypeQuery Type = "QUERY_ERROR"

	// TypeNoData indicates a query whose answer is undefined for lack of data
	TypeNoData Type = "NO_DATA"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeStorage indicates a snapshot load or result persistence error
	TypeStorage Type = "STORAGE_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error or any error it wraps is of a specific type
func IsType(err error, t Type) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Type == t {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNoData reports whether the error means "no data", as opposed to a fault
func IsNoData(err error) bool {
	return IsType(err, TypeNoData)
}

// Data creates a data-quality error
func Data(message string) *Error {
	return New(TypeData, message)
}

// Stratum creates a stratum computation error
func Stratum(stratum string, cause error) *Error {
	return Wrapf(TypeStratum, cause, "stratum %q", stratum).WithContext("stratum", stratum)
}

// Query creates a query error
func Query(message string) *Error {
	return New(TypeQuery, message)
}

// NoData creates a no-data error for an undefined result
func NoData(what string) *Error {
	return Newf(TypeNoData, "no data: %s", what)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// Storage creates a storage error
func Storage(message string, cause error) *Error {
	return Wrap(TypeStorage, message, cause)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
