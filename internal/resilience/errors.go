// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorType represents different types of errors for handling strategies
type ErrorType int

const (
	ErrorTypeUnknown          ErrorType = iota
	ErrorTypeInvalidConfig              // Unreadable or inconsistent configuration
	ErrorTypeInvalidInput               // Bad input data or flags
	ErrorTypeResourceNotFound           // Missing files
	ErrorTypePermission                 // Unreadable files
	ErrorTypeExtraction                 // A document could not be turned into text
	ErrorTypePatternCompile             // A catalog regex failed to compile
	ErrorTypeInternal                   // Recovered panics and invariant violations
	ErrorTypeCanceled                   // Context canceled or deadline exceeded
)

// String returns the lower-case name of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidConfig:
		return "invalid_config"
	case ErrorTypeInvalidInput:
		return "invalid_input"
	case ErrorTypeResourceNotFound:
		return "not_found"
	case ErrorTypePermission:
		return "permission"
	case ErrorTypeExtraction:
		return "extraction"
	case ErrorTypePatternCompile:
		return "pattern_compile"
	case ErrorTypeInternal:
		return "internal"
	case ErrorTypeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original error
	Type     ErrorType
	Message  string
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Original != nil {
		return e.Original.Error()
	}
	return e.Type.String()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// ClassifyError categorizes an error for appropriate handling
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return &ClassifiedError{Original: err, Type: ErrorTypeCanceled, Message: fmt.Sprintf("Canceled: %v", err)}
	case errors.Is(err, fs.ErrNotExist):
		return &ClassifiedError{Original: err, Type: ErrorTypeResourceNotFound, Message: fmt.Sprintf("Resource not found: %v", err)}
	case errors.Is(err, fs.ErrPermission):
		return &ClassifiedError{Original: err, Type: ErrorTypePermission, Message: fmt.Sprintf("Permission denied: %v", err)}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "yaml") || strings.Contains(errStr, "config"):
		return &ClassifiedError{Original: err, Type: ErrorTypeInvalidConfig, Message: fmt.Sprintf("Invalid configuration: %v", err)}
	case strings.Contains(errStr, "invalid") || strings.Contains(errStr, "malformed"):
		return &ClassifiedError{Original: err, Type: ErrorTypeInvalidInput, Message: fmt.Sprintf("Invalid input: %v", err)}
	}

	return &ClassifiedError{Original: err, Type: ErrorTypeUnknown, Message: fmt.Sprintf("Unknown error: %v", err)}
}

// TypeOf returns the classified type of err, ErrorTypeUnknown for nil
func TypeOf(err error) ErrorType {
	if c := ClassifyError(err); c != nil {
		return c.Type
	}
	return ErrorTypeUnknown
}

// withCause appends the cause to a message the way %w wrapping would
func withCause(message string, cause error) string {
	if cause == nil {
		return message
	}
	return message + ": " + cause.Error()
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{Original: cause, Type: ErrorTypeInvalidConfig, Message: withCause(message, cause)}
}

// NewInputError creates an invalid input error
func NewInputError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{Original: cause, Type: ErrorTypeInvalidInput, Message: withCause(message, cause)}
}

// NewExtractionError creates a document extraction error
func NewExtractionError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{Original: cause, Type: ErrorTypeExtraction, Message: withCause(message, cause)}
}

// NewCompileError creates a pattern compile error
func NewCompileError(pattern string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original: cause,
		Type:     ErrorTypePatternCompile,
		Message:  fmt.Sprintf("pattern %q failed to compile: %v", pattern, cause),
	}
}

// NewPanicError converts a recovered panic value into an internal error
func NewPanicError(where string, recovered interface{}) *ClassifiedError {
	cause, ok := recovered.(error)
	if !ok {
		cause = fmt.Errorf("%v", recovered)
	}
	return &ClassifiedError{
		Original: cause,
		Type:     ErrorTypeInternal,
		Message:  fmt.Sprintf("panic in %s: %v", where, recovered),
	}
}
