package schema

import (
	"errors"
	"fmt"
)

// ErrorCode classifies the errors raised by the engine.
type ErrorCode int

const (
	// EvaluationError means a user function or formula failed.
	EvaluationError ErrorCode = iota + 1
	// ExecutionError means a table-level operation (e.g., a where predicate) failed.
	ExecutionError
	// DefinitionError means a schema element was configured inconsistently.
	DefinitionError
	// NotFoundError means a named element does not exist.
	NotFoundError
)

func (c ErrorCode) String() string {
	switch c {
	case EvaluationError:
		return "evaluation error"
	case ExecutionError:
		return "execution error"
	case DefinitionError:
		return "definition error"
	case NotFoundError:
		return "not found"
	default:
		return "unknown error"
	}
}

// Error is the structured error type of the engine.
type Error struct {
	Code    ErrorCode
	Message string
	// Context optionally names the element or the value that triggered the error.
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Code.String() + ": " + e.Message
	if e.Context != "" {
		msg += fmt.Sprintf(" (%s)", e.Context)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

func NewEvaluationError(message, context string, cause error) *Error {
	return &Error{Code: EvaluationError, Message: message, Context: context, Cause: cause}
}

func NewExecutionError(message, context string, cause error) *Error {
	return &Error{Code: ExecutionError, Message: message, Context: context, Cause: cause}
}

func NewDefinitionError(message, context string) *Error {
	return &Error{Code: DefinitionError, Message: message, Context: context}
}

func NewNotFoundError(kind, name string) *Error {
	return &Error{Code: NotFoundError, Message: kind + " not found", Context: name}
}

// HasCode checks whether any error in the chain is an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// asEvaluationError passes structured errors through and wraps anything else.
func asEvaluationError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewEvaluationError(err.Error(), "", err)
}
