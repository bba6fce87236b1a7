package harmony

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	CodeMalformedRoute ErrorCode = "malformed_route"
	CodeAmbiguousBody  ErrorCode = "ambiguous_body"
	CodeNotImplemented ErrorCode = "not_implemented"
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeInternal       ErrorCode = "internal"
)

// ErrNotImplemented is wrapped by errors for features that are recognized
// but not supported, such as multipart bodies.
var ErrNotImplemented = errors.New("not implemented")

// Error is a fatal generation error, usually attributed to one operation.
type Error struct {
	Code      ErrorCode
	Service   string
	Operation string
	Message   string
	Details   map[string]any

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	if e.Operation != "" {
		b.WriteString(e.Service)
		b.WriteByte('.')
		b.WriteString(e.Operation)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// opError attributes an error to an operation.
func opError(code ErrorCode, service, operation string, cause error, format string, args ...any) *Error {
	return &Error{
		Code:      code,
		Service:   service,
		Operation: operation,
		Message:   fmt.Sprintf(format, args...),
		Err:       cause,
	}
}

// WithDetail returns a copy of e with key set in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	out := *e
	out.Details = maps.Clone(e.Details)
	if out.Details == nil {
		out.Details = make(map[string]any, 1)
	}
	out.Details[key] = value
	return &out
}

// AsError maps any error to an *Error. Validation failures from
// go-playground/validator become CodeInvalidConfig with one detail per field.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	if hErr, ok := err.(*Error); ok {
		return hErr
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		return configError(valErrs, err)
	}

	// errors.Join: the first error decides the code.
	if joined, ok := err.(interface{ Unwrap() []error }); ok && len(joined.Unwrap()) > 0 {
		errs := joined.Unwrap()
		first := AsError(errs[0])
		var b strings.Builder
		for i, e := range errs {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(e.Error())
		}
		return &Error{Code: first.Code, Message: b.String(), Details: first.Details, Err: err}
	}

	var hErr *Error
	if errors.As(err, &hErr) {
		return hErr
	}

	if errors.Is(err, ErrNotImplemented) {
		return &Error{Code: CodeNotImplemented, Message: err.Error(), Err: err}
	}
	return &Error{Code: CodeInternal, Message: err.Error(), Err: err}
}

// configError reports each failed field under its namespace.
func configError(valErrs validator.ValidationErrors, err error) *Error {
	out := &Error{
		Code:    CodeInvalidConfig,
		Details: make(map[string]any, len(valErrs)),
		Err:     err,
	}
	parts := make([]string, len(valErrs))
	for i, fe := range valErrs {
		msg := describeFieldError(fe)
		out.Details[fe.Namespace()] = msg
		parts[i] = fe.Namespace() + ": " + msg
	}
	out.Message = strings.Join(parts, "; ")
	return out
}

func describeFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return "must have at least " + param + " elements"
	case "oneof":
		return "must be one of: " + param
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", param)
	}
	if param == "" {
		return "fails " + fe.Tag()
	}
	return "fails " + fe.Tag() + "=" + param
}
