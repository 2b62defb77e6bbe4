// Package apperror provides a structured way to handle fastsdk errors with
// specific codes, severity levels, and additional details, plus conversions
// to and from HTTP status codes for the provider-adapted request layer.
package apperror

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific fastsdk error code (spec.md §7).
type ErrorCode string

const (
	// Spec loader / parser failures.
	CodeSpecNotFound    ErrorCode = "SPEC_NOT_FOUND"
	CodeSpecMalformed   ErrorCode = "SPEC_MALFORMED"
	CodeUnsupportedSpec ErrorCode = "UNSUPPORTED_SPEC"

	// Authentication setup failures.
	CodeApiKeyMissing ErrorCode = "API_KEY_MISSING"
	CodeApiKeyInvalid ErrorCode = "API_KEY_INVALID"

	// Request assembly failures.
	CodeMissingParameter      ErrorCode = "MISSING_PARAMETER"
	CodeInvalidParameterValue ErrorCode = "INVALID_PARAMETER_VALUE"

	// File handler failures.
	CodeFileTooLarge   ErrorCode = "FILE_TOO_LARGE"
	CodeUploadFailed   ErrorCode = "UPLOAD_FAILED"
	CodeFileNotReadable ErrorCode = "FILE_NOT_READABLE"

	// Transport failures.
	CodeRequestFailed ErrorCode = "REQUEST_FAILED"
	CodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeHttpError     ErrorCode = "HTTP_ERROR"

	// Job-level failures.
	CodeServerJobFailed    ErrorCode = "SERVER_JOB_FAILED"
	CodeServerJobCancelled ErrorCode = "SERVER_JOB_CANCELLED"
	CodePollTimeout        ErrorCode = "POLL_TIMEOUT"

	// Registry failure.
	CodeDuplicateId ErrorCode = "DUPLICATE_ID"

	// General.
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is fastsdk's structured error type: a code, a human-readable
// message, an optional offending field, structured details, an optional
// wrapped cause, and a severity.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps an ErrorCode to the HTTP status an embedding server
// would reasonably report it as. FromHTTPStatus classifies a provider's
// response with its own mapping and does not call this method.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeSpecNotFound, CodeNotFound:
		return 404
	case CodeSpecMalformed, CodeUnsupportedSpec, CodeMissingParameter,
		CodeInvalidParameterValue, CodeInvalidArgument, CodeDuplicateId:
		return 400
	case CodeApiKeyMissing, CodeApiKeyInvalid, CodeUnauthorized:
		return 401
	case CodeFileTooLarge:
		return 413
	case CodePollTimeout:
		return 504
	case CodeServerJobFailed, CodeServerJobCancelled, CodeUploadFailed,
		CodeFileNotReadable, CodeRequestFailed, CodeHttpError:
		return 502
	default:
		return 500
	}
}

// New creates a new fastsdk error with the given code and message, default
// severity SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityError}
}

// NewWithField creates a new fastsdk error attributed to a specific field.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{Code: code, Message: message, Field: field, Details: make(map[string]any), Severity: SeverityError}
}

// NewWarning creates a new fastsdk error with SeverityWarning.
func NewWarning(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityWarning}
}

// NewCritical creates a new fastsdk error with SeverityCritical.
func NewCritical(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityCritical}
}

// Wrap creates a new fastsdk error that wraps an existing error.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Details: make(map[string]any), Severity: SeverityError}
}

func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is checks whether err is a fastsdk error with a matching ErrorCode.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error, CodeInternal if err is not
// a fastsdk error.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// FromHTTPStatus classifies a provider's HTTP response into a fastsdk
// error per spec.md §7's status table: 401/403 -> Unauthorized (the
// provider rejected the request itself, distinct from CodeApiKeyInvalid's
// pre-flight ValidateApiKey rejection), 404 -> NotFound, other 4xx/5xx ->
// HttpError carrying a body snippet.
func FromHTTPStatus(code int, body string) *Error {
	snippet := body
	if len(snippet) > 500 {
		snippet = snippet[:500]
	}
	switch {
	case code == 401 || code == 403:
		return New(CodeUnauthorized, "request rejected by provider: invalid or missing API key").
			WithDetails("status", code).WithDetails("body", snippet)
	case code == 404:
		return New(CodeNotFound, "endpoint not found").WithDetails("status", code)
	case code >= 400:
		return New(CodeHttpError, fmt.Sprintf("http %d", code)).
			WithDetails("status", code).WithDetails("body", snippet)
	default:
		return nil
	}
}

// IsWarning reports whether err is a fastsdk error with SeverityWarning.
func IsWarning(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityWarning
	}
	return false
}

// IsCritical reports whether err is a fastsdk error with SeverityCritical.
func IsCritical(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityCritical
	}
	return false
}

// ValidationErrors aggregates errors and warnings from multiple validation
// checks, e.g. formatRequest validating every parameter before failing.
type ValidationErrors struct {
	Errors   []*Error
	Warnings []*Error
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]*Error, 0), Warnings: make([]*Error, 0)}
}

func (v *ValidationErrors) Add(err *Error) {
	if err.Severity == SeverityWarning {
		v.Warnings = append(v.Warnings, err)
	} else {
		v.Errors = append(v.Errors, err)
	}
}

func (v *ValidationErrors) AddError(code ErrorCode, message string) {
	v.Errors = append(v.Errors, New(code, message))
}

func (v *ValidationErrors) AddWarning(code ErrorCode, message string) {
	v.Warnings = append(v.Warnings, NewWarning(code, message))
}

func (v *ValidationErrors) AddErrorWithField(code ErrorCode, message, field string) {
	v.Errors = append(v.Errors, NewWithField(code, message, field))
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) HasWarnings() bool {
	return len(v.Warnings) > 0
}

func (v *ValidationErrors) IsValid() bool {
	return !v.HasErrors()
}

func (v *ValidationErrors) Merge(other *ValidationErrors) {
	if other == nil {
		return
	}
	v.Errors = append(v.Errors, other.Errors...)
	v.Warnings = append(v.Warnings, other.Warnings...)
}

func (v *ValidationErrors) ErrorMessages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Error()
	}
	return messages
}

func (v *ValidationErrors) WarningMessages() []string {
	messages := make([]string, len(v.Warnings))
	for i, warn := range v.Warnings {
		messages[i] = warn.Message
	}
	return messages
}
