// Package output renders command results as JSON envelopes, styled tables
// or Markdown, and maps failures to structured errors with exit codes.
package output

import (
	"errors"
	"fmt"
	"net/http"
)

// Exit codes returned by the planner binary.
const (
	ExitOK         = 0
	ExitUsage      = 1 // bad arguments or flags
	ExitNotFound   = 2
	ExitAuth       = 3 // not logged in or token expired
	ExitForbidden  = 4
	ExitRateLimit  = 5
	ExitNetwork    = 6 // connection, DNS or timeout
	ExitAPI        = 7 // backend returned an error
	ExitAmbiguous  = 8 // a name matched several records
	ExitValidation = 9 // input rejected before any request was sent
)

// Error codes carried in the JSON error envelope.
const (
	CodeUsage      = "usage"
	CodeNotFound   = "not_found"
	CodeAuth       = "auth_required"
	CodeForbidden  = "forbidden"
	CodeRateLimit  = "rate_limit"
	CodeNetwork    = "network"
	CodeAPI        = "api_error"
	CodeAmbiguous  = "ambiguous"
	CodeValidation = "validation"
)

var exitCodes = map[string]int{
	CodeUsage:      ExitUsage,
	CodeNotFound:   ExitNotFound,
	CodeAuth:       ExitAuth,
	CodeForbidden:  ExitForbidden,
	CodeRateLimit:  ExitRateLimit,
	CodeNetwork:    ExitNetwork,
	CodeAPI:        ExitAPI,
	CodeAmbiguous:  ExitAmbiguous,
	CodeValidation: ExitValidation,
}

// ExitCodeFor maps an error code to a process exit code. Unknown codes
// are treated as API errors.
func ExitCodeFor(code string) int {
	if c, ok := exitCodes[code]; ok {
		return c
	}
	return ExitAPI
}

// Error is a structured error with code, message and optional hint.
type Error struct {
	Code       string
	Message    string
	Hint       string
	HTTPStatus int
	Retryable  bool
	RetryAfter int // seconds, from a 429's Retry-After
	Cause      error
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Hint)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit code for this error.
func (e *Error) ExitCode() int {
	return ExitCodeFor(e.Code)
}

func ErrUsage(msg string) *Error {
	return &Error{Code: CodeUsage, Message: msg}
}

func ErrUsageHint(msg, hint string) *Error {
	return &Error{Code: CodeUsage, Message: msg, Hint: hint}
}

// ErrValidation reports input that failed a form rule.
func ErrValidation(field string, cause error) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf("invalid %s", field),
		Hint:    cause.Error(),
		Cause:   cause,
	}
}

func ErrNotFound(resource, identifier string) *Error {
	return &Error{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found: %s", resource, identifier),
		HTTPStatus: http.StatusNotFound,
	}
}

// ErrNotFoundHint is ErrNotFound with a suggestion.
func ErrNotFoundHint(resource, identifier, hint string) *Error {
	e := ErrNotFound(resource, identifier)
	e.Hint = hint
	return e
}

func ErrAuth(msg string) *Error {
	return &Error{
		Code:    CodeAuth,
		Message: msg,
		Hint:    "Run: planner auth login --token <jwt>",
	}
}

func ErrForbidden(msg string) *Error {
	return &Error{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

func ErrRateLimit(retryAfter int) *Error {
	hint := "Try again later"
	if retryAfter > 0 {
		hint = fmt.Sprintf("Try again in %d seconds", retryAfter)
	}
	return &Error{
		Code:       CodeRateLimit,
		Message:    "Rate limited",
		Hint:       hint,
		HTTPStatus: http.StatusTooManyRequests,
		Retryable:  true,
		RetryAfter: retryAfter,
	}
}

func ErrNetwork(cause error) *Error {
	return &Error{
		Code:      CodeNetwork,
		Message:   "Network error",
		Hint:      cause.Error(),
		Retryable: true,
		Cause:     cause,
	}
}

func ErrAPI(status int, msg string) *Error {
	return &Error{
		Code:       CodeAPI,
		Message:    msg,
		HTTPStatus: status,
		Retryable:  status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout,
	}
}

// ErrAmbiguous reports a name that matched more than one record.
func ErrAmbiguous(resource string, matches []string) *Error {
	hint := "Use the id instead"
	if len(matches) > 0 && len(matches) <= 5 {
		hint = fmt.Sprintf("Did you mean: %v", matches)
	}
	return &Error{
		Code:    CodeAmbiguous,
		Message: fmt.Sprintf("Ambiguous %s", resource),
		Hint:    hint,
	}
}

// AsError converts err to an *Error, wrapping unknown errors as API errors.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Code:    CodeAPI,
		Message: err.Error(),
		Cause:   err,
	}
}
