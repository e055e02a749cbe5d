package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError so transports can pick a response policy.
type Kind string

const (
	KindInternal    Kind = "internal"
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindRateLimited Kind = "rate_limited"
	KindUpstream    Kind = "upstream"
	KindTimeout     Kind = "timeout"
	KindUnknownTool Kind = "unknown_tool"
	KindRedis       Kind = "redis"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// ValidationErrorMessage describes malformed input.
	ValidationErrorMessage = "invalid request payload"
	// NotFoundMessage describes a missing resource.
	NotFoundMessage = "resource not found"
	// UpstreamErrorMessage describes a failed call to the voice platform.
	UpstreamErrorMessage = "call platform request failed"
	// TimeoutMessage describes an upstream call that did not answer in time.
	TimeoutMessage = "call platform request timed out"
	// UnknownToolMessage describes a tool name with no registered handler.
	UnknownToolMessage = "unknown tool"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Kind    Kind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the operation later.
func (e *AppError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTimeout
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Kind:    KindInternal,
		Status:  status,
		Message: message,
	}
}

// Validation reports a malformed payload.
func Validation(err error) *AppError {
	return &AppError{Err: err, Kind: KindValidation, Status: http.StatusBadRequest, Message: ValidationErrorMessage}
}

// NotFound reports that nothing matched the lookup.
func NotFound(what string) *AppError {
	return &AppError{Err: errors.New(what), Kind: KindNotFound, Status: http.StatusNotFound, Message: NotFoundMessage}
}

// RateLimited reports an admission-control rejection. message is safe to return to clients.
func RateLimited(err error, message string) *AppError {
	return &AppError{Err: err, Kind: KindRateLimited, Status: http.StatusTooManyRequests, Message: message}
}

// Upstream wraps a failure reported by the call platform.
func Upstream(err error) *AppError {
	return &AppError{Err: err, Kind: KindUpstream, Status: http.StatusInternalServerError, Message: UpstreamErrorMessage}
}

// Timeout wraps a call platform request that exceeded its deadline.
func Timeout(err error) *AppError {
	return &AppError{Err: err, Kind: KindTimeout, Status: http.StatusGatewayTimeout, Message: TimeoutMessage}
}

// UnknownTool reports a tool invocation whose name has no handler.
func UnknownTool(name string) *AppError {
	return &AppError{Err: fmt.Errorf("tool %q", name), Kind: KindUnknownTool, Status: http.StatusOK, Message: UnknownToolMessage}
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// KindOf returns the Kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
