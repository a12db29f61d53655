// Package apperr defines the typed error taxonomy used across the gateway
// and worker, and the mapping from error kind to HTTP status.
package apperr

import "fmt"

// Code identifies the category of a failure, independent of the message
// attached to it.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeUnauthenticated    Code = "unauthenticated"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodePayloadTooLarge    Code = "payload_too_large"
	CodeUpstreamUnavailable Code = "upstream_unavailable"
	CodeWorkerOpenFailed   Code = "worker_open_failed"
	CodeAggregationError   Code = "aggregation_error"
	CodeCacheExpired       Code = "cache_expired"
	CodeUnknown            Code = "unknown"
)

// AppError is the error type returned by every usecase-level function. It
// carries enough structure for the HTTP edge to pick a status code and for
// the logger to attach structured fields, without either layer needing to
// know about the other.
type AppError struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext returns a copy of e with additional structured context merged
// in, for attaching request-specific detail (dataset path, facet name, ...)
// without losing the original Code/Cause.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{Code: e.Code, Message: e.Message, Cause: e.Cause, Context: ctx}
}

func new(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func Validation(message string, cause error) *AppError {
	return new(CodeValidation, message, cause)
}

func Unauthenticated(message string, cause error) *AppError {
	return new(CodeUnauthenticated, message, cause)
}

func Forbidden(message string, cause error) *AppError {
	return new(CodeForbidden, message, cause)
}

func NotFound(message string, cause error) *AppError {
	return new(CodeNotFound, message, cause)
}

func Conflict(message string, cause error) *AppError {
	return new(CodeConflict, message, cause)
}

func PayloadTooLarge(message string, cause error) *AppError {
	return new(CodePayloadTooLarge, message, cause)
}

func UpstreamUnavailable(message string, cause error) *AppError {
	return new(CodeUpstreamUnavailable, message, cause)
}

// WorkerOpenFailed represents a dataset engine that could not be opened.
// notFound distinguishes "path does not exist" (404) from a transient
// backend failure (503), matching the §7 "404-or-503" guidance.
func WorkerOpenFailed(message string, cause error, notFound bool) *AppError {
	e := new(CodeWorkerOpenFailed, message, cause)
	e.Context = map[string]interface{}{"not_found": notFound}
	return e
}

func AggregationError(message string, cause error) *AppError {
	return new(CodeAggregationError, message, cause)
}

func CacheExpired(message string, cause error) *AppError {
	return new(CodeCacheExpired, message, cause)
}

func Unknown(message string, cause error) *AppError {
	return new(CodeUnknown, message, cause)
}

// As unwraps err looking for an *AppError, the same way errors.As would.
func As(err error) (*AppError, bool) {
	for err != nil {
		if ae, ok := err.(*AppError); ok {
			return ae, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
