// Package errors provides standardized error handling for the relay endpoints.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrCodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeSignatureInvalid ErrorCode = "SIGNATURE_INVALID"
	ErrCodeUnknownSession   ErrorCode = "UNKNOWN_SESSION"
	ErrCodeEndpointDisabled ErrorCode = "ENDPOINT_DISABLED"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"

	ErrCodeWebhookFailed  ErrorCode = "WEBHOOK_FAILED"
	ErrCodeWebhookTimeout ErrorCode = "WEBHOOK_TIMEOUT"
	ErrCodeForwardFailed  ErrorCode = "FORWARD_FAILED"

	ErrCodeLLMFailed  ErrorCode = "LLM_FAILED"
	ErrCodeLLMTimeout ErrorCode = "LLM_TIMEOUT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns the error with an extra metadata entry.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// HTTPStatus is the response status the error maps to.
func (e *StandardError) HTTPStatus() int {
	return HTTPStatusFor(e.Code)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable 400-class error. message is
// returned to the caller verbatim.
func NewValidationError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidJSONError wraps a body decode failure.
func NewInvalidJSONError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidJSON,
		Message:   "Invalid JSON body",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSignatureInvalidError is returned when a callback HMAC does not match.
func NewSignatureInvalidError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSignatureInvalid,
		Message:   "Invalid signature",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownSessionError is returned for callbacks naming a session this
// service never issued or that has expired.
func NewUnknownSessionError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownSession,
		Message:   "Unknown session",
		Details:   sessionID,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEndpointDisabledError is returned for endpoints switched off in config.
func NewEndpointDisabledError(endpoint string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEndpointDisabled,
		Message:   "Endpoint disabled",
		Details:   endpoint,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError is returned when a client exceeds its request budget.
func NewRateLimitedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many requests",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookError classifies an outbound webhook failure, separating
// deadline expiry from every other failure.
func NewWebhookError(url string, err error) *StandardError {
	code := ErrCodeWebhookFailed
	msg := "Agent webhook request failed"
	if stderrors.Is(err, context.DeadlineExceeded) {
		code = ErrCodeWebhookTimeout
		msg = "Agent webhook request timed out"
	}
	return &StandardError{
		Code:      code,
		Message:   msg,
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"url": url},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewForwardError wraps a failed lead-qualification forward.
func NewForwardError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeForwardFailed,
		Message:   "Lead qualification forward failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"url": url},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewLLMError classifies a report generation failure.
func NewLLMError(err error) *StandardError {
	code := ErrCodeLLMFailed
	if stderrors.Is(err, context.DeadlineExceeded) {
		code = ErrCodeLLMTimeout
	}
	return &StandardError{
		Code:      code,
		Message:   "Failed to generate analysis",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewPayloadTooLargeError reports a body cut off by the request size limit.
func NewPayloadTooLargeError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodePayloadTooLarge,
		Message:   "Request body too large",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewReadBodyError classifies a request body read failure. Hitting the
// size limit is a client error; anything else falls back to a 500.
func NewReadBodyError(message string, err error) *StandardError {
	if stderrors.As(err, new(*http.MaxBytesError)) {
		return NewPayloadTooLargeError(err)
	}
	return NewInternalError(message, err)
}

// NewInternalError creates a generic 500 error with a caller-facing message.
func NewInternalError(message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Classification
// ==========================

// HTTPStatusFor maps an error code to the HTTP status it is answered with.
func HTTPStatusFor(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidJSON:
		return http.StatusBadRequest
	case ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeSignatureInvalid:
		return http.StatusUnauthorized
	case ErrCodeUnknownSession:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeEndpointDisabled:
		return http.StatusServiceUnavailable
	case ErrCodeWebhookFailed, ErrCodeForwardFailed:
		return http.StatusBadGateway
	case ErrCodeWebhookTimeout, ErrCodeLLMTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidJSON, ErrCodePayloadTooLarge:
		return "validation"
	case ErrCodeSignatureInvalid, ErrCodeUnknownSession, ErrCodeRateLimited:
		return "access"
	case ErrCodeWebhookFailed, ErrCodeWebhookTimeout, ErrCodeForwardFailed:
		return "upstream"
	case ErrCodeLLMFailed, ErrCodeLLMTimeout:
		return "llm"
	case ErrCodeEndpointDisabled:
		return "configuration"
	default:
		return "internal"
	}
}

// IsRetryable reports whether a client could reasonably retry.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError("Unexpected error", err)
}
