package types

import (
	"errors"
	"fmt"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. All packages MUST use these constants instead of
// hardcoded strings so callers can classify failures with errors.As.
const (
	// Per-message, recoverable: logged and the message is dropped.
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeTemplateNotFound ErrorCode = "template_not_found"
	ErrCodeTemplateRender   ErrorCode = "template_render_error"

	// Startup-only, fatal.
	ErrCodeTemplateParse     ErrorCode = "template_parse_error"
	ErrCodeBrokerUnreachable ErrorCode = "broker_unreachable"
	ErrCodeBrokerRejected    ErrorCode = "broker_rejected"

	// Channel-send boundary: logged at the sender, never surfaced upstream.
	ErrCodeUpstreamSMTP        ErrorCode = "upstream_smtp_unavailable"
	ErrCodeUpstreamSMSGateway  ErrorCode = "upstream_sms_gateway_unavailable"
	ErrCodeUpstreamRateLimited ErrorCode = "upstream_rate_limited"
	ErrCodeUpstreamRejected    ErrorCode = "upstream_rejected"

	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// AppError is the standard application error type used throughout the worker.
// All domain errors are expressed as AppError to enable consistent logging,
// classification, and error chain support.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error. This is the standard constructor for domain errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates an AppError describing a rejected queue payload.
// The message carries the human-readable reason logged before the drop.
func NewValidationError(reason string) *AppError {
	return NewAppError(ErrCodeValidationFailed, reason, nil)
}

// NewTemplateNotFound creates the AppError returned when a render is
// requested for a name absent from the template store.
func NewTemplateNotFound(name string) *AppError {
	return NewAppError(ErrCodeTemplateNotFound, fmt.Sprintf("template %q is not loaded", name), nil)
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsValidationError reports whether err is a payload validation rejection.
func IsValidationError(err error) bool {
	return HasCode(err, ErrCodeValidationFailed)
}

// IsTemplateNotFound reports whether err is a template lookup miss.
func IsTemplateNotFound(err error) bool {
	return HasCode(err, ErrCodeTemplateNotFound)
}
