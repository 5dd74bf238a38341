package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Telegram-specific errors

var (
	// ErrConnectionFailed indicates the provider session could not be established.
	// Not retried automatically; check API credentials and the session string
	ErrConnectionFailed = errors.New("telegram connection failed: verify API credentials and session string")

	// ErrChannelFetch indicates a single channel could not be fetched
	ErrChannelFetch = errors.New("channel fetch failed")

	// ErrNoChannelsAvailable indicates every configured channel failed to fetch
	ErrNoChannelsAvailable = errors.New("no channels could be fetched")

	// ErrUpstreamFetch indicates a trend computation failed because the
	// upstream fetch failed and no valid cache entry exists
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrRateLimited indicates the provider reported flood control
	ErrRateLimited = errors.New("rate limited by provider")
)

// DomainError wraps an error with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New creates a new error from a message
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
