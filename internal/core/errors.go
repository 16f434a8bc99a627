package core

import "errors"

// Error codes reported to clients.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeInvalidMessage     = "invalid_message"
	ErrCodeUnsupportedVersion = "unsupported_version"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeRateLimited        = "rate_limited"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrQueueFull  = errors.New("outbound queue full")
	ErrConnClosed = errors.New("connection closed")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// NewError builds a coded error for delivery to a client.
func NewError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
