package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes mirror the upstream service taxonomy.
const (
	CodeUnknown          = "UNKNOWN"
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeNotFound         = "NOT_FOUND"
	CodeRateLimit        = "RATE_LIMIT"
	CodeUnauthorized     = "UNAUTHORIZED"
)

// Error is the normalized failure shape returned by every Gateway operation.
// It carries an HTTP-like status so callers can branch on the class of
// failure without parsing messages.
type Error struct {
	StatusCode int                    `json:"statusCode,omitempty"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates an Error with an explicit code.
func NewError(code, message string, context map[string]interface{}) *Error {
	return &Error{Code: code, Message: message, Context: context}
}

// ErrorFromStatus maps an HTTP response status to the shared taxonomy.
func ErrorFromStatus(status int, message string) *Error {
	code := CodeUnknown
	switch {
	case status == http.StatusNotFound:
		code = CodeNotFound
	case status == http.StatusTooManyRequests:
		code = CodeRateLimit
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = CodeUnauthorized
	case status >= 400 && status < 500:
		code = CodeInvalidParameter
	}
	return &Error{StatusCode: status, Code: code, Message: message}
}

// IsNotFound reports whether err is an upstream NOT_FOUND error.
func IsNotFound(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Code == CodeNotFound
}
