package types

import "fmt"

// Error is the structured error surfaced by every payflow component.
// Code is stable and machine-matchable; Message is for humans.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches two payflow errors by code, so callers can use errors.Is
// against a bare &Error{Code: ...} sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Stable error codes.
const (
	ErrUnsupportedNetwork  = "UNSUPPORTED_NETWORK"
	ErrUnsupportedCurrency = "UNSUPPORTED_CURRENCY"
	ErrProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrSessionNotFound     = "SESSION_NOT_FOUND"
	ErrInvalidAmount       = "INVALID_AMOUNT"
	ErrInvalidParams       = "INVALID_PARAMS"
	ErrConfirmationTimeout = "CONFIRMATION_TIMEOUT"
	ErrPriceUnavailable    = "PRICE_UNAVAILABLE"
	ErrConflict            = "CONFLICT"
	ErrConfig              = "CONFIG_ERROR"
)

// NewError builds a payflow error with a formatted message.
func NewError(code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsCode reports whether err is a payflow error with the given code.
func IsCode(err error, code string) bool {
	for err != nil {
		if pe, ok := err.(*Error); ok {
			return pe.Code == code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
