package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses. It is used
// for programmer and infrastructure errors only; business-rule outcomes
// travel as result codes inside transactions, never as errors.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger (LED) ----

func ErrUnknownCurrency(id string) *AppError {
	return New("LED_001", fmt.Sprintf("Unknown currency %q", id), http.StatusNotFound)
}

func ErrAccountNotFound() *AppError {
	return New("LED_002", "Account not found", http.StatusNotFound)
}

func ErrInvalidOwner(owner string) *AppError {
	return New("LED_003", fmt.Sprintf("Invalid account owner %q", owner), http.StatusBadRequest)
}

func ErrInvalidAmount(raw string) *AppError {
	return New("LED_004", fmt.Sprintf("Cannot parse amount %q", raw), http.StatusBadRequest)
}

func ErrRegistryFrozen() *AppError {
	return New("LED_005", "Currency registry is not externally extensible", http.StatusConflict)
}

func ErrRateLimited() *AppError {
	return New("LED_006", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrStorage(err error) *AppError {
	return Wrap("SYS_001", "Account storage failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_002 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_002", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("LED_004", message, http.StatusBadRequest)
}
