package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
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

// ---- Validation (VAL) ----

// Validation returns a generic 400 for malformed or missing input.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_002", "Amount must be greater than zero", http.StatusBadRequest)
}

// ---- Wallet Authentication (AUTH) ----

func ErrSignatureMismatch() *AppError {
	return New("AUTH_001", "Signature does not match wallet address", http.StatusUnauthorized)
}

// ErrInvalidSignature covers malformed signature bytes, wrong length, or
// an invalid recovery id. Recovery failures are authentication failures,
// never server faults.
func ErrInvalidSignature(err error) *AppError {
	return Wrap("AUTH_002", "Invalid signature", http.StatusUnauthorized, err)
}

func ErrAdminRequired() *AppError {
	return New("AUTH_003", "Admin privileges required", http.StatusForbidden)
}

func ErrInvalidSessionToken() *AppError {
	return New("AUTH_004", "Invalid or expired session token", http.StatusUnauthorized)
}

// ---- Resources (RES) ----

func ErrNotFound(entity string) *AppError {
	return New("RES_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Staking Business Rules (STK) ----

func ErrInsufficientBalance() *AppError {
	return New("STK_001", "Insufficient token balance", http.StatusBadRequest)
}

func ErrInsufficientStaked() *AppError {
	return New("STK_002", "Insufficient staked balance", http.StatusBadRequest)
}

func ErrLockPeriodActive() *AppError {
	return New("STK_003", "Minimum staking lock period has not elapsed", http.StatusBadRequest)
}

// ---- Newsletter (NLT) ----

func ErrAlreadySubscribed() *AppError {
	return New("NLT_001", "Email is already subscribed", http.StatusBadRequest)
}

func ErrNotSubscribed() *AppError {
	return New("NLT_002", "Email is not subscribed", http.StatusNotFound)
}

// ---- Chain (CHN) ----

// ErrChainUnavailable marks a failed or timed-out on-chain call. Read
// paths degrade silently on it; only transfer submission surfaces it.
func ErrChainUnavailable(err error) *AppError {
	return Wrap("CHN_001", "Blockchain service unavailable", http.StatusServiceUnavailable, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an unexpected fault as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
