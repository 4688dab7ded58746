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

// ---- Invoice Issuance (INV) ----

func ErrInvoiceCreationFailed(err error) *AppError {
	return Wrap("INV_001", "Payment rail rejected or failed to create invoice", http.StatusBadGateway, err)
}

// ---- Payment Confirmation (PAY) ----

func ErrPaymentNotConfirmed() *AppError {
	return New("PAY_001", "Payment is not confirmed by the payment rail", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("PAY_002", "Invalid amount", http.StatusBadRequest)
}

func ErrPaymentAlreadyUsed() *AppError {
	return New("PAY_004", "Payment is already bound to another purchase", http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Entitlement & Content Delivery (ENT / CNT) ----

func ErrNotEntitled() *AppError {
	return New("ENT_001", "No entitlement for this book", http.StatusForbidden)
}

func ErrContentCorrupted(err error) *AppError {
	return Wrap("CNT_001", "Content failed integrity verification", http.StatusInternalServerError, err)
}

func ErrStorageUnavailable(err error) *AppError {
	return Wrap("CNT_002", "Content storage is unavailable", http.StatusServiceUnavailable, err)
}

// ---- Blockchain (CHN) ----

func ErrChainUnavailable(err error) *AppError {
	return Wrap("CHN_001", "Blockchain RPC is unavailable", http.StatusServiceUnavailable, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_002-style validation error.
func Validation(message string) *AppError {
	return New("PAY_002", message, http.StatusBadRequest)
}
