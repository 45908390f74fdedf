package apperror

import (
	"errors"
	"fmt"
)

// AppError is a structured error carrying a stable machine-readable code.
type AppError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Err     error  `json:"-"` // Wrapped internal error (not exposed to clients)
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
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Code extracts the AppError code from err, or "" if err is not an AppError.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given AppError code.
func IsCode(err error, code string) bool {
	return Code(err) == code
}

// Error codes, grouped by concern.
const (
	CodeInvalidEncoding = "ENC_001" // hex / base58 / record codec failures
	CodeBadLength       = "ENC_002" // key or payload of the wrong size
	CodeCipherAuth      = "ENC_003" // AEAD authentication failure
	CodeInvalidAddress  = "ENC_004" // base58 checksum mismatch

	CodeNotFound      = "LED_001"
	CodeAlreadyExists = "LED_002"
	CodeBalanceShape  = "LED_003" // stored balance is not ciphertext
	CodeParseBalance  = "LED_004" // decrypted balance is not a decimal

	CodeEngine = "SYS_001" // underlying storage engine failure
)

// ---- Encoding & Cryptography (ENC) ----

func ErrInvalidEncoding(what string, err error) *AppError {
	return Wrap(CodeInvalidEncoding, fmt.Sprintf("invalid %s encoding", what), err)
}

func ErrBadLength(what string, want, got int) *AppError {
	return New(CodeBadLength, fmt.Sprintf("%s must be %d bytes, got %d", what, want, got))
}

func ErrShortCiphertext(got int) *AppError {
	return New(CodeBadLength, fmt.Sprintf("ciphertext too short: %d bytes", got))
}

func ErrTooShort(what string, min, got int) *AppError {
	return New(CodeBadLength, fmt.Sprintf("%s too short: need at least %d bytes, got %d", what, min, got))
}

func ErrCipherAuth(err error) *AppError {
	return Wrap(CodeCipherAuth, "decryption failed", err)
}

func ErrInvalidAddress() *AppError {
	return New(CodeInvalidAddress, "not a valid wallet address")
}

// ---- Ledger (LED) ----

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity))
}

func ErrAlreadyExists(entity string) *AppError {
	return New(CodeAlreadyExists, fmt.Sprintf("%s exists, mutating a record is not allowed", entity))
}

func ErrBalanceShape() *AppError {
	return New(CodeBalanceShape, "stored balance is not in binary form")
}

func ErrParseBalance(err error) *AppError {
	return Wrap(CodeParseBalance, "decrypted balance is not a decimal number", err)
}

// ---- System & Infrastructure (SYS) ----

func ErrEngine(err error) *AppError {
	return Wrap(CodeEngine, "storage engine failure", err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeEngine, "internal error", err)
}
