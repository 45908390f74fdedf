package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("LED_001", "account not found"),
			expected: "[LED_001] account not found",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "engine failure", fmt.Errorf("io: file locked")),
			expected: "[SYS_001] engine failure: io: file locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(CodeEngine, "wrapped", inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New(CodeNotFound, "test")
	assert.Nil(t, appErr.Unwrap())
}

func TestCode(t *testing.T) {
	assert.Equal(t, CodeCipherAuth, Code(ErrCipherAuth(nil)))
	assert.Equal(t, "", Code(fmt.Errorf("plain error")))
	assert.Equal(t, "", Code(nil))

	// Wrapped chains still resolve to the outermost AppError code.
	wrapped := fmt.Errorf("context: %w", ErrNotFound("transaction"))
	assert.Equal(t, CodeNotFound, Code(wrapped))
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(ErrAlreadyExists("account"), CodeAlreadyExists))
	assert.False(t, IsCode(ErrAlreadyExists("account"), CodeNotFound))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code string
	}{
		{"InvalidEncoding", ErrInvalidEncoding("hex", fmt.Errorf("odd length")), CodeInvalidEncoding},
		{"BadLength", ErrBadLength("key", 32, 16), CodeBadLength},
		{"ShortCiphertext", ErrShortCiphertext(4), CodeBadLength},
		{"CipherAuth", ErrCipherAuth(fmt.Errorf("tag mismatch")), CodeCipherAuth},
		{"InvalidAddress", ErrInvalidAddress(), CodeInvalidAddress},
		{"NotFound", ErrNotFound("account"), CodeNotFound},
		{"AlreadyExists", ErrAlreadyExists("record"), CodeAlreadyExists},
		{"BalanceShape", ErrBalanceShape(), CodeBalanceShape},
		{"ParseBalance", ErrParseBalance(fmt.Errorf("bad float")), CodeParseBalance},
		{"Engine", ErrEngine(fmt.Errorf("corrupt log")), CodeEngine},
		{"Internal", InternalError(fmt.Errorf("boom")), CodeEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
