package service

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/kimolalekan/vale/pkg/apperror"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	svc := NewChaCha20CipherService()
	payload := []byte("42.5")

	blob, keyHex, err := svc.Encrypt(payload, "")
	require.NoError(t, err)
	assert.Len(t, keyHex, chacha20poly1305.KeySize*2)

	plaintext, err := svc.Decrypt(blob, keyHex)
	require.NoError(t, err)
	assert.Equal(t, payload, plaintext)
}

func TestEncrypt_CallerKeyIsEchoed(t *testing.T) {
	svc := NewChaCha20CipherService()
	keyHex := strings.Repeat("ab", chacha20poly1305.KeySize)

	blob, usedKey, err := svc.Encrypt([]byte("payload"), keyHex)
	require.NoError(t, err)
	assert.Equal(t, keyHex, usedKey)

	plaintext, err := svc.Decrypt(blob, keyHex)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), plaintext)
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	svc := NewChaCha20CipherService()
	keyHex := strings.Repeat("cd", chacha20poly1305.KeySize)

	blob1, _, err := svc.Encrypt([]byte("same payload"), keyHex)
	require.NoError(t, err)
	blob2, _, err := svc.Encrypt([]byte("same payload"), keyHex)
	require.NoError(t, err)

	assert.NotEqual(t, blob1, blob2)
	assert.NotEqual(t, blob1[:chacha20poly1305.NonceSize], blob2[:chacha20poly1305.NonceSize])
}

func TestEncrypt_BadKey(t *testing.T) {
	svc := NewChaCha20CipherService()

	_, _, err := svc.Encrypt([]byte("x"), "not-hex")
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidEncoding))

	_, _, err = svc.Encrypt([]byte("x"), "abcd")
	assert.True(t, apperror.IsCode(err, apperror.CodeBadLength))
}

func TestDecrypt_Tampered(t *testing.T) {
	svc := NewChaCha20CipherService()

	blob, keyHex, err := svc.Encrypt([]byte("intact"), "")
	require.NoError(t, err)

	blob[len(blob)-1] ^= 0x01
	_, err = svc.Decrypt(blob, keyHex)
	assert.True(t, apperror.IsCode(err, apperror.CodeCipherAuth))
}

func TestDecrypt_WrongKey(t *testing.T) {
	svc := NewChaCha20CipherService()

	blob, _, err := svc.Encrypt([]byte("secret"), "")
	require.NoError(t, err)

	wrong := strings.Repeat("00", chacha20poly1305.KeySize)
	_, err = svc.Decrypt(blob, wrong)
	assert.True(t, apperror.IsCode(err, apperror.CodeCipherAuth))
}

func TestDecrypt_MalformedInputs(t *testing.T) {
	svc := NewChaCha20CipherService()
	keyHex := hex.EncodeToString(make([]byte, chacha20poly1305.KeySize))

	tests := []struct {
		name     string
		blob     []byte
		keyHex   string
		wantCode string
	}{
		{"key not hex", []byte("whatever"), "zz", apperror.CodeInvalidEncoding},
		{"key too short", []byte("whatever"), "abcd", apperror.CodeBadLength},
		{"blob shorter than nonce", []byte{1, 2, 3}, keyHex, apperror.CodeBadLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Decrypt(tt.blob, tt.keyHex)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, tt.wantCode))
		})
	}
}
