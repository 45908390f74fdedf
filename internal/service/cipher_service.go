package service

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/kimolalekan/vale/pkg/apperror"
)

// ChaCha20CipherService implements ports.CipherService using
// ChaCha20-Poly1305 with a 32-byte key and a 12-byte random nonce.
// Envelope layout: nonce || ciphertext.
type ChaCha20CipherService struct{}

// NewChaCha20CipherService creates a new ChaCha20CipherService.
func NewChaCha20CipherService() *ChaCha20CipherService {
	return &ChaCha20CipherService{}
}

// Encrypt seals payload. With an empty keyHex a fresh random key is
// generated; the hex key actually used is always returned, and for a
// generated key this return value is the only copy.
func (s *ChaCha20CipherService) Encrypt(payload []byte, keyHex string) ([]byte, string, error) {
	var key []byte
	if keyHex != "" {
		decoded, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, "", apperror.ErrInvalidEncoding("key hex", err)
		}
		if len(decoded) != chacha20poly1305.KeySize {
			return nil, "", apperror.ErrBadLength("key", chacha20poly1305.KeySize, len(decoded))
		}
		key = decoded
	} else {
		key = make([]byte, chacha20poly1305.KeySize)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, "", apperror.InternalError(err)
		}
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, "", apperror.InternalError(err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, "", apperror.InternalError(err)
	}

	blob := aead.Seal(nonce, nonce, payload, nil)
	return blob, hex.EncodeToString(key), nil
}

// Decrypt opens an envelope. Authentication failure means tampering or a
// wrong key; either way no plaintext is returned.
func (s *ChaCha20CipherService) Decrypt(blob []byte, keyHex string) ([]byte, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, apperror.ErrInvalidEncoding("key hex", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, apperror.ErrBadLength("key", chacha20poly1305.KeySize, len(key))
	}
	if len(blob) < chacha20poly1305.NonceSize {
		return nil, apperror.ErrShortCiphertext(len(blob))
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	nonce, ciphertext := blob[:chacha20poly1305.NonceSize], blob[chacha20poly1305.NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, apperror.ErrCipherAuth(err)
	}
	return plaintext, nil
}
