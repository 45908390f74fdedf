package service

import (
	"bytes"
	"encoding/hex"

	"github.com/mr-tron/base58"
	"go.dedis.ch/kyber/v3/group/edwards25519"
	"golang.org/x/crypto/blake2b"

	"github.com/kimolalekan/vale/internal/core/domain"
	"github.com/kimolalekan/vale/pkg/apperror"
)

const (
	scalarLen   = 32
	pointLen    = 32
	checksumLen = 4
)

// Ed25519KeyService implements ports.KeyService on the edwards25519
// prime-order group.
type Ed25519KeyService struct {
	suite *edwards25519.SuiteEd25519
}

// NewEd25519KeyService creates a new Ed25519KeyService.
func NewEd25519KeyService() *Ed25519KeyService {
	return &Ed25519KeyService{suite: edwards25519.NewBlakeSHA256Ed25519()}
}

// Generate draws a uniform scalar s modulo the group order and computes
// P = s*G. Both halves are returned hex-encoded.
func (s *Ed25519KeyService) Generate() (domain.KeyPair, error) {
	private := s.suite.Scalar().Pick(s.suite.RandomStream())
	public := s.suite.Point().Mul(private, nil)

	privBytes, err := private.MarshalBinary()
	if err != nil {
		return domain.KeyPair{}, apperror.InternalError(err)
	}
	pubBytes, err := public.MarshalBinary()
	if err != nil {
		return domain.KeyPair{}, apperror.InternalError(err)
	}

	return domain.KeyPair{
		PrivateKey: hex.EncodeToString(privBytes),
		PublicKey:  hex.EncodeToString(pubBytes),
	}, nil
}

// PublicFromPrivate recomputes the public key from a hex private scalar.
func (s *Ed25519KeyService) PublicFromPrivate(privateHex string) (string, error) {
	privBytes, err := hex.DecodeString(privateHex)
	if err != nil {
		return "", apperror.ErrInvalidEncoding("private key hex", err)
	}
	if len(privBytes) != scalarLen {
		return "", apperror.ErrBadLength("private key", scalarLen, len(privBytes))
	}

	private := s.suite.Scalar().SetBytes(privBytes) // reduces mod group order
	public := s.suite.Point().Mul(private, nil)

	pubBytes, err := public.MarshalBinary()
	if err != nil {
		return "", apperror.InternalError(err)
	}
	return hex.EncodeToString(pubBytes), nil
}

// DeriveAddress combines a fresh one-time public key with the recipient's
// long-term public key and encodes the sum with a checksum tail. The
// one-time scalar goes out of scope here: the address is an identifier for
// the recipient, never a spendable target.
func (s *Ed25519KeyService) DeriveAddress(publicHex string) (string, error) {
	pubBytes, err := hex.DecodeString(publicHex)
	if err != nil {
		return "", apperror.ErrInvalidEncoding("public key hex", err)
	}
	if len(pubBytes) != pointLen {
		return "", apperror.ErrBadLength("public key", pointLen, len(pubBytes))
	}

	recipient := s.suite.Point()
	if err := recipient.UnmarshalBinary(pubBytes); err != nil {
		return "", apperror.ErrInvalidEncoding("public key point", err)
	}

	oneTime := s.suite.Scalar().Pick(s.suite.RandomStream())
	oneTimePublic := s.suite.Point().Mul(oneTime, nil)

	stealth := s.suite.Point().Add(oneTimePublic, recipient)
	stealthBytes, err := stealth.MarshalBinary()
	if err != nil {
		return "", apperror.InternalError(err)
	}

	payload := append(stealthBytes, checksum(stealthBytes)...)
	return base58.Encode(payload), nil
}

// VerifyAddress checks the base58 payload against its checksum tail. A true
// result says nothing about ownership or about any stored account.
func (s *Ed25519KeyService) VerifyAddress(address string) (bool, error) {
	decoded, err := base58.Decode(address)
	if err != nil {
		return false, apperror.ErrInvalidEncoding("base58 address", err)
	}
	if len(decoded) < checksumLen {
		return false, apperror.ErrTooShort("address", checksumLen, len(decoded))
	}

	body := decoded[:len(decoded)-checksumLen]
	tail := decoded[len(decoded)-checksumLen:]

	return bytes.Equal(tail, checksum(body)), nil
}

// checksum is the first 4 bytes of BLAKE2b-256 over data.
func checksum(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:checksumLen]
}
