package ports

import (
	"context"

	"github.com/kimolalekan/vale/internal/core/domain"
)

// KeyService handles keypair generation and stealth-style address handling
// on a prime-order elliptic-curve group.
type KeyService interface {
	// Generate draws a fresh uniform scalar and its public point.
	Generate() (domain.KeyPair, error)

	// PublicFromPrivate recomputes the hex public key from a hex private
	// scalar, reducing modulo the group order.
	PublicFromPrivate(privateHex string) (string, error)

	// DeriveAddress builds a one-shot address from the recipient's public
	// key: base58(compress(P_onetime + P_recipient) || 4-byte checksum).
	// The one-time scalar is discarded, so the address identifies the
	// recipient without being spendable.
	DeriveAddress(publicHex string) (string, error)

	// VerifyAddress recomputes the checksum. It proves nothing about
	// ownership or existence of an account.
	VerifyAddress(address string) (bool, error)
}

// CipherService is authenticated encryption over arbitrary payloads.
// The envelope layout is 12-byte nonce || ciphertext.
type CipherService interface {
	// Encrypt seals the payload. An empty keyHex generates a fresh 32-byte
	// key which is returned, hex-encoded, exactly once.
	Encrypt(payload []byte, keyHex string) (blob []byte, usedKeyHex string, err error)

	// Decrypt opens an envelope. Any bit flip fails authentication; no
	// partial plaintext is ever returned.
	Decrypt(blob []byte, keyHex string) ([]byte, error)
}

// AccountIndex resolves the address-to-publicKey secondary index.
type AccountIndex interface {
	LookupIndex(ctx context.Context, address string) (string, error)
}

// AccountService is the account ledger.
type AccountService interface {
	AccountIndex

	// Create generates a keypair, derives the address, seals the zero
	// balance and persists account plus index row. The private key in the
	// result is shown once and never persisted.
	Create(ctx context.Context) (*domain.AccountWithKeys, error)

	// Get fetches an account by address with the balance redacted.
	Get(ctx context.Context, address string) (*domain.Account, error)

	// GetDetails fetches and decrypts an account using its private key.
	GetDetails(ctx context.Context, privateHex string) (*domain.Account, error)

	// GetBalance checksum-verifies the address and decrypts the balance of
	// the account owned by the private key.
	GetBalance(ctx context.Context, address, privateHex string) (*domain.AddressBalance, error)

	// List pages through accounts in key order, balances redacted.
	List(ctx context.Context, page, limit int) ([]domain.Account, error)

	// Total returns the analytics counter of the accounts family.
	Total(ctx context.Context) (int64, error)
}

// TransactionService is the transaction ledger.
type TransactionService interface {
	// Initialize builds a plain, not yet persisted transaction: id from the
	// timestamp hash, synthetic size, congestion-priced fee, Pending status.
	Initialize(sender, receiver string, amount float64, narration string) (*domain.Transaction, error)

	// Process seals both views and persists the encrypted record. The
	// returned copy carries the freshly generated sender-view key (tx key);
	// it is not retained anywhere else.
	Process(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)

	// Get fetches a transaction and opens whichever views the supplied key
	// can decrypt. It fails if the key opens neither view.
	Get(ctx context.Context, id, txKey string) (*domain.TransactionView, error)

	// List pages through transactions in key order, payloads left sealed.
	List(ctx context.Context, page, limit int) ([]domain.TransactionView, error)

	// Total returns the analytics counter of the transactions family.
	Total(ctx context.Context) (int64, error)
}

// ChainService maintains the vestigial block scaffold.
type ChainService interface {
	// Append adds a block settling the given transaction ids.
	Append(txIDs []string)

	// Validate checks hash linkage over the in-memory chain.
	Validate() bool

	// Flush persists the chain into the blockchains family as one batch.
	Flush(ctx context.Context) error
}
