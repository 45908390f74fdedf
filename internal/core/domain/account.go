package domain

// RedactedBalance is the balance placeholder returned when an account is
// fetched without its private key.
const RedactedBalance = "Encrypted - provide private_key to decrypt"

// BalanceKind discriminates the variants of a Balance.
type BalanceKind uint8

const (
	BalanceBinary BalanceKind = iota // ciphertext, the only persisted form
	BalanceText                      // redaction notice
	BalanceDecimal                   // decrypted numeric value
)

// Balance is a tagged variant: exactly one of the payload fields is
// meaningful, selected by Kind.
type Balance struct {
	Kind    BalanceKind
	Binary  []byte
	Text    string
	Decimal float64
}

func BinaryBalance(b []byte) Balance   { return Balance{Kind: BalanceBinary, Binary: b} }
func TextBalance(s string) Balance     { return Balance{Kind: BalanceText, Text: s} }
func DecimalBalance(f float64) Balance { return Balance{Kind: BalanceDecimal, Decimal: f} }

// KeyPair holds a freshly generated keypair, hex-encoded: the private scalar
// as 32 little-endian bytes, the public key as its 32-byte compressed point.
type KeyPair struct {
	PrivateKey string
	PublicKey  string
}

// StoredAccount is the persisted account record. The balance is always the
// AEAD envelope over the decimal balance string; it decrypts under the
// public key the record is stored under.
type StoredAccount struct {
	Address   string
	Balance   []byte
	Timestamp uint64
}

// Redacted returns the client view of a stored account with the balance
// replaced by the redaction notice.
func (a StoredAccount) Redacted() Account {
	return Account{
		Address:   a.Address,
		Balance:   TextBalance(RedactedBalance),
		Timestamp: a.Timestamp,
	}
}

// IndexEntry is the persisted index row mapping an address back to the
// public key its account record is stored under. It goes through the same
// record codec as every other persisted value.
type IndexEntry struct {
	PublicKey string
}

// Account is the client-facing account view.
type Account struct {
	Address   string
	Balance   Balance
	Timestamp uint64
}

// AccountWithKeys is returned exactly once, at creation. The private key is
// never persisted; losing it makes the balance unrecoverable.
type AccountWithKeys struct {
	Address    string
	Balance    float64
	PublicKey  string
	PrivateKey string
	Timestamp  uint64
}

// AddressBalance pairs an account address with its decrypted balance.
type AddressBalance struct {
	Address string
	Balance float64
}
