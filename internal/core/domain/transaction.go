package domain

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "Pending"
	TransactionStatusProcessing TransactionStatus = "Processing"
	TransactionStatusCompleted  TransactionStatus = "Completed"
	TransactionStatusFailed     TransactionStatus = "Failed"
	TransactionStatusCancelled  TransactionStatus = "Cancelled"
)

// IsTerminal returns true if the transaction is in a final state.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted ||
		s == TransactionStatusFailed ||
		s == TransactionStatusCancelled
}

// Transaction is the plain, in-memory transaction record. TxKey is filled
// only on the value handed back to the creator right after processing; it is
// the one chance to capture the key that opens the sender view.
type Transaction struct {
	ID        string
	Sender    string
	Receiver  string
	Amount    float64
	Fee       float64
	Size      float64
	Timestamp uint64
	Narration string
	Status    TransactionStatus
	TxKey     string
}

// TransactionData is the payload sealed into both views of a persisted
// transaction.
type TransactionData struct {
	Sender   string
	Receiver string
	Amount   float64
}

// EncryptedTransaction is the persisted transaction record. SenderData and
// ReceiverData are AEAD envelopes over the same TransactionData, sealed
// under distinct keys.
type EncryptedTransaction struct {
	ID           string
	SenderData   []byte
	ReceiverData []byte
	Fee          float64
	Size         float64
	Timestamp    uint64
	Narration    string
	Status       string
}

// TransactionPayload is one view of a fetched transaction: decoded plain
// data when the supplied key opened it, otherwise the raw envelope.
type TransactionPayload struct {
	Plain     *TransactionData
	Encrypted []byte
}

// IsPlain reports whether the view was decrypted.
func (p TransactionPayload) IsPlain() bool {
	return p.Plain != nil
}

// TransactionView is the result of fetching a transaction by id.
type TransactionView struct {
	ID           string
	SenderData   TransactionPayload
	ReceiverData TransactionPayload
	Fee          float64
	Size         float64
	Timestamp    uint64
	Narration    string
	Status       TransactionStatus
}
