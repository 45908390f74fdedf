package service

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"math"
	"math/rand"
	"reflect"
	"time"

	"github.com/rs/zerolog"
	"go.dedis.ch/protobuf"
	"golang.org/x/crypto/blake2b"

	"github.com/kimolalekan/vale/config"
	"github.com/kimolalekan/vale/internal/core/domain"
	"github.com/kimolalekan/vale/internal/core/ports"
	"github.com/kimolalekan/vale/pkg/apperror"
)

// congestion tier boundaries on the sampled recent transaction count
const (
	lowCongestionLimit      = 500
	moderateCongestionLimit = 1000
	highCongestionLimit     = 2000
	recentTxSampleRange     = 10000
)

// transactionShapeSize is the in-memory size of the plain record shape; the
// synthetic byte-weight of a transaction is this size scaled by the amount.
var transactionShapeSize = uint64(reflect.TypeOf(domain.Transaction{}).Size())

// TransactionServiceImpl implements ports.TransactionService.
//
// A processed transaction is stored as two AEAD envelopes over the same
// {sender, receiver, amount} payload: the receiver view sealed under the key
// resolved from the index, the sender view under a key generated on the spot
// and handed back exactly once as the tx key.
type TransactionServiceImpl struct {
	store  ports.KVStore
	index  ports.AccountIndex
	cipher ports.CipherService
	fees   config.FeesConfig
	log    zerolog.Logger
}

// NewTransactionService creates a new TransactionServiceImpl.
func NewTransactionService(
	store ports.KVStore,
	index ports.AccountIndex,
	cipher ports.CipherService,
	fees config.FeesConfig,
	log zerolog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		store:  store,
		index:  index,
		cipher: cipher,
		fees:   fees,
		log:    log,
	}
}

// Initialize builds a plain, not yet persisted transaction.
func (s *TransactionServiceImpl) Initialize(sender, receiver string, amount float64, narration string) (*domain.Transaction, error) {
	timestamp := uint64(time.Now().Unix())

	var timestampBytes [8]byte
	binary.BigEndian.PutUint64(timestampBytes[:], timestamp)
	digest := blake2b.Sum256(timestampBytes[:])
	id := hex.EncodeToString(digest[:])

	size := s.sizeInBytes(amount)

	return &domain.Transaction{
		ID:        id,
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		Fee:       s.dynamicFee(size),
		Size:      size,
		Timestamp: timestamp,
		Narration: narration,
		Status:    domain.TransactionStatusPending,
	}, nil
}

// sizeInBytes is the deterministic synthetic byte-weight: the record shape
// size scaled by the truncated amount. The cast saturates: negative, NaN
// and sub-unit amounts weigh 0 instead of wrapping around.
func (s *TransactionServiceImpl) sizeInBytes(amount float64) float64 {
	if amount < 1 || math.IsNaN(amount) {
		return 0
	}
	return float64(transactionShapeSize) * math.Trunc(amount)
}

// dynamicFee prices a transaction from its size and the congestion tier.
func (s *TransactionServiceImpl) dynamicFee(size float64) float64 {
	return size * s.fees.BaseFeePerByte * s.congestionFactor() / s.fees.MaxSupply
}

// congestionFactor picks the multiplier for the current congestion tier.
// The recent transaction count is sampled pseudorandomly; it stands in for a
// real mempool depth reading.
func (s *TransactionServiceImpl) congestionFactor() float64 {
	recentTxCount := rand.Intn(recentTxSampleRange)

	switch {
	case recentTxCount <= lowCongestionLimit:
		return s.fees.LowCongestion
	case recentTxCount <= moderateCongestionLimit:
		return s.fees.ModerateCongestion
	case recentTxCount <= highCongestionLimit:
		return s.fees.HighCongestion
	default:
		return s.fees.NormalCongestion
	}
}

// Process seals both views of the transaction and persists the encrypted
// record. The returned copy carries the fresh sender-view key; the caller
// must retain it to ever read that view again.
func (s *TransactionServiceImpl) Process(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	payload := domain.TransactionData{
		Sender:   tx.Sender,
		Receiver: tx.Receiver,
		Amount:   tx.Amount,
	}
	data, err := protobuf.Encode(&payload)
	if err != nil {
		return nil, apperror.ErrInvalidEncoding("transaction payload", err)
	}

	// The receiver-view key is resolved from the sender's index entry.
	receiverKey, err := s.index.LookupIndex(ctx, tx.Sender)
	if err != nil {
		return nil, err
	}

	receiverData, _, err := s.cipher.Encrypt(data, receiverKey)
	if err != nil {
		return nil, err
	}

	senderData, txKey, err := s.cipher.Encrypt(data, "")
	if err != nil {
		return nil, err
	}

	record := domain.EncryptedTransaction{
		ID:           tx.ID,
		SenderData:   senderData,
		ReceiverData: receiverData,
		Fee:          tx.Fee,
		Size:         tx.Size,
		Timestamp:    tx.Timestamp,
		Narration:    tx.Narration,
		Status:       string(tx.Status),
	}
	value, err := protobuf.Encode(&record)
	if err != nil {
		return nil, apperror.ErrInvalidEncoding("transaction record", err)
	}

	if err := s.store.Put(ctx, ports.FamilyTransactions, []byte(tx.ID), value, true); err != nil {
		if apperror.IsCode(err, apperror.CodeAlreadyExists) {
			return nil, apperror.ErrAlreadyExists("transaction")
		}
		return nil, err
	}

	s.log.Info().
		Str("tx_id", tx.ID).
		Float64("fee", tx.Fee).
		Msg("transaction processed")

	processed := *tx
	processed.TxKey = txKey
	return &processed, nil
}

// Get fetches a transaction and opens whichever views txKey can decrypt.
// A view the key does not open stays sealed in the result; a key opening
// neither view is an authentication failure.
func (s *TransactionServiceImpl) Get(ctx context.Context, id, txKey string) (*domain.TransactionView, error) {
	value, err := s.store.Get(ctx, ports.FamilyTransactions, []byte(id))
	if err != nil {
		if apperror.IsCode(err, apperror.CodeNotFound) {
			return nil, apperror.ErrNotFound("transaction")
		}
		return nil, err
	}

	var record domain.EncryptedTransaction
	if err := protobuf.Decode(value, &record); err != nil {
		return nil, apperror.ErrInvalidEncoding("transaction record", err)
	}

	view := s.sealedView(&record)

	senderPlain, senderErr := s.open(record.SenderData, txKey)
	if senderErr == nil {
		view.SenderData = domain.TransactionPayload{Plain: senderPlain}
	}
	receiverPlain, receiverErr := s.open(record.ReceiverData, txKey)
	if receiverErr == nil {
		view.ReceiverData = domain.TransactionPayload{Plain: receiverPlain}
	}

	if senderErr != nil && receiverErr != nil {
		return nil, apperror.ErrCipherAuth(senderErr)
	}
	return view, nil
}

// List pages through transactions in ascending id order. Payloads stay
// sealed; use Get with a key to open a view.
func (s *TransactionServiceImpl) List(ctx context.Context, page, limit int) ([]domain.TransactionView, error) {
	skip := 0
	if page > 1 {
		skip = (page - 1) * limit
	}

	elements, err := s.store.BatchGet(ctx, ports.FamilyTransactions, skip, limit)
	if err != nil {
		return nil, err
	}

	views := make([]domain.TransactionView, 0, len(elements))
	for _, element := range elements {
		var record domain.EncryptedTransaction
		if err := protobuf.Decode(element.Value, &record); err != nil {
			return nil, apperror.ErrInvalidEncoding("transaction record", err)
		}
		views = append(views, *s.sealedView(&record))
	}
	return views, nil
}

// Total returns the number of single puts the transactions family has
// received.
func (s *TransactionServiceImpl) Total(ctx context.Context) (int64, error) {
	return s.store.Analytics(ctx, ports.FamilyTransactions)
}

func (s *TransactionServiceImpl) sealedView(record *domain.EncryptedTransaction) *domain.TransactionView {
	return &domain.TransactionView{
		ID:           record.ID,
		SenderData:   domain.TransactionPayload{Encrypted: record.SenderData},
		ReceiverData: domain.TransactionPayload{Encrypted: record.ReceiverData},
		Fee:          record.Fee,
		Size:         record.Size,
		Timestamp:    record.Timestamp,
		Narration:    record.Narration,
		Status:       domain.TransactionStatus(record.Status),
	}
}

// open decrypts one view and decodes the payload.
func (s *TransactionServiceImpl) open(blob []byte, keyHex string) (*domain.TransactionData, error) {
	plaintext, err := s.cipher.Decrypt(blob, keyHex)
	if err != nil {
		return nil, err
	}

	var payload domain.TransactionData
	if err := protobuf.Decode(plaintext, &payload); err != nil {
		return nil, apperror.ErrInvalidEncoding("transaction payload", err)
	}
	return &payload, nil
}
