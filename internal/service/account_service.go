package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.dedis.ch/protobuf"

	"github.com/kimolalekan/vale/internal/core/domain"
	"github.com/kimolalekan/vale/internal/core/ports"
	"github.com/kimolalekan/vale/pkg/apperror"
)

// AccountServiceImpl implements ports.AccountService.
//
// An account is stored under its public key hex; a second row in the index
// family maps the presentable address back to that public key. The balance
// ciphertext is sealed under the hex-decoded public key, so it always
// decrypts under the key the record is stored by.
type AccountServiceImpl struct {
	store  ports.KVStore
	keys   ports.KeyService
	cipher ports.CipherService
	log    zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl.
func NewAccountService(
	store ports.KVStore,
	keys ports.KeyService,
	cipher ports.CipherService,
	log zerolog.Logger,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		store:  store,
		keys:   keys,
		cipher: cipher,
		log:    log,
	}
}

// Create generates the keypair and address, seals the zero balance and
// writes the account and index rows. The private key appears only in the
// returned value; it is neither persisted nor logged.
func (s *AccountServiceImpl) Create(ctx context.Context) (*domain.AccountWithKeys, error) {
	keypair, err := s.keys.Generate()
	if err != nil {
		return nil, err
	}

	address, err := s.keys.DeriveAddress(keypair.PublicKey)
	if err != nil {
		return nil, err
	}

	timestamp := uint64(time.Now().Unix())

	initialBalance := strconv.FormatFloat(0, 'f', -1, 64)
	sealed, _, err := s.cipher.Encrypt([]byte(initialBalance), keypair.PublicKey)
	if err != nil {
		return nil, err
	}

	record := domain.StoredAccount{
		Address:   address,
		Balance:   sealed,
		Timestamp: timestamp,
	}
	value, err := protobuf.Encode(&record)
	if err != nil {
		return nil, apperror.ErrInvalidEncoding("account record", err)
	}

	indexValue, err := protobuf.Encode(&domain.IndexEntry{PublicKey: keypair.PublicKey})
	if err != nil {
		return nil, apperror.ErrInvalidEncoding("index entry", err)
	}

	if err := s.store.Put(ctx, ports.FamilyAccounts, []byte(keypair.PublicKey), value, true); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, ports.FamilyIndex, []byte(address), indexValue, true); err != nil {
		return nil, err
	}

	s.log.Info().Str("address", address).Msg("account created")

	return &domain.AccountWithKeys{
		Address:    address,
		Balance:    0,
		PublicKey:  keypair.PublicKey,
		PrivateKey: keypair.PrivateKey,
		Timestamp:  timestamp,
	}, nil
}

// LookupIndex resolves an address to the owning public key hex.
func (s *AccountServiceImpl) LookupIndex(ctx context.Context, address string) (string, error) {
	value, err := s.store.Get(ctx, ports.FamilyIndex, []byte(address))
	if err != nil {
		if apperror.IsCode(err, apperror.CodeNotFound) {
			return "", apperror.ErrNotFound("account index entry")
		}
		return "", err
	}

	var entry domain.IndexEntry
	if err := protobuf.Decode(value, &entry); err != nil {
		return "", apperror.ErrInvalidEncoding("index entry", err)
	}
	return entry.PublicKey, nil
}

// Get fetches an account by address. The balance stays sealed: callers get
// the redaction notice instead.
func (s *AccountServiceImpl) Get(ctx context.Context, address string) (*domain.Account, error) {
	publicKey, err := s.LookupIndex(ctx, address)
	if err != nil {
		return nil, err
	}

	valid, err := s.keys.VerifyAddress(address)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, apperror.ErrInvalidAddress()
	}

	record, err := s.fetch(ctx, publicKey)
	if err != nil {
		return nil, err
	}

	redacted := record.Redacted()
	return &redacted, nil
}

// GetDetails fetches an account by private key and decrypts its balance.
func (s *AccountServiceImpl) GetDetails(ctx context.Context, privateHex string) (*domain.Account, error) {
	publicKey, err := s.keys.PublicFromPrivate(privateHex)
	if err != nil {
		return nil, err
	}

	record, err := s.fetch(ctx, publicKey)
	if err != nil {
		return nil, err
	}

	balance, err := s.openBalance(record, publicKey)
	if err != nil {
		return nil, err
	}

	return &domain.Account{
		Address:   record.Address,
		Balance:   domain.DecimalBalance(balance),
		Timestamp: record.Timestamp,
	}, nil
}

// GetBalance checksum-verifies the address, then decrypts the balance of
// the account owned by the private key. The returned address comes from the
// stored record, not from the argument.
func (s *AccountServiceImpl) GetBalance(ctx context.Context, address, privateHex string) (*domain.AddressBalance, error) {
	valid, err := s.keys.VerifyAddress(address)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, apperror.ErrInvalidAddress()
	}

	publicKey, err := s.keys.PublicFromPrivate(privateHex)
	if err != nil {
		return nil, err
	}

	record, err := s.fetch(ctx, publicKey)
	if err != nil {
		return nil, err
	}

	balance, err := s.openBalance(record, publicKey)
	if err != nil {
		return nil, err
	}

	return &domain.AddressBalance{
		Address: record.Address,
		Balance: balance,
	}, nil
}

// List pages through accounts in ascending key order, balances redacted.
func (s *AccountServiceImpl) List(ctx context.Context, page, limit int) ([]domain.Account, error) {
	skip := 0
	if page > 1 {
		skip = (page - 1) * limit
	}

	elements, err := s.store.BatchGet(ctx, ports.FamilyAccounts, skip, limit)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(elements))
	for _, element := range elements {
		var record domain.StoredAccount
		if err := protobuf.Decode(element.Value, &record); err != nil {
			return nil, apperror.ErrInvalidEncoding("account record", err)
		}
		accounts = append(accounts, record.Redacted())
	}
	return accounts, nil
}

// Total returns the number of single puts the accounts family has received.
func (s *AccountServiceImpl) Total(ctx context.Context) (int64, error) {
	return s.store.Analytics(ctx, ports.FamilyAccounts)
}

func (s *AccountServiceImpl) fetch(ctx context.Context, publicKey string) (*domain.StoredAccount, error) {
	value, err := s.store.Get(ctx, ports.FamilyAccounts, []byte(publicKey))
	if err != nil {
		if apperror.IsCode(err, apperror.CodeNotFound) {
			return nil, apperror.ErrNotFound("account")
		}
		return nil, err
	}

	var record domain.StoredAccount
	if err := protobuf.Decode(value, &record); err != nil {
		return nil, apperror.ErrInvalidEncoding("account record", err)
	}
	return &record, nil
}

// openBalance decrypts a stored balance and parses the decimal string.
func (s *AccountServiceImpl) openBalance(record *domain.StoredAccount, publicKey string) (float64, error) {
	if len(record.Balance) == 0 {
		return 0, apperror.ErrBalanceShape()
	}

	plaintext, err := s.cipher.Decrypt(record.Balance, publicKey)
	if err != nil {
		return 0, err
	}

	balance, err := strconv.ParseFloat(string(plaintext), 64)
	if err != nil {
		return 0, apperror.ErrParseBalance(err)
	}
	return balance, nil
}
