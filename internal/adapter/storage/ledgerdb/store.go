// Package ledgerdb implements ports.KVStore on an embedded goleveldb
// database. Column families are realized as single-byte key prefixes over
// one sorted keyspace, so iteration within a family keeps ascending
// lexicographic key order.
package ledgerdb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	ldbutil "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/kimolalekan/vale/internal/core/ports"
	"github.com/kimolalekan/vale/pkg/apperror"
)

// one-byte family prefixes; changing these invalidates existing databases
var familyPrefix = map[ports.Family]byte{
	ports.FamilyAccounts:     'a',
	ports.FamilyTransactions: 't',
	ports.FamilyContracts:    'c',
	ports.FamilyChains:       'b',
	ports.FamilyIndex:        'i',
	ports.FamilyAnalytics:    'y',
}

// Store is the process-wide handle to the embedded store. It is opened once
// and passed explicitly; the RWMutex admits any number of readers or one
// writer at a time.
type Store struct {
	mu  sync.RWMutex
	db  *leveldb.DB
	log zerolog.Logger
}

// Open creates or opens the database directory at path with snappy
// compression. All column families exist implicitly from the first write.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		Compression: opt.SnappyCompression,
	})
	if err != nil {
		return nil, apperror.ErrEngine(fmt.Errorf("opening %s: %w", path, err))
	}

	log.Debug().Str("path", path).Msg("ledger store opened")

	return &Store{db: db, log: log}, nil
}

// Close releases the database. The handle must not be used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return apperror.ErrEngine(err)
	}
	return nil
}

func prefixed(family ports.Family, key []byte) ([]byte, error) {
	prefix, ok := familyPrefix[family]
	if !ok {
		return nil, apperror.InternalError(fmt.Errorf("unknown column family %q", family))
	}
	out := make([]byte, 1, len(key)+1)
	out[0] = prefix
	return append(out, key...), nil
}

// counterKey locates a family's put counter inside the analytics family.
func counterKey(family ports.Family) []byte {
	key, _ := prefixed(ports.FamilyAnalytics, []byte(family))
	return key
}

// Put writes key=value into the family, optionally failing if the key is
// already present. The analytics counter advances in the same write batch,
// so the record and its count land or fail together.
func (s *Store) Put(ctx context.Context, family ports.Family, key, value []byte, requireAbsent bool) error {
	if err := ctx.Err(); err != nil {
		return apperror.InternalError(err)
	}

	pk, err := prefixed(family, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if requireAbsent {
		exists, err := s.db.Has(pk, nil)
		if err != nil {
			return apperror.ErrEngine(err)
		}
		if exists {
			return apperror.ErrAlreadyExists("record")
		}
	}

	count, err := s.readCounter(family)
	if err != nil {
		return err
	}

	var counterValue [8]byte
	binary.BigEndian.PutUint64(counterValue[:], uint64(count+1))

	batch := new(leveldb.Batch)
	batch.Put(pk, value)
	batch.Put(counterKey(family), counterValue[:])

	if err := s.db.Write(batch, nil); err != nil {
		return apperror.ErrEngine(err)
	}
	return nil
}

// Get returns the stored value for key.
func (s *Store) Get(ctx context.Context, family ports.Family, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.InternalError(err)
	}

	pk, err := prefixed(family, key)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, err := s.db.Get(pk, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, apperror.ErrNotFound("key")
	}
	if err != nil {
		return nil, apperror.ErrEngine(err)
	}
	return value, nil
}

// Exists reports whether key is present in the family.
func (s *Store) Exists(ctx context.Context, family ports.Family, key []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperror.InternalError(err)
	}

	pk, err := prefixed(family, key)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	exists, err := s.db.Has(pk, nil)
	if err != nil {
		return false, apperror.ErrEngine(err)
	}
	return exists, nil
}

// BatchPut writes all pairs in one atomic batch. Analytics counters are not
// touched, so bulk loads undercount.
func (s *Store) BatchPut(ctx context.Context, family ports.Family, pairs []ports.Element) error {
	if err := ctx.Err(); err != nil {
		return apperror.InternalError(err)
	}

	batch := new(leveldb.Batch)
	for _, pair := range pairs {
		pk, err := prefixed(family, pair.Key)
		if err != nil {
			return err
		}
		batch.Put(pk, pair.Value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Write(batch, nil); err != nil {
		return apperror.ErrEngine(err)
	}
	return nil
}

// BatchGet iterates the family in ascending key order, skipping the first
// skip entries and returning up to limit subsequent ones.
func (s *Store) BatchGet(ctx context.Context, family ports.Family, skip, limit int) ([]ports.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.InternalError(err)
	}

	prefix, ok := familyPrefix[family]
	if !ok {
		return nil, apperror.InternalError(fmt.Errorf("unknown column family %q", family))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	iter := s.db.NewIterator(ldbutil.BytesPrefix([]byte{prefix}), nil)
	defer iter.Release()

	for i := 0; i < skip; i++ {
		if !iter.Next() {
			break
		}
	}

	result := make([]ports.Element, 0, limit)
	for len(result) < limit && iter.Next() {
		key := make([]byte, len(iter.Key())-1)
		copy(key, iter.Key()[1:]) // strip the family prefix
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		result = append(result, ports.Element{Key: key, Value: value})
	}

	if err := iter.Error(); err != nil {
		return nil, apperror.ErrEngine(err)
	}
	return result, nil
}

// Analytics returns the family's put counter.
func (s *Store) Analytics(ctx context.Context, family ports.Family) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperror.InternalError(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, err := s.db.Get(counterKey(family), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, apperror.ErrNotFound("analytics counter")
	}
	if err != nil {
		return 0, apperror.ErrEngine(err)
	}
	if len(value) < 8 {
		return 0, apperror.InternalError(fmt.Errorf("truncated analytics counter for %q", family))
	}
	return int64(binary.BigEndian.Uint64(value[:8])), nil
}

// readCounter returns the current counter, 0 when absent. Callers must hold
// the write lock.
func (s *Store) readCounter(family ports.Family) (int64, error) {
	value, err := s.db.Get(counterKey(family), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apperror.ErrEngine(err)
	}
	if len(value) < 8 {
		return 0, apperror.InternalError(fmt.Errorf("truncated analytics counter for %q", family))
	}
	return int64(binary.BigEndian.Uint64(value[:8])), nil
}
