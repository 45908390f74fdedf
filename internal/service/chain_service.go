package service

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/rs/zerolog"
	"go.dedis.ch/protobuf"

	"github.com/kimolalekan/vale/internal/core/domain"
	"github.com/kimolalekan/vale/internal/core/ports"
	"github.com/kimolalekan/vale/pkg/apperror"
)

// ChainServiceImpl implements ports.ChainService over an in-memory chain.
// The chain only ever grows between flushes; Flush writes a snapshot into
// the blockchains family keyed by block index.
type ChainServiceImpl struct {
	mu    sync.Mutex
	chain *domain.Blockchain
	store ports.KVStore
	log   zerolog.Logger
}

// NewChainService creates a chain service seeded with a genesis block.
func NewChainService(store ports.KVStore, log zerolog.Logger) *ChainServiceImpl {
	return &ChainServiceImpl{
		chain: domain.NewBlockchain(),
		store: store,
		log:   log,
	}
}

// Append adds a block settling the given transaction ids.
func (s *ChainServiceImpl) Append(txIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain.AddBlock(txIDs)
	s.log.Debug().
		Int("height", len(s.chain.Blocks)).
		Int("tx_count", len(txIDs)).
		Msg("block appended")
}

// Validate checks hash linkage over the in-memory chain.
func (s *ChainServiceImpl) Validate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Valid()
}

// Flush persists every block as one batch, keyed by the 8-byte big-endian
// block index. The batch bypasses the analytics counter.
func (s *ChainServiceImpl) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	elements := make([]ports.Element, 0, len(s.chain.Blocks))
	for i := range s.chain.Blocks {
		block := &s.chain.Blocks[i]

		value, err := protobuf.Encode(block)
		if err != nil {
			return apperror.ErrInvalidEncoding("block record", err)
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, block.Header.Index)
		elements = append(elements, ports.Element{Key: key, Value: value})
	}

	if err := s.store.BatchPut(ctx, ports.FamilyChains, elements); err != nil {
		return err
	}

	s.log.Info().Int("blocks", len(elements)).Msg("chain flushed")
	return nil
}
