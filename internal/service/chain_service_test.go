package service

import (
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/protobuf"

	"github.com/kimolalekan/vale/internal/core/domain"
	"github.com/kimolalekan/vale/internal/core/ports"
	"github.com/kimolalekan/vale/pkg/logger"
)

func newTestChainService(t *testing.T) (*ChainServiceImpl, ports.KVStore) {
	t.Helper()
	store := newTestStore(t)
	return NewChainService(store, logger.NewWithWriter("error", io.Discard)), store
}

func TestChainAppendAndValidate(t *testing.T) {
	svc, _ := newTestChainService(t)

	assert.True(t, svc.Validate())

	svc.Append([]string{"tx-1", "tx-2"})
	svc.Append([]string{"tx-3"})
	assert.True(t, svc.Validate())
}

func TestChainFlush_PersistsBlocks(t *testing.T) {
	svc, store := newTestChainService(t)
	ctx := context.Background()

	svc.Append([]string{"tx-1"})
	require.NoError(t, svc.Flush(ctx))

	// genesis at index 0, appended block at index 1
	for index := uint64(0); index <= 1; index++ {
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, index)

		value, err := store.Get(ctx, ports.FamilyChains, key)
		require.NoError(t, err)

		var block domain.Block
		require.NoError(t, protobuf.Decode(value, &block))
		assert.Equal(t, index, block.Header.Index)
		assert.Equal(t, block.ComputeHash(), block.Header.Hash)
	}

	appended, err := store.Get(ctx, ports.FamilyChains, []byte{0, 0, 0, 0, 0, 0, 0, 1})
	require.NoError(t, err)
	var block domain.Block
	require.NoError(t, protobuf.Decode(appended, &block))
	assert.Equal(t, []string{"tx-1"}, block.TxIDs)
}

func TestChainFlush_BypassesAnalytics(t *testing.T) {
	svc, store := newTestChainService(t)
	ctx := context.Background()

	svc.Append([]string{"tx-1"})
	require.NoError(t, svc.Flush(ctx))

	_, err := store.Analytics(ctx, ports.FamilyChains)
	require.Error(t, err)
}
