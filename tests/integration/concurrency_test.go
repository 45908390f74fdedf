package integration

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimolalekan/vale/pkg/apperror"
)

// TestConcurrentAccountCreation fires many creations at once and checks
// that every account lands with its index row and that the analytics
// counter, written atomically with each put, saw all of them.
func TestConcurrentAccountCreation(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	concurrency := 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	addresses := make(map[string]string, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			created, err := app.accounts.Create(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			addresses[created.Address] = created.PublicKey
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, addresses, concurrency, "every creation yields a distinct address")

	for address, publicKey := range addresses {
		resolved, err := app.accounts.LookupIndex(ctx, address)
		require.NoError(t, err)
		assert.Equal(t, publicKey, resolved)
	}

	total, err := app.accounts.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(concurrency), total)
}

// TestConcurrentTransactions processes transactions from many goroutines
// and verifies each one is readable afterwards with its own tx key.
func TestConcurrentTransactions(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	sender, err := app.accounts.Create(ctx)
	require.NoError(t, err)

	concurrency := 20

	var wg sync.WaitGroup
	var mu sync.Mutex
	keys := make(map[string]string, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			tx, err := app.txs.Initialize(sender.Address, "receiver", float64(idx+1), "")
			if err != nil {
				t.Error(err)
				return
			}
			// ids hash the wall-clock second; concurrent transactions
			// need their own
			tx.ID = fmt.Sprintf("concurrent-%04d", idx)

			processed, err := app.txs.Process(ctx, tx)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			keys[processed.ID] = processed.TxKey
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	require.Len(t, keys, concurrency)

	for id, txKey := range keys {
		view, err := app.txs.Get(ctx, id, txKey)
		require.NoError(t, err)
		assert.True(t, view.SenderData.IsPlain())
	}

	total, err := app.txs.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(concurrency), total)
}

// TestConcurrentDuplicateID races many writers on the same transaction id.
// Exactly one wins; everyone else gets the already-exists error.
func TestConcurrentDuplicateID(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	sender, err := app.accounts.Create(ctx)
	require.NoError(t, err)

	concurrency := 16

	var wg sync.WaitGroup
	var successCount, duplicateCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			tx, err := app.txs.Initialize(sender.Address, "receiver", 1, "")
			if err != nil {
				t.Error(err)
				return
			}
			tx.ID = "contested-id"

			_, err = app.txs.Process(ctx, tx)
			switch {
			case err == nil:
				successCount.Add(1)
			case apperror.IsCode(err, apperror.CodeAlreadyExists):
				duplicateCount.Add(1)
			default:
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), successCount.Load(), "exactly one writer wins")
	assert.Equal(t, int64(concurrency-1), duplicateCount.Load())

	total, err := app.txs.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "losing writers leave no counter trace")
}
