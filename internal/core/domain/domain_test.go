package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalance_Variants(t *testing.T) {
	bin := BinaryBalance([]byte{0x01, 0x02})
	assert.Equal(t, BalanceBinary, bin.Kind)
	assert.Equal(t, []byte{0x01, 0x02}, bin.Binary)

	txt := TextBalance(RedactedBalance)
	assert.Equal(t, BalanceText, txt.Kind)
	assert.Equal(t, RedactedBalance, txt.Text)

	dec := DecimalBalance(12.5)
	assert.Equal(t, BalanceDecimal, dec.Kind)
	assert.Equal(t, 12.5, dec.Decimal)
}

func TestStoredAccount_Redacted(t *testing.T) {
	rec := StoredAccount{
		Address:   "addr",
		Balance:   []byte{0xde, 0xad},
		Timestamp: 42,
	}

	view := rec.Redacted()
	assert.Equal(t, "addr", view.Address)
	assert.Equal(t, uint64(42), view.Timestamp)
	assert.Equal(t, BalanceText, view.Balance.Kind)
	assert.Equal(t, RedactedBalance, view.Balance.Text)
	assert.Empty(t, view.Balance.Binary, "ciphertext must not leak into the redacted view")
}

func TestTransactionStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status TransactionStatus
		want   bool
	}{
		{"pending", TransactionStatusPending, false},
		{"processing", TransactionStatusProcessing, false},
		{"completed", TransactionStatusCompleted, true},
		{"failed", TransactionStatusFailed, true},
		{"cancelled", TransactionStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsTerminal())
		})
	}
}

func TestTransactionPayload_IsPlain(t *testing.T) {
	assert.False(t, TransactionPayload{Encrypted: []byte{1}}.IsPlain())
	assert.True(t, TransactionPayload{Plain: &TransactionData{}}.IsPlain())
}

func TestBlockchain_Genesis(t *testing.T) {
	chain := NewBlockchain()
	require.Len(t, chain.Blocks, 1)

	genesis := chain.Blocks[0]
	assert.Equal(t, uint64(0), genesis.Header.Index)
	assert.Equal(t, 64, len(genesis.Header.PrevHash))
	assert.Equal(t, genesis.ComputeHash(), genesis.Header.Hash)
	assert.True(t, chain.Valid())
}

func TestBlockchain_AddBlock(t *testing.T) {
	chain := NewBlockchain()
	chain.AddBlock([]string{"tx1", "tx2"})
	chain.AddBlock([]string{"tx3"})

	require.Len(t, chain.Blocks, 3)
	assert.Equal(t, uint64(1), chain.Blocks[1].Header.Index)
	assert.Equal(t, chain.Blocks[0].Header.Hash, chain.Blocks[1].Header.PrevHash)
	assert.Equal(t, chain.Blocks[1].Header.Hash, chain.Blocks[2].Header.PrevHash)
	assert.True(t, chain.Valid())
}

func TestBlockchain_DetectsTampering(t *testing.T) {
	chain := NewBlockchain()
	chain.AddBlock([]string{"tx1"})
	require.True(t, chain.Valid())

	chain.Blocks[1].Header.Nonce = 99 // header no longer matches its hash
	assert.False(t, chain.Valid())
}

func TestBlockchain_DetectsBrokenLinkage(t *testing.T) {
	chain := NewBlockchain()
	chain.AddBlock(nil)
	chain.AddBlock(nil)

	chain.Blocks[2].Header.PrevHash = strings.Repeat("f", 64)
	chain.Blocks[2].Header.Hash = chain.Blocks[2].ComputeHash()
	assert.False(t, chain.Valid())
}
