package domain

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// BlockHeader carries the chain linkage of a block.
type BlockHeader struct {
	Index      uint64
	Timestamp  int64
	Data       string
	PrevHash   string
	Hash       string
	Nonce      uint64
	Difficulty uint64
	Version    uint64
}

// Block groups the ids of the transactions it settles. There is no mining or
// validation beyond the hash linkage.
type Block struct {
	Header BlockHeader
	TxIDs  []string
}

// ComputeHash hashes the header fields that fix a block's identity.
func (b *Block) ComputeHash() string {
	h, _ := blake2b.New256(nil)
	var buf [8]byte

	h.Write([]byte(b.Header.PrevHash))
	binary.BigEndian.PutUint64(buf[:], uint64(b.Header.Timestamp))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], b.Header.Nonce)
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], b.Header.Version)
	h.Write(buf[:])

	return hex.EncodeToString(h.Sum(nil))
}

// Blockchain is the in-memory block list, genesis first.
type Blockchain struct {
	Blocks []Block
}

// NewBlockchain creates a chain holding only the genesis block.
func NewBlockchain() *Blockchain {
	genesis := Block{
		Header: BlockHeader{
			Index:      0,
			Timestamp:  time.Now().Unix(),
			Data:       "Genesis Block",
			PrevHash:   strings.Repeat("0", 64),
			Nonce:      0,
			Difficulty: 4,
			Version:    1,
		},
	}
	genesis.Header.Hash = genesis.ComputeHash()

	return &Blockchain{Blocks: []Block{genesis}}
}

// AddBlock appends a block settling the given transaction ids.
func (c *Blockchain) AddBlock(txIDs []string) {
	prev := c.Blocks[len(c.Blocks)-1]
	block := Block{
		Header: BlockHeader{
			Index:      prev.Header.Index + 1,
			Timestamp:  time.Now().Unix(),
			Data:       "New Block",
			PrevHash:   prev.Header.Hash,
			Nonce:      0,
			Difficulty: 4,
			Version:    1,
		},
		TxIDs: txIDs,
	}
	block.Header.Hash = block.ComputeHash()
	c.Blocks = append(c.Blocks, block)
}

// Valid walks the chain and checks every hash and prev-hash linkage.
func (c *Blockchain) Valid() bool {
	for i := 1; i < len(c.Blocks); i++ {
		current := &c.Blocks[i]
		prev := &c.Blocks[i-1]

		if current.Header.Hash != current.ComputeHash() {
			return false
		}
		if current.Header.PrevHash != prev.Header.Hash {
			return false
		}
	}
	return true
}
