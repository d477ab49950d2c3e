package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	// GenesisPreviousHash is the sentinel previous_hash of block 1.
	GenesisPreviousHash = "1"
	GenesisProof        = 100
)

type Block struct {
	Index        int           `json:"index"`
	Timestamp    float64       `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	Proof        int64         `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
	Signature    string        `json:"signature"`
}

// Hash is the content hash of the whole block, signature included. The next
// block stores it as previous_hash.
func (b Block) Hash() string {
	sum := sha256.Sum256(canonicalBytes(b, true))
	return hex.EncodeToString(sum[:])
}

// Clone returns a copy that shares no memory with b.
func (b Block) Clone() Block {
	b.Transactions = copyTransactions(b.Transactions)
	return b
}

func newGenesisBlock(signer *Signer, now time.Time) Block {
	genesis := Block{
		Index:        1,
		Timestamp:    unixSeconds(now),
		Transactions: []Transaction{},
		Proof:        GenesisProof,
		PreviousHash: GenesisPreviousHash,
	}
	genesis.Signature = signer.Sign(genesis)
	return genesis
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

func cloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}
